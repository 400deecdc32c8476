package views

import (
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/folio"
	"github.com/eringen/folio/resource"
)

func AdminLogin(p folio.LoginPage) templ.Component {
	return layout(p.Page, func(h *writer) {
		h.el("h1", "Sign in")
		if p.Failed {
			h.el("div", "Wrong username or password.", "class", "notice failure", "role", "alert")
		}
		h.tag("form", "method", "post", "action", "/admin/login/", "class", "stacked")
		csrfField(h, p.CSRF)
		h.el("label", "Username", "for", "username")
		h.tag("input", "type", "text", "id", "username", "name", "username", "value", p.Username,
			"autocomplete", "username", "required", "required")
		h.el("label", "Password", "for", "password")
		h.tag("input", "type", "password", "id", "password", "name", "password",
			"autocomplete", "current-password", "required", "required")
		h.el("button", "Sign in", "type", "submit")
		h.end("form")
	})
}

func AdminDashboard(p folio.DashboardPage) templ.Component {
	return layout(p.Page, func(h *writer) {
		h.el("h1", "Dashboard")
		if p.Unread > 0 {
			h.tag("p")
			h.el("a", strconv.Itoa(p.Unread)+" unread messages", "href", "/admin/messages/")
			h.end("p")
		}
		h.tag("div", "class", "grid")
		for _, rc := range p.Counts {
			h.tag("a", "href", "/admin/"+rc.Schema.Name+"/", "class", "card")
			h.el("h3", rc.Schema.Plural)
			h.el("p", strconv.Itoa(rc.Count), "class", "muted")
			h.end("a")
		}
		h.end("div")
	})
}

// listColumns picks the fields shown in the list table.
func listColumns(s resource.Schema) []resource.Field {
	var cols []resource.Field
	for _, f := range s.Fields {
		switch f.Kind {
		case resource.KindLongText, resource.KindURL, resource.KindSet, resource.KindRef:
			continue
		}
		if f.Name == s.StatusField || (s.Media != nil && f.Name == s.Media.KindField) {
			continue
		}
		cols = append(cols, f)
		if len(cols) == 3 {
			break
		}
	}
	return cols
}

func cell(rec resource.Record, f resource.Field) string {
	switch f.Kind {
	case resource.KindBool:
		if rec.Bool(f.Name) {
			return "yes"
		}
		return "no"
	case resource.KindDate:
		return FormatDate(rec, f.Name)
	}
	return rec.String(f.Name)
}

func AdminList(p folio.AdminListPage) templ.Component {
	s := p.Schema
	base := "/admin/" + s.Name + "/"
	return layout(p.Page, func(h *writer) {
		h.el("h1", s.Plural)
		h.tag("p")
		if !s.Singleton || p.Total == 0 {
			h.el("a", "New "+s.Label, "href", base+"new/", "class", "button")
			h.text(" ")
		}
		h.el("a", "Refresh", "href", base+"?refresh=1")
		h.end("p")

		filterForm(h, p, base)
		h.tag("p", "class", "muted")
		h.textf("Showing %d of %d", len(p.Items), p.Total)
		h.end("p")

		h.tag("table", "class", "records")
		h.raw("<thead><tr>")
		cols := listColumns(s)
		for _, f := range cols {
			h.el("th", f.Label)
		}
		if s.StatusField != "" {
			h.el("th", "Status")
		}
		h.el("th", "Created")
		h.raw("<th></th></tr></thead><tbody>")
		for _, rec := range p.Items {
			unread := ""
			if s.Name == resource.Messages.Name && !rec.Bool("read") {
				unread = "unread"
			}
			h.tag("tr", "class", unread)
			for i, f := range cols {
				h.raw("<td>")
				if i == 0 {
					h.el("a", cell(rec, f), "href", base+PathEscape(rec.ID())+"/")
				} else {
					h.text(cell(rec, f))
				}
				h.end("td")
			}
			if s.StatusField != "" {
				h.raw("<td>")
				statusForm(h, p, rec, base)
				h.end("td")
			}
			h.el("td", FormatDate(rec, resource.FieldCreatedAt), "class", "muted")
			h.raw("<td>")
			deleteForm(h, p.CSRF, base+PathEscape(rec.ID())+"/delete/")
			h.end("td")
			h.end("tr")
		}
		h.raw("</tbody></table>")
	})
}

func filterForm(h *writer, p folio.AdminListPage, base string) {
	s := p.Schema
	h.tag("form", "method", "get", "action", base, "class", "filters")
	h.tag("input", "type", "search", "name", "q", "value", p.Filter.Text, "placeholder", "Search")
	if len(p.Categories) > 0 {
		h.tag("select", "name", "category")
		option(h, "", "All categories", p.Filter.Category == "")
		for _, c := range p.Categories {
			option(h, c, c, p.Filter.Category == c)
		}
		h.end("select")
	}
	if s.StatusField != "" {
		h.tag("select", "name", "status")
		option(h, "", "Any status", p.Filter.Status == "")
		for _, st := range s.Statuses {
			option(h, st, st, p.Filter.Status == st)
		}
		h.end("select")
	}
	h.el("button", "Filter", "type", "submit")
	h.end("form")
}

func statusForm(h *writer, p folio.AdminListPage, rec resource.Record, base string) {
	s := p.Schema
	h.tag("form", "method", "post", "action", base+PathEscape(rec.ID())+"/patch/")
	csrfField(h, p.CSRF)
	h.tag("select", "name", s.StatusField)
	for _, st := range s.Statuses {
		option(h, st, st, rec.String(s.StatusField) == st)
	}
	h.end("select")
	h.el("button", "Set", "type", "submit")
	h.end("form")
}

func deleteForm(h *writer, csrf, action string) {
	h.tag("form", "method", "post", "action", action)
	csrfField(h, csrf)
	h.tag("label")
	h.tag("input", "type", "checkbox", "name", "confirm", "value", "yes")
	h.text(" Confirm")
	h.end("label")
	h.el("button", "Delete", "type", "submit", "class", "danger")
	h.end("form")
}

func AdminForm(p folio.AdminFormPage) templ.Component {
	s := p.Schema
	base := "/admin/" + s.Name + "/"
	return layout(p.Page, func(h *writer) {
		h.el("h1", p.Meta.Title)
		if p.State == resource.StateFailure {
			h.el("p", "The last save failed. Submit again to retry.", "class", "muted")
		}
		h.tag("form", "method", "post", "action", base+"save/", "class", "stacked", "enctype", "multipart/form-data")
		csrfField(h, p.CSRF)
		h.tag("input", "type", "hidden", "name", resource.FieldID, "value", p.Draft.ID())
		for _, f := range s.Fields {
			if m := s.Media; m != nil && (f.Name == m.Field || f.Name == m.KindField) {
				continue
			}
			field(h, f, p.Draft, p.Options[f.Name], s.Statuses)
		}
		if s.Media != nil {
			mediaField(h, p)
		}
		h.el("button", "Save", "type", "submit")
		h.text(" ")
		h.el("a", "Cancel", "href", base)
		h.end("form")

		if p.Draft.ID() != "" {
			h.el("h2", "Delete")
			deleteForm(h, p.CSRF, base+PathEscape(p.Draft.ID())+"/delete/")
		}
	})
}

func mediaField(h *writer, p folio.AdminFormPage) {
	m := p.Schema.Media
	label := "Media"
	if f, ok := p.Schema.Field(m.Field); ok {
		label = f.Label
	}
	h.el("label", label, "for", "f-media")
	if p.Draft.String(m.Field) != "" {
		h.tag("div", "class", "preview")
		h.media(p.Draft, m, "Current")
		h.end("div")
		h.tag("label")
		h.tag("input", "type", "checkbox", "name", "clear_media", "value", "on")
		h.text(" Remove current file")
		h.end("label")
	}
	if p.Preview != "" {
		h.el("p", "Staged for upload:", "class", "muted")
		if strings.HasPrefix(p.Preview, "data:video/") {
			h.tag("video", "src", p.Preview, "controls", "controls", "class", "preview")
			h.end("video")
		} else {
			h.tag("img", "src", p.Preview, "alt", "Staged file", "class", "preview")
		}
	}
	accept := "image/*"
	if m.Allows(resource.MediaVideo) {
		accept += ",video/*"
	}
	required := ""
	if m.Required && p.Draft.String(m.Field) == "" && p.Preview == "" {
		required = "required"
	}
	h.tag("input", "type", "file", "id", "f-media", "name", "media", "accept", accept, "required", required)
}

func AdminSettings(p folio.SettingsPage) templ.Component {
	return layout(p.Page, func(h *writer) {
		h.el("h1", "Settings")
		h.el("p", "Settings are read from the configuration file and environment at startup.", "class", "muted")
		h.tag("table", "class", "records")
		for _, st := range p.Settings {
			h.raw("<tr>")
			h.el("th", st.Name)
			h.el("td", st.Value)
			h.end("tr")
		}
		h.end("table")
	})
}
