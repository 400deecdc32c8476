package views

import (
	"github.com/eringen/folio"
	"github.com/eringen/folio/resource"
)

// field writes the label and input for one schema field. options feeds
// reference selects.
func field(h *writer, f resource.Field, draft resource.Record, options []resource.Record, statuses []string) {
	id := "f-" + f.Name
	required := ""
	if f.Required {
		required = "required"
	}

	if f.Kind == resource.KindBool {
		h.tag("label", "for", id)
		checked := ""
		if draft.Bool(f.Name) {
			checked = "checked"
		}
		h.tag("input", "type", "checkbox", "id", id, "name", f.Name, "value", "on", "checked", checked)
		h.text(" " + f.Label)
		h.end("label")
		return
	}

	h.el("label", f.Label, "for", id)
	switch f.Kind {
	case resource.KindLongText:
		h.tag("textarea", "id", id, "name", f.Name, "required", required)
		h.text(draft.String(f.Name))
		h.end("textarea")
	case resource.KindEnum:
		h.tag("select", "id", id, "name", f.Name)
		for _, s := range statuses {
			option(h, s, s, draft.String(f.Name) == s)
		}
		h.end("select")
	case resource.KindRef:
		h.tag("select", "id", id, "name", f.Name)
		option(h, "", "None", draft.String(f.Name) == "")
		for _, rec := range options {
			option(h, rec.ID(), recordTitle(rec), draft.String(f.Name) == rec.ID())
		}
		h.end("select")
	case resource.KindSet:
		h.tag("input", "type", "text", "id", id, "name", f.Name,
			"value", folio.JoinSet(draft.Strings(f.Name)), "placeholder", "comma separated")
	default:
		h.tag("input", "type", inputType(f.Kind), "id", id, "name", f.Name,
			"value", draft.String(f.Name), "required", required)
	}
}

func inputType(k resource.FieldKind) string {
	switch k {
	case resource.KindInt:
		return "number"
	case resource.KindEmail:
		return "email"
	case resource.KindDate:
		return "date"
	case resource.KindTime:
		return "time"
	case resource.KindURL:
		return "url"
	}
	return "text"
}

func option(h *writer, value, label string, selected bool) {
	sel := ""
	if selected {
		sel = "selected"
	}
	h.tag("option", "value", value, "selected", sel)
	h.text(label)
	h.end("option")
}

// publicForm writes a visitor form for schema, leaving out the fields
// only operators set.
func publicForm(h *writer, p folio.PublicFormPage, action, submit string) {
	if p.Sent {
		h.raw(`<p><a href="/">Back to the home page</a></p>`)
		return
	}
	draft := p.Draft
	if draft == nil {
		draft = resource.Record{}
	}
	h.tag("form", "method", "post", "action", action, "class", "stacked")
	csrfField(h, p.CSRF)
	for _, f := range p.Schema.Fields {
		if f.Name == p.Schema.StatusField || f.Kind == resource.KindBool {
			continue
		}
		field(h, f, draft, p.Projects, nil)
	}
	h.el("button", submit, "type", "submit")
	h.end("form")
}
