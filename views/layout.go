package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/folio"
)

var publicNav = []struct{ Label, Path string }{
	{"About", "/about/"},
	{"Portfolio", "/portfolio/"},
	{"Blog", "/blog/"},
	{"Events", "/events/"},
	{"Projects", "/projects/"},
	{"Volunteer", "/volunteer/"},
	{"Contact", "/contact/"},
}

// layout wraps body in the site chrome. Pages with Resources set get the
// back office navigation.
func layout(p folio.Page, body func(h *writer)) templ.Component {
	return component(func(h *writer) {
		h.raw("<!DOCTYPE html>")
		h.tag("html", "lang", "en")
		head(h, p)
		h.raw("<body>")

		h.tag("header", "class", "site")
		h.tag("a", "href", "/", "class", "brand")
		h.el("strong", p.Site.Name)
		h.end("a")
		if p.Resources != nil {
			adminNav(h, p)
		} else {
			h.raw("<nav>")
			for _, n := range publicNav {
				h.el("a", n.Label, "href", n.Path)
			}
			h.end("nav")
		}
		h.end("header")

		h.raw("<main>")
		h.component(noticeList(p.Notices))
		body(h)
		h.end("main")

		h.tag("footer", "class", "site")
		h.tag("span")
		h.raw("&copy; ")
		if p.Site.Author != "" {
			h.text(p.Site.Author)
		} else {
			h.text(p.Site.Name)
		}
		h.end("span")
		h.el("a", "RSS", "href", "/feed.xml")
		h.end("footer")

		h.raw("</body></html>")
	})
}

func head(h *writer, p folio.Page) {
	h.raw("<head>")
	h.tag("meta", "charset", "utf-8")
	h.tag("meta", "name", "viewport", "content", "width=device-width, initial-scale=1")
	title := p.Site.Name
	if p.Meta.Title != "" && p.Meta.Title != p.Site.Name {
		title = p.Meta.Title + " | " + p.Site.Name
	}
	h.el("title", title)
	h.tag("meta", "name", "description", "content", p.Meta.Description)
	if p.Resources != nil {
		h.tag("meta", "name", "robots", "content", "noindex")
	} else {
		h.tag("link", "rel", "canonical", "href", p.Meta.URL)
		h.tag("meta", "property", "og:title", "content", p.Meta.Title)
		h.tag("meta", "property", "og:type", "content", p.Meta.OGType)
		h.tag("meta", "property", "og:url", "content", p.Meta.URL)
		h.tag("meta", "property", "og:image", "content", p.Meta.Image)
		h.tag("link", "rel", "alternate", "type", "application/rss+xml", "title", p.Site.Name, "href", "/feed.xml")
	}
	h.tag("link", "rel", "stylesheet", "href", "/static/site.css")
	h.raw("</head>")
}

func adminNav(h *writer, p folio.Page) {
	h.raw("<nav>")
	h.el("a", "Dashboard", "href", "/admin/")
	for _, s := range p.Resources {
		h.el("a", s.Plural, "href", "/admin/"+s.Name+"/")
	}
	h.el("a", "Settings", "href", "/admin/settings/")
	h.end("nav")
	h.tag("form", "method", "post", "action", "/admin/logout/")
	csrfField(h, p.CSRF)
	h.el("button", "Sign out", "type", "submit")
	h.end("form")
}

func csrfField(h *writer, token string) {
	h.tag("input", "type", "hidden", "name", "_csrf", "value", token)
}

// jsonLD embeds a JSON-LD block. The payload comes from json.Marshal,
// which escapes <, > and & so it cannot close the script element.
func jsonLD(h *writer, payload string) {
	h.raw(`<script type="application/ld+json">`)
	h.raw(payload)
	h.raw("</script>")
}

func errorPage(title, message string) templ.Component {
	return component(func(h *writer) {
		h.raw("<!DOCTYPE html>")
		h.tag("html", "lang", "en")
		h.raw("<head>")
		h.tag("meta", "charset", "utf-8")
		h.el("title", title)
		h.tag("link", "rel", "stylesheet", "href", "/static/site.css")
		h.raw("</head><body><main>")
		h.el("h1", title)
		h.el("p", message)
		h.raw(`<p><a href="/">Back to the home page</a></p>`)
		h.raw("</main></body></html>")
	})
}
