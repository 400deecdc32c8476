package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/folio"
	"github.com/eringen/folio/resource"
)

func Home(p folio.HomePage) templ.Component {
	return layout(p.Page, func(h *writer) {
		h.tag("section", "class", "intro")
		if p.Bio != nil {
			h.el("h1", p.Bio.String("title"))
			h.markdown(p.Bio.String("content"))
		} else {
			h.el("h1", p.Site.Name)
			h.el("p", p.Site.Description)
		}
		h.end("section")

		if len(p.Featured) > 0 {
			h.el("h2", "Selected work")
			portfolioGrid(h, p.Featured)
			h.raw(`<p><a href="/portfolio/">All work</a></p>`)
		}
		if len(p.Posts) > 0 {
			h.el("h2", "Writing")
			postList(h, p.Posts)
		}
		if len(p.Events) > 0 {
			h.el("h2", "Coming up")
			eventList(h, p.Events)
		}
	})
}

func About(p folio.AboutPage) templ.Component {
	return layout(p.Page, func(h *writer) {
		jsonLD(h, folio.PersonJsonLD(p.Site, p.Bio))
		if p.Bio != nil {
			h.el("h1", p.Bio.String("title"))
			h.markdown(p.Bio.String("content"))
		} else {
			h.el("h1", "About")
		}
		if len(p.Milestones) == 0 {
			return
		}
		h.el("h2", "Milestones")
		h.tag("ol", "class", "timeline")
		for _, m := range p.Milestones {
			h.raw("<li>")
			h.el("strong", formatInt(m.Int("year")))
			h.text(" ")
			h.el("span", m.String("title"))
			h.media(m, resource.Milestones.Media, m.String("title"))
			h.markdown(m.String("description"))
			h.end("li")
		}
		h.end("ol")
	})
}

func Portfolio(p folio.PortfolioPage) templ.Component {
	return layout(p.Page, func(h *writer) {
		h.el("h1", "Portfolio")
		if len(p.Categories) > 0 {
			h.tag("p", "class", "filters")
			h.el("a", "All", "href", "/portfolio/", "class", PillClass(p.Category == ""))
			for _, c := range p.Categories {
				h.text(" ")
				h.el("a", c, "href", filterURL("/portfolio/", "category", c), "class", PillClass(p.Category == c))
			}
			h.end("p")
		}
		if len(p.Items) == 0 {
			h.el("p", "Nothing here yet.", "class", "muted")
			return
		}
		portfolioGrid(h, p.Items)
	})
}

func portfolioGrid(h *writer, items []resource.Record) {
	h.tag("div", "class", "grid")
	for _, item := range items {
		h.tag("article", "class", "card")
		h.media(item, resource.Portfolio.Media, item.String("title"))
		h.el("h3", item.String("title"))
		h.el("span", item.String("category"), "class", "pill")
		h.el("p", Excerpt(item, 140))
		h.end("article")
	}
	h.end("div")
}

func Blog(p folio.BlogPage) templ.Component {
	return layout(p.Page, func(h *writer) {
		h.el("h1", "Blog")
		if len(p.Tags) > 0 {
			h.tag("p", "class", "filters")
			h.el("a", "All", "href", "/blog/", "class", PillClass(p.Tag == ""))
			for _, t := range p.Tags {
				h.text(" ")
				h.el("a", t, "href", filterURL("/blog/", "tag", t), "class", PillClass(p.Tag == t))
			}
			h.end("p")
		}
		if len(p.Posts) == 0 {
			h.el("p", "No posts yet.", "class", "muted")
			return
		}
		postList(h, p.Posts)
	})
}

func postList(h *writer, posts []resource.Record) {
	h.tag("div", "class", "posts")
	for _, post := range posts {
		h.tag("article", "class", "card")
		h.tag("h3")
		h.el("a", post.String("title"), "href", "/blog/"+PathEscape(post.ID())+"/")
		h.end("h3")
		h.el("time", FormatDate(post, resource.FieldCreatedAt), "class", "muted")
		h.el("p", Excerpt(post, 200))
		h.end("article")
	}
	h.end("div")
}

func Post(p folio.PostPage) templ.Component {
	return layout(p.Page, func(h *writer) {
		jsonLD(h, folio.BlogPostingJsonLD(p.Site, p.Post))
		h.raw("<article>")
		h.el("h1", p.Post.String("title"))
		h.el("time", FormatDate(p.Post, resource.FieldCreatedAt), "class", "muted")
		if tags := p.Post.Strings("tags"); len(tags) > 0 {
			h.tag("p", "class", "filters")
			for _, t := range tags {
				h.el("a", t, "href", filterURL("/blog/", "tag", t), "class", "pill")
				h.text(" ")
			}
			h.end("p")
		}
		h.media(p.Post, resource.Blog.Media, p.Post.String("title"))
		h.markdown(p.Post.String("content"))
		h.end("article")

		if len(p.Related) > 0 {
			h.el("h2", "Related")
			postList(h, p.Related)
		}
	})
}

func Events(p folio.EventsPage) templ.Component {
	return layout(p.Page, func(h *writer) {
		h.el("h1", "Events")
		h.el("h2", "Upcoming")
		if len(p.Upcoming) == 0 {
			h.el("p", "No upcoming events.", "class", "muted")
		} else {
			eventList(h, p.Upcoming)
		}
		if len(p.Past) > 0 {
			h.el("h2", "Past")
			eventList(h, p.Past)
		}
	})
}

func eventList(h *writer, events []resource.Record) {
	h.tag("div", "class", "events")
	for _, e := range events {
		h.tag("article", "class", "card")
		h.el("h3", e.String("title"))
		h.tag("p", "class", "muted")
		h.text(FormatDate(e, "date"))
		if t := e.String("time"); t != "" {
			h.text(" at " + t)
		}
		h.text(", " + e.String("location"))
		h.end("p")
		h.markdown(e.String("description"))
		if c := e.Int("capacity"); c > 0 {
			h.el("p", "Capacity: "+formatInt(c), "class", "muted")
		}
		h.end("article")
	}
	h.end("div")
}

func Projects(p folio.ProjectsPage) templ.Component {
	return layout(p.Page, func(h *writer) {
		h.el("h1", "Projects")
		if len(p.Projects) == 0 {
			h.el("p", "No projects yet.", "class", "muted")
			return
		}
		h.tag("div", "class", "grid")
		for _, pr := range p.Projects {
			h.tag("article", "class", "card")
			h.media(pr, resource.Projects.Media, pr.String("title"))
			h.el("h3", pr.String("title"))
			h.el("span", pr.String("status"), "class", "pill")
			h.tag("p", "class", "muted")
			h.text(pr.String("location"))
			if d := pr.String("duration"); d != "" {
				h.text(" · " + d)
			}
			h.end("p")
			h.markdown(pr.String("description"))
			if n := pr.Int("volunteer_count"); n > 0 {
				h.el("p", formatInt(n)+" volunteers", "class", "muted")
			}
			if pr.Bool("accepts_volunteers") && pr.String("status") != "completed" {
				h.el("a", "Volunteer", "href", filterURL("/volunteer/", "project", pr.ID()), "class", "button")
			}
			h.end("article")
		}
		h.end("div")
	})
}

func Volunteer(p folio.PublicFormPage) templ.Component {
	return layout(p.Page, func(h *writer) {
		h.el("h1", "Volunteer")
		if !p.Sent {
			h.el("p", "Tell us a little about yourself and how you would like to help.")
		}
		publicForm(h, p, "/volunteer/", "Apply")
	})
}

func Contact(p folio.PublicFormPage) templ.Component {
	return layout(p.Page, func(h *writer) {
		h.el("h1", "Contact")
		publicForm(h, p, "/contact/", "Send")
	})
}

func NotFound() templ.Component {
	return errorPage("Page not found", "The page you are looking for does not exist.")
}

func ServerError() templ.Component {
	return errorPage("Something went wrong", "Please try again in a moment.")
}
