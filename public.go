package folio

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/resource"
)

var (
	volunteerFields = []string{"name", "email", "phone", "availability", "skills", "interests", "message", "project_id"}
	contactFields   = []string{"name", "email", "subject", "message"}
)

func firstN(recs []resource.Record, n int) []resource.Record {
	if len(recs) > n {
		return recs[:n]
	}
	return recs
}

func (a *App) biography(c echo.Context) (resource.Record, error) {
	recs, err := a.Cache.List(c.Request().Context(), resource.Biography)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}

// splitEvents separates upcoming events from past ones. Past events are
// returned most recent first.
func splitEvents(events []resource.Record, today string) (upcoming, past []resource.Record) {
	for _, e := range events {
		if e.String("status") == "completed" || e.String("date") < today {
			past = append([]resource.Record{e}, past...)
			continue
		}
		upcoming = append(upcoming, e)
	}
	return upcoming, past
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	bio, err := a.biography(c)
	if err != nil {
		return err
	}
	portfolio, err := a.Cache.List(ctx, resource.Portfolio)
	if err != nil {
		return err
	}
	posts, err := a.Cache.PublishedPosts(ctx, "")
	if err != nil {
		return err
	}
	events, err := a.Cache.List(ctx, resource.Events)
	if err != nil {
		return err
	}
	upcoming, _ := splitEvents(events, today())

	p := a.page(c, a.Config.Name)
	return Render(c, a.Views.Home(HomePage{
		Page:     p,
		Bio:      bio,
		Featured: firstN(portfolio, 6),
		Posts:    firstN(posts, 3),
		Events:   firstN(upcoming, 3),
	}))
}

func (a *App) handleAbout(c echo.Context) error {
	bio, err := a.biography(c)
	if err != nil {
		return err
	}
	milestones, err := a.Cache.List(c.Request().Context(), resource.Milestones)
	if err != nil {
		return err
	}
	p := a.page(c, "About")
	if bio != nil {
		p.Meta.Title = bio.String("title")
	}
	return Render(c, a.Views.About(AboutPage{Page: p, Bio: bio, Milestones: milestones}))
}

func (a *App) handlePortfolio(c echo.Context) error {
	all, err := a.Cache.List(c.Request().Context(), resource.Portfolio)
	if err != nil {
		return err
	}
	field := resource.Portfolio.CategoryField
	category := c.QueryParam("category")

	seen := map[string]bool{}
	var categories []string
	items := make([]resource.Record, 0, len(all))
	for _, rec := range all {
		cat := rec.String(field)
		if cat != "" && !seen[cat] {
			seen[cat] = true
			categories = append(categories, cat)
		}
		if category == "" || cat == category {
			items = append(items, rec)
		}
	}
	sort.Strings(categories)

	return Render(c, a.Views.Portfolio(PortfolioPage{
		Page:       a.page(c, "Portfolio"),
		Items:      items,
		Categories: categories,
		Category:   category,
	}))
}

func (a *App) handleBlog(c echo.Context) error {
	tag := c.QueryParam("tag")
	posts, err := a.Cache.PublishedPosts(c.Request().Context(), tag)
	if err != nil {
		return err
	}
	all, err := a.Cache.PublishedPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return Render(c, a.Views.Blog(BlogPage{
		Page:  a.page(c, "Blog"),
		Posts: posts,
		Tags:  Tags(all),
		Tag:   tag,
	}))
}

func (a *App) handlePost(c echo.Context) error {
	posts, err := a.Cache.PublishedPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	id := c.Param("id")
	for _, post := range posts {
		if post.ID() != id {
			continue
		}
		p := a.page(c, post.String("title"))
		p.Meta.Description = post.String("excerpt")
		p.Meta.OGType = "article"
		p.Meta.Image = post.String("image_url")
		return Render(c, a.Views.Post(PostPage{Page: p, Post: post, Related: firstN(RelatedPosts(post, posts), 3)}))
	}
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
}

func (a *App) handleEvents(c echo.Context) error {
	events, err := a.Cache.List(c.Request().Context(), resource.Events)
	if err != nil {
		return err
	}
	upcoming, past := splitEvents(events, today())
	return Render(c, a.Views.Events(EventsPage{Page: a.page(c, "Events"), Upcoming: upcoming, Past: past}))
}

func (a *App) handleProjects(c echo.Context) error {
	projects, err := a.Cache.List(c.Request().Context(), resource.Projects)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Projects(ProjectsPage{Page: a.page(c, "Projects"), Projects: projects}))
}

// openProjects returns the projects that accept volunteer applications.
func (a *App) openProjects(c echo.Context) ([]resource.Record, error) {
	projects, err := a.Cache.List(c.Request().Context(), resource.Projects)
	if err != nil {
		return nil, err
	}
	var open []resource.Record
	for _, p := range projects {
		if p.Bool("accepts_volunteers") && p.String("status") != "completed" {
			open = append(open, p)
		}
	}
	return open, nil
}

func (a *App) handleVolunteerForm(c echo.Context) error {
	projects, err := a.openProjects(c)
	if err != nil {
		return err
	}
	draft := resource.Record{}
	if id := c.QueryParam("project"); id != "" {
		draft["project_id"] = id
	}
	return Render(c, a.Views.Volunteer(PublicFormPage{
		Page:     a.page(c, "Volunteer"),
		Schema:   resource.Volunteers,
		Draft:    draft,
		Projects: projects,
	}))
}

func (a *App) handleVolunteerSubmit(c echo.Context) error {
	projects, err := a.openProjects(c)
	if err != nil {
		return err
	}
	page := PublicFormPage{Page: a.page(c, "Volunteer"), Schema: resource.Volunteers, Projects: projects}
	status := a.submitPublic(c, &page, volunteerFields, resource.Record{"status": "pending"},
		"Thank you for volunteering. We will be in touch soon.")
	return RenderStatus(c, status, a.Views.Volunteer(page))
}

func (a *App) handleContactForm(c echo.Context) error {
	return Render(c, a.Views.Contact(PublicFormPage{
		Page:   a.page(c, "Contact"),
		Schema: resource.Messages,
		Draft:  resource.Record{},
	}))
}

func (a *App) handleContactSubmit(c echo.Context) error {
	page := PublicFormPage{Page: a.page(c, "Contact"), Schema: resource.Messages}
	status := a.submitPublic(c, &page, contactFields, resource.Record{"read": false},
		"Thank you for your message.")
	return RenderStatus(c, status, a.Views.Contact(page))
}

// submitPublic runs a visitor submission through a one-shot form
// controller. fixed values are applied before the visitor's fields and
// cannot be overridden by them.
func (a *App) submitPublic(c echo.Context, page *PublicFormPage, fields []string, fixed resource.Record, thanks string) int {
	form := resource.NewFormController(page.Schema, a.Gateway, nil, nil, a.Log)
	_ = form.New()

	err := bindDraft(c, form, fields)
	if err == nil {
		for k, v := range fixed {
			if err = form.SetField(k, v); err != nil {
				break
			}
		}
	}
	if err != nil {
		page.Draft = form.Draft()
		page.Notices = []Notice{{Kind: NoticeFailure, Text: err.Error()}}
		return http.StatusUnprocessableEntity
	}

	if _, err := form.Submit(c.Request().Context()); err != nil {
		page.Draft = form.Draft()
		if resource.IsValidation(err) {
			page.Notices = []Notice{{Kind: NoticeFailure, Text: err.Error()}}
		} else {
			page.Notices = []Notice{{Kind: NoticeFailure, Text: "Sorry, we could not send your submission. Please try again later."}}
		}
		return submitStatus(err)
	}
	a.Log.Info().Str("resource", page.Schema.Name).Msg("public submission received")
	page.Sent = true
	page.Draft = resource.Record{}
	page.Notices = []Notice{{Kind: NoticeSuccess, Text: thanks}}
	return http.StatusOK
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.PublishedPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.PublishedPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nDisallow: /admin/\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("server error")
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
