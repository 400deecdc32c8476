package folio

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// page builds the common page model for a public page.
func (a *App) page(c echo.Context, title string) Page {
	return Page{
		Site: a.site(),
		Meta: PageMeta{
			Title:       title,
			Description: a.Config.Description,
			URL:         BuildURL(a.Config.URL, c.Request().URL.Path),
			OGType:      "website",
		},
		CSRF: CsrfToken(c),
	}
}

// adminPage builds the page model for a back office page and drains the
// operator's mailbox into it.
func (a *App) adminPage(c echo.Context, ws *Workspace, title string) Page {
	p := a.page(c, title)
	p.Resources = a.schemas
	p.Notices = ws.Mailbox.Drain()
	return p
}

func (a *App) site() Site {
	return Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
	}
}
