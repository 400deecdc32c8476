package folio

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/resource"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// publicSections are the fixed public pages, in sitemap order.
var publicSections = []string{"about", "portfolio", "blog", "events", "projects", "volunteer", "contact"}

func (a *App) renderSitemap(c echo.Context, posts []resource.Record) error {
	base := a.Config.URL
	urls := []sitemapURL{{Loc: BuildURL(base)}}
	for _, s := range publicSections {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, s)})
	}
	for _, p := range posts {
		u := sitemapURL{Loc: BuildURL(base, "blog", p.ID())}
		if t, ok := RecordTime(p, resource.FieldUpdatedAt); ok {
			u.LastMod = t.Format("2006-01-02")
		} else if t, ok := RecordTime(p, resource.FieldCreatedAt); ok {
			u.LastMod = t.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
