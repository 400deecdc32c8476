package folio

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/resource"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string     `xml:"title"`
	Link        string     `xml:"link"`
	Description string     `xml:"description"`
	PubDate     string     `xml:"pubDate,omitempty"`
	GUID        string     `xml:"guid"`
	Categories  []string   `xml:"category"`
	Enclosure   *enclosure `xml:"enclosure,omitempty"`
}

type enclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

func (a *App) renderRSS(c echo.Context, posts []resource.Record) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := BuildURL(base, "blog", p.ID())
		item := rssItem{
			Title:       p.String("title"),
			Link:        postURL,
			Description: p.String("excerpt"),
			GUID:        postURL,
			Categories:  p.Strings("tags"),
		}
		if t, ok := RecordTime(p, resource.FieldCreatedAt); ok {
			item.PubDate = t.Format(time.RFC1123Z)
		}
		if img := p.String("image_url"); img != "" {
			f := resource.File{Name: img}
			item.Enclosure = &enclosure{URL: img, Type: f.DetectedType()}
		}
		items = append(items, item)
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        BuildURL(base),
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
