package folio

import "github.com/eringen/folio/resource"

// Site is the public subset of SiteConfig handed to templates.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image, optional
}

// Page is embedded in every page model.
type Page struct {
	Site    Site
	Meta    PageMeta
	CSRF    string
	Notices []Notice

	// Resources is the admin navigation; nil on public pages.
	Resources []resource.Schema
}

type HomePage struct {
	Page
	Bio      resource.Record
	Featured []resource.Record
	Posts    []resource.Record
	Events   []resource.Record
}

type AboutPage struct {
	Page
	Bio        resource.Record
	Milestones []resource.Record
}

type PortfolioPage struct {
	Page
	Items      []resource.Record
	Categories []string
	Category   string
}

type BlogPage struct {
	Page
	Posts []resource.Record
	Tags  []string
	Tag   string
}

type PostPage struct {
	Page
	Post    resource.Record
	Related []resource.Record
}

type EventsPage struct {
	Page
	Upcoming []resource.Record
	Past     []resource.Record
}

type ProjectsPage struct {
	Page
	Projects []resource.Record
}

// PublicFormPage backs the volunteer signup and contact forms.
type PublicFormPage struct {
	Page
	Schema   resource.Schema
	Draft    resource.Record
	Projects []resource.Record // volunteer form only
	Sent     bool
}

type LoginPage struct {
	Page
	Failed   bool
	Username string
}

// ResourceCount is one dashboard tile.
type ResourceCount struct {
	Schema resource.Schema
	Count  int
}

type DashboardPage struct {
	Page
	Counts []ResourceCount
	Unread int
}

type AdminListPage struct {
	Page
	Schema     resource.Schema
	Items      []resource.Record
	Total      int
	Filter     resource.Filter
	Categories []string
}

type AdminFormPage struct {
	Page
	Schema  resource.Schema
	Draft   resource.Record
	State   resource.State
	Preview string // data: URI of the staged file
	// Options holds the selectable records of each reference field.
	Options map[string][]resource.Record
}

// Setting is one read-only row on the settings page.
type Setting struct {
	Name  string
	Value string
}

type SettingsPage struct {
	Page
	Settings []Setting
}
