// Package folio is a portfolio site and content back office built with Go,
// Echo, and templ. Every content type is a resource.Schema managed through
// the same list and form controllers; records live behind a
// resource.Gateway (SQLite or Redis) and media behind a resource.BlobStore.
//
// Users provide their own templ templates via the ViewFuncs struct, and
// folio handles the handler logic, middleware, and storage wiring.
package folio

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/eringen/folio/blobstore"
	"github.com/eringen/folio/gateway/redisgw"
	"github.com/eringen/folio/gateway/sqlitegw"
	"github.com/eringen/folio/resource"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages.
type ViewFuncs struct {
	Home      func(HomePage) templ.Component
	About     func(AboutPage) templ.Component
	Portfolio func(PortfolioPage) templ.Component
	Blog      func(BlogPage) templ.Component
	Post      func(PostPage) templ.Component
	Events    func(EventsPage) templ.Component
	Projects  func(ProjectsPage) templ.Component
	Volunteer func(PublicFormPage) templ.Component
	Contact   func(PublicFormPage) templ.Component

	AdminLogin     func(LoginPage) templ.Component
	AdminDashboard func(DashboardPage) templ.Component
	AdminList      func(AdminListPage) templ.Component
	AdminForm      func(AdminFormPage) templ.Component
	AdminSettings  func(SettingsPage) templ.Component

	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central folio application. It wires together the gateway,
// blob store, cache, operator workspaces, handlers, and templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Gateway  resource.Gateway
	Blobs    resource.BlobStore
	Uploader *resource.Uploader
	Cache    *ContentCache
	Views    ViewFuncs
	Log      zerolog.Logger

	schemas      []resource.Schema
	workspaces   *Workspaces
	loginLimiter *LoginLimiter
	mediaDir     string
	closers      []io.Closer
	customRoutes []func(*App)
	customLogger bool
}

// New creates a new folio App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:  cfg,
		Echo:    echo.New(),
		Views:   views,
		schemas: resource.All(),
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	if !a.customLogger {
		a.Log = NewLogger(cfg.LogLevel, cfg.LogPretty)
	}
	return a
}

// Init validates the configuration, opens the gateway and blob store, and
// registers middleware and routes. Start calls it; tests call it directly
// and drive a.Echo.
func (a *App) Init(ctx context.Context) error {
	if err := a.Config.validate(); err != nil {
		return fmt.Errorf("folio: %w", err)
	}

	if a.Gateway == nil {
		gw, err := a.openGateway(ctx)
		if err != nil {
			return fmt.Errorf("folio: init gateway: %w", err)
		}
		a.Gateway = gw
	}

	if a.Blobs == nil {
		local, err := blobstore.NewLocal(a.Config.MediaDir, a.Config.MediaBaseURL, a.Log)
		if err != nil {
			return fmt.Errorf("folio: init media: %w", err)
		}
		a.Blobs = local
	}
	if local, ok := a.Blobs.(*blobstore.Local); ok {
		a.mediaDir = local.Dir()
	}
	a.Uploader = resource.NewUploader(a.Blobs, a.Config.MaxUploadSize)

	a.Cache = NewContentCache(a.Gateway, a.Config.CacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	a.workspaces = NewWorkspaces(
		time.Duration(sessionMaxAge)*time.Second,
		func(s resource.Schema, n resource.Notifier) *resource.ListController {
			return resource.NewListController(s, a.Gateway, a.uploaderFor(s), n, a.Log)
		},
		func(s resource.Schema, n resource.Notifier) *resource.FormController {
			return resource.NewFormController(s, a.Gateway, a.uploaderFor(s), n, a.Log)
		},
	)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and starts the server.
func (a *App) Start() error {
	if err := a.Init(context.Background()); err != nil {
		return err
	}
	a.Log.Info().Str("addr", a.Config.Addr).Str("driver", a.Config.Driver).Msg("starting folio")
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) openGateway(ctx context.Context) (resource.Gateway, error) {
	switch a.Config.Driver {
	case DriverRedis:
		store, err := redisgw.Dial(ctx, a.Config.RedisAddr, a.Config.RedisPassword, a.Config.RedisDB,
			redisgw.WithPrefix(a.Config.RedisPrefix))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		return store, nil
	default:
		store, err := sqlitegw.Open(a.Config.DatabasePath, a.schemas...)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		return store, nil
	}
}

func (a *App) uploaderFor(s resource.Schema) *resource.Uploader {
	if s.Media == nil {
		return nil
	}
	return a.Uploader
}

func (a *App) setupRoutes() {
	e := a.Echo

	assets, _ := fs.Sub(EmbeddedAssets, "embedded")
	e.GET("/static/*", echo.WrapHandler(http.StripPrefix("/static/", http.FileServer(http.FS(assets)))))
	if a.mediaDir != "" {
		e.Static("/media", a.mediaDir)
	}
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/about/", a.handleAbout)
	e.GET("/portfolio/", a.handlePortfolio)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/:id/", a.handlePost)
	e.GET("/events/", a.handleEvents)
	e.GET("/projects/", a.handleProjects)
	e.GET("/volunteer/", a.handleVolunteerForm)
	e.POST("/volunteer/", a.handleVolunteerSubmit)
	e.GET("/contact/", a.handleContactForm)
	e.POST("/contact/", a.handleContactSubmit)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", a.handleAdminLogout)
	e.GET("/admin/settings/", a.admin(a.handleAdminSettings))
	e.GET("/admin/:resource/", a.admin(a.handleAdminList))
	e.GET("/admin/:resource/new/", a.admin(a.handleAdminNew))
	e.GET("/admin/:resource/:id/", a.admin(a.handleAdminEdit))
	e.POST("/admin/:resource/save/", a.admin(a.handleAdminSave))
	e.POST("/admin/:resource/:id/delete/", a.admin(a.handleAdminDelete))
	e.POST("/admin/:resource/:id/patch/", a.admin(a.handleAdminPatch))
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		zlog.Fatal().Str("key", key).Msg("folio: required environment variable is not set")
	}
	return v
}
