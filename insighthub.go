// Package insighthub is a server-rendered blog platform built with Go, Echo,
// and SQLite. It serves the public site, a JSON API, and an admin dashboard
// for posts, categories, comments, newsletter signups, and contact messages.
//
// Pages are rendered through the ViewFuncs struct, so the App owns handler
// logic, middleware, and storage while the views package owns markup.
package insighthub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App is the central insighthub application. It wires together the store,
// cache, handlers, middleware, and templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Sidebar *SidebarCache
	Views   ViewFuncs
	Log     *zap.SugaredLogger

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	ownsStore    bool
	stop         chan struct{}
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &App{
		Config: cfg,
		Echo:   e,
		Views:  views,
		stop:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.Log == nil {
		a.Log = zap.S()
	}
	return a
}

// Init opens the store, provisions the admin account, and installs
// middleware and routes. Start calls it; tests call it directly and drive
// a.Echo with httptest.
func (a *App) Init(ctx context.Context) error {
	if err := a.Config.Validate(); err != nil {
		return err
	}
	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("insighthub: init store: %w", err)
		}
		a.Store = store
		a.ownsStore = true
	}
	if err := a.ensureAdmin(ctx); err != nil {
		return fmt.Errorf("insighthub: provision admin: %w", err)
	}

	a.Sidebar = NewSidebarCache(a.Store, a.Config.SidebarCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	go a.loginLimiter.Run(a.stop)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) ensureAdmin(ctx context.Context) error {
	hash := a.Config.AdminPasswordHash
	if hash == "" {
		var err error
		if hash, err = HashPassword(a.Config.AdminPassword); err != nil {
			return err
		}
	}
	return a.Store.EnsureAdmin(ctx, a.Config.AdminEmail, hash)
}

// Start initializes the App and serves until the server is shut down.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}
	a.Log.Infow("server starting", "addr", a.Config.Addr, "url", a.Config.URL)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	select {
	case <-a.stop:
	default:
		close(a.stop)
	}
	if a.Store != nil && a.ownsStore {
		return a.Store.Close()
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.Config.StaticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/healthz", a.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/blog/", a.handleListing)
	e.GET("/blog/:slug/", a.handleArticle)
	e.GET("/contact/", a.handleContact)
	e.POST("/contact/", a.handleContactSubmit, publicWriteLimiter())
	e.GET("/about/", a.handleStatic("about", "About"))
	e.GET("/privacy-policy/", a.handleStatic("privacy", "Privacy Policy"))
	e.GET("/terms-of-service/", a.handleStatic("terms", "Terms of Service"))

	// JSON API
	api := e.Group("/api")
	api.GET("/search", a.apiSearch)
	api.GET("/categories", a.apiListCategories)
	api.GET("/comments", a.apiListComments)
	throttle := publicWriteLimiter()
	api.POST("/comments", a.apiCreateComment, throttle)
	api.POST("/subscribe", a.apiSubscribe, throttle)
	api.DELETE("/subscribe", a.apiUnsubscribe, throttle)
	api.POST("/contact", a.apiCreateContact, throttle)

	// Guarded per route so unmatched paths still reach the 404 handler.
	api.GET("/posts", a.apiListPosts, requireAdminAPI)
	api.POST("/posts", a.apiCreatePost, requireAdminAPI)
	api.GET("/posts/:id", a.apiGetPost, requireAdminAPI)
	api.PUT("/posts/:id", a.apiUpdatePost, requireAdminAPI)
	api.DELETE("/posts/:id", a.apiDeletePost, requireAdminAPI)
	api.POST("/categories", a.apiCreateCategory, requireAdminAPI)
	api.DELETE("/categories/:id", a.apiDeleteCategory, requireAdminAPI)
	api.GET("/subscribe", a.apiListSubscribers, requireAdminAPI)
	api.GET("/contact", a.apiListContact, requireAdminAPI)
	api.GET("/stats", a.apiStats, requireAdminAPI)
	api.POST("/upload", a.apiUpload, requireAdminAPI)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	admin := e.Group("/admin")
	admin.GET("/posts/new/", a.handleAdminNewPost, requireAdmin)
	admin.GET("/posts/:id/", a.handleAdminEditPost, requireAdmin)
	admin.POST("/posts/save/", a.handleAdminSavePost, requireAdmin)
	admin.POST("/posts/:id/delete/", a.handleAdminDeletePost, requireAdmin)
	admin.POST("/categories/", a.handleAdminCreateCategory, requireAdmin)
	admin.POST("/categories/:id/delete/", a.handleAdminDeleteCategory, requireAdmin)
	admin.GET("/images/", a.handleImageList, requireAdmin)
	admin.POST("/images/upload/", a.handleImageUpload, requireAdmin)
	admin.POST("/images/:filename/delete/", a.handleImageDelete, requireAdmin)
}
