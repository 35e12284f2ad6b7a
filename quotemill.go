// Package quotemill is an asynchronous share-artifact pipeline built with
// Go, Echo, and templ. Structured content items, quotes out of the box, are
// submitted over a token-authenticated JSON API, queued in SQLite, and
// rendered by a background worker into social preview images, embeddable
// HTML pages, markdown exports, and RSS feeds served as static files.
package quotemill

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
)

// App is the central quotemill application. It wires together the store,
// registry, renderer, worker, handlers, and middleware.
type App struct {
	Config   Config
	Echo     *echo.Echo
	Store    *Store
	Registry *Registry
	Items    *ItemService
	Renderer *ImageRenderer
	Feeds    *FeedPublisher
	Logger   *slog.Logger

	worker       *Worker
	workerCancel context.CancelFunc
	workerDone   chan struct{}
	tokens       *TokenCache
	loginLimiter *RateLimiter
	extraTypes   []TypeDefinition
	customRoutes []func(*App)
}

// New creates a quotemill App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Logger: SetupLogger(os.Getenv("LOG_LEVEL")),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the database, registry, renderer, middleware, and
// routes, launches the render worker, and starts the HTTP server. It blocks
// until the server stops.
func (a *App) Start() error {
	if err := a.init(); err != nil {
		return err
	}

	workerCtx, cancel := context.WithCancel(context.Background())
	a.workerCancel = cancel
	a.workerDone = make(chan struct{})
	go func() {
		defer close(a.workerDone)
		if err := a.worker.Run(workerCtx); err != nil && workerCtx.Err() == nil {
			a.Logger.Error("render worker stopped", slog.Any("error", err))
		}
	}()

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server and waits for the render worker to finish
// its current item.
func (a *App) Shutdown(ctx context.Context) error {
	if a.workerCancel != nil {
		a.workerCancel()
	}
	err := a.Echo.Shutdown(ctx)
	if a.workerDone != nil {
		select {
		case <-a.workerDone:
		case <-ctx.Done():
		}
	}
	if a.Store != nil {
		if cerr := a.Store.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (a *App) init() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("quotemill: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("quotemill: SessionSecret is required")
	}
	if a.Config.TokenSecret == "" {
		return fmt.Errorf("quotemill: TokenSecret is required")
	}

	a.Registry = NewRegistry()
	if err := a.Registry.Register(QuoteType{}); err != nil {
		return fmt.Errorf("quotemill: register quote type: %w", err)
	}
	for _, def := range a.extraTypes {
		if err := a.Registry.Register(def); err != nil {
			return fmt.Errorf("quotemill: register type: %w", err)
		}
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("quotemill: init store: %w", err)
	}
	a.Store = store

	if err := os.MkdirAll(a.Config.ShareRoot, 0o755); err != nil {
		return fmt.Errorf("quotemill: create share root: %w", err)
	}
	if err := installSharedAssets(a.Config.ShareRoot); err != nil {
		return fmt.Errorf("quotemill: install assets: %w", err)
	}

	renderer, err := NewImageRenderer()
	if err != nil {
		return fmt.Errorf("quotemill: init renderer: %w", err)
	}
	a.Renderer = renderer

	a.Items = NewItemService(a.Store, a.Registry, a.Logger)
	a.Feeds = NewFeedPublisher(a.Store, a.Registry, a.Config)
	a.worker = NewWorker(a.Store, a.Registry, a.Renderer, a.Feeds, a.Config, a.Logger)
	a.tokens = NewTokenCache(a.Config.TokenCacheTTL)
	a.loginLimiter = NewRateLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Rendered artifacts: images, embed pages, markdown, feeds.
	e.Static("/shared", a.Config.ShareRoot)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)

	api := e.Group("/api", a.requireToken)
	api.POST("/items", a.handleSubmitItem)
	api.GET("/items", a.handleListItems)
	api.GET("/items/:id", a.handleGetItem)
	api.PATCH("/items/:id", a.handlePatchItem)

	e.GET("/admin", a.handleAdmin)
	e.POST("/admin/login", a.handleAdminLogin)
	e.POST("/admin/logout", handleAdminLogout)
	e.POST("/admin/requeue/:id", a.handleAdminRequeue)
}
