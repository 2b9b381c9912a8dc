package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"statlab/app"
	"statlab/internal"
)

//go:embed templates/*.html content/*.md
var embeddedFiles embed.FS

// Pages groups the services behind the HTML pages
type Pages struct {
	Resampling  *app.ResamplingService
	Anova       *app.AnovaService
	Categorical *app.CategoricalService
	Retail      *app.RetailService
	Laptops     *app.LaptopService
	Mowers      *app.MowerService

	// Limiter is shared with the JSON API so both count against the same slots
	Limiter *app.RunLimiter
}

// App represents the UI application
type App struct {
	router    *chi.Mux
	pages     Pages
	settings  app.Settings
	templates *template.Template
	home      template.HTML
	logger    *internal.Logger
}

// Config holds UI application configuration
type Config struct {
	Port            string
	ShutdownTimeout time.Duration
	// API serves every /api/* request when set
	API http.Handler
}

// NewApp parses the templates and wires the routes
func NewApp(config Config, pages Pages, settings app.Settings, logger *internal.Logger) (*App, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}

	templates, err := template.New("").Funcs(funcMap()).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	home, err := renderMarkdown("content/home.md")
	if err != nil {
		return nil, err
	}

	a := &App{
		router:    chi.NewRouter(),
		pages:     pages,
		settings:  settings,
		templates: templates,
		home:      home,
		logger:    logger.WithComponent("UI"),
	}

	a.setupMiddleware()
	a.setupRoutes(config.API)
	return a, nil
}

// Handler exposes the router, mainly for tests
func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) setupRoutes(api http.Handler) {
	a.router.Get("/", a.handleHome)
	a.router.Get("/resampling", a.handleResampling)
	a.router.Get("/anova", a.handleAnova)
	a.router.Get("/categorical", a.handleCategorical)
	a.router.Get("/retail", a.handleRetail)
	a.router.Get("/laptops", a.handleLaptops)
	a.router.Get("/mowers", a.handleMowers)

	a.router.Handle("/metrics", promhttp.Handler())
	if api != nil {
		a.router.Handle("/api/*", api)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (a *App) Start(ctx context.Context, config Config) error {
	server := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting statlab server on %s", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.logger.Info("Shutting down server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
