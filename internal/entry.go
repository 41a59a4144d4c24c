// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/newsledger/internal/api"
	"github.com/starford/newsledger/internal/catalog"
	"github.com/starford/newsledger/internal/dataset"
	"github.com/starford/newsledger/internal/mcpserver"
	"github.com/starford/newsledger/internal/newsservice"
	"github.com/starford/newsledger/internal/sse"
	"github.com/starford/newsledger/internal/storage"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		app.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	return app, nil
}

// openCatalog creates the data directory if needed and loads every dataset.
func (a *application) openCatalog(ctx context.Context) (*catalog.Catalog, error) {
	cfg := a.config

	if err := os.MkdirAll(cfg.Datasets.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	src, err := storage.NewFS(cfg.Datasets.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	cat := catalog.New(src, cfg.Datasets.Files(), cfg.Datasets.Delim(), a.logger)
	start := time.Now()
	if err := cat.Load(ctx); err != nil {
		return nil, fmt.Errorf("load datasets: %w", err)
	}
	a.logger.Info("Datasets loaded",
		slog.String("dir", src.Root()),
		slog.Duration("elapsed", time.Since(start)))
	return cat, nil
}

func (a *application) service(cat *catalog.Catalog) *newsservice.Service {
	return newsservice.NewService(cat, a.config.Report.Year, a.config.Report.Keyword, a.logger)
}

// OpenService loads the datasets and returns a service over them, for
// one-shot commands that do not start a server.
func OpenService(ctx context.Context, opts ...Option) (*newsservice.Service, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	cat, err := app.openCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return app.service(cat), nil
}

// RunMCP loads the datasets and serves the MCP tools on stdin/stdout.
// The logger must not write to stdout.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cat, err := app.openCatalog(ctx)
	if err != nil {
		return err
	}

	srv := mcpserver.New(app.service(cat), app.version)
	app.logger.Info("MCP server starting on stdio")
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	cfg := app.config
	logger := app.logger
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_dir", cfg.Datasets.Dir),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	cat, err := app.openCatalog(ctx)
	if err != nil {
		return err
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	cat.OnEvent(func(kind string, id dataset.ID) {
		broker.PublishDatasetEvent(kind, id.String())
	})

	svc := app.service(cat)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Watch.Enabled {
		g.Go(func() error {
			if err := catalog.Watch(gCtx, cat, cfg.Watch.Debounce, logger); err != nil {
				logger.Warn("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher exits once the server is down.
var errShutdown = errors.New("shutdown")
