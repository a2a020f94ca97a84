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

	"github.com/starford/slidesmith/internal/api"
	"github.com/starford/slidesmith/internal/deckservice"
	"github.com/starford/slidesmith/internal/generator"
	"github.com/starford/slidesmith/internal/index"
	"github.com/starford/slidesmith/internal/mcpserver"
	"github.com/starford/slidesmith/internal/sse"
	"github.com/starford/slidesmith/internal/storage"
)

// inboxExt is the extension of slide text files picked up from the inbox.
const inboxExt = ".txt"

// components are the long-lived pieces shared by the HTTP server and the
// MCP server.
type components struct {
	store *storage.FS
	db    *index.DB
	svc   *deckservice.Service
}

var errConfigRequired = errors.New("config is required")

// newLogger installs a structured JSON logger as the default.
func (app *application) newLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// open builds the store, index and deck service. The caller closes the
// returned DB.
func open(cfg *Config, logger *slog.Logger, publisher deckservice.Publisher) (*components, error) {
	if err := os.MkdirAll(cfg.Store.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Store.Path, storage.WithExclude(deckservice.AssetsDir))
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	themes, err := cfg.Import.Themes()
	if err != nil {
		return nil, fmt.Errorf("init themes: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	opts := []deckservice.Option{
		deckservice.WithThemes(themes),
		deckservice.WithGenerator(newGenerator(cfg.Generator)),
		deckservice.WithLogger(logger),
	}
	if publisher != nil {
		opts = append(opts, deckservice.WithPublisher(publisher))
	}

	return &components{store: store, db: db, svc: deckservice.NewService(store, db, opts...)}, nil
}

func newGenerator(cfg GeneratorConfig) generator.Generator {
	if !cfg.Enabled() {
		return generator.Disabled{}
	}
	return generator.NewOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout)
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	cfg := app.config
	logger := app.newLogger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_path", cfg.Store.Path),
		slog.String("inbox_path", cfg.Inbox.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("generator_mode", cfg.Generator.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(cfg.SSE.ListThrottle)
	defer broker.Close()

	c, err := open(cfg, logger, broker)
	if err != nil {
		return err
	}
	defer c.db.Close()

	var inbox *index.Inbox
	if cfg.Inbox.Enabled() {
		if err := os.MkdirAll(cfg.Inbox.Path, 0o755); err != nil {
			return fmt.Errorf("create inbox dir: %w", err)
		}
		inboxStore, err := storage.NewFS(cfg.Inbox.Path,
			storage.WithExtension(inboxExt),
			storage.WithExclude(cfg.Inbox.ProcessedDir),
		)
		if err != nil {
			return fmt.Errorf("init inbox: %w", err)
		}
		inbox = index.NewInbox(inboxStore, cfg.Inbox.Path, cfg.Inbox.ProcessedDir, inboxExt, c.svc, logger)
	}

	apiRouter := api.NewRouter(c.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := c.db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Keep the catalogue in step with deck files edited on disk.
	g.Go(func() error {
		if err := index.Watch(gCtx, c.db, c.store, cfg.Store.Path, logger, broker.PublishDeckEvent); err != nil {
			logger.Error("watcher: stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	if inbox != nil {
		g.Go(func() error {
			if err := inbox.Watch(gCtx); err != nil {
				logger.Error("inbox: stopped", slog.String("error", err.Error()))
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

// errShutdown cancels the group so the watchers stop with the HTTP server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout. Logs default to stderr so
// they do not corrupt the protocol stream.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := app.newLogger()

	c, err := open(app.config, logger, nil)
	if err != nil {
		return err
	}
	defer c.db.Close()

	logger.Info("mcp: serving on stdio", slog.String("store_path", app.config.Store.Path))
	return mcpserver.New(c.svc).ServeStdio()
}
