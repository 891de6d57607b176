package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/p-n-ai/unit-planner/internal/api"
	"github.com/p-n-ai/unit-planner/internal/calendar"
	"github.com/p-n-ai/unit-planner/internal/catalog"
	"github.com/p-n-ai/unit-planner/internal/events"
	"github.com/p-n-ai/unit-planner/internal/live"
	"github.com/p-n-ai/unit-planner/internal/planner"
	"github.com/p-n-ai/unit-planner/internal/platform/config"
	"github.com/p-n-ai/unit-planner/internal/platform/database"
	"github.com/p-n-ai/unit-planner/internal/progress"
	"github.com/p-n-ai/unit-planner/internal/store"
	"github.com/p-n-ai/unit-planner/internal/suggest"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(os.Stdout, cfg.Log))

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.close()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}
	cal, err := calendar.Load(cfg.CalendarPath)
	if err != nil {
		return err
	}

	hub := live.NewHub(live.WithOriginPatterns(cfg.Live.Origins...))
	svc, err := planner.NewService(planner.ServiceConfig{
		KV:      backend.kv,
		Catalog: cat,
		Months:  cfg.Months,
		Totals: &progress.Totals{
			Concepts:    cfg.Curriculum.TotalConcepts,
			Topics:      cfg.Curriculum.TotalTopics,
			Assessments: cfg.Curriculum.TotalAssessments,
		},
		Suggester:   newSuggester(cfg.Suggestions),
		Events:      events.MultiLogger{backend.events, hub},
		SeedPresets: cfg.Storage.SeedPresets,
	})
	if err != nil {
		return err
	}
	if err := svc.Init(ctx); err != nil {
		return err
	}

	srv, err := api.New(api.Config{
		Service:  svc,
		Calendar: cal,
		Live:     hub,
		Checks:   backend.checks,
	})
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting",
			"addr", httpSrv.Addr,
			"backend", cfg.Storage.Backend,
			"suggestions", cfg.Suggestions.Mode,
			"months", len(cfg.Months),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	return nil
}

// newLogger builds the process logger from the log level and format.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

type backend struct {
	kv     store.KV
	events events.Logger
	checks map[string]api.Check
	close  func()
}

// openBackend connects the configured key/value store. With PostgreSQL,
// planning events are also written to the database.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		kv, err := store.DialRedis(ctx, cfg.Cache.URL, cfg.Storage.KeyPrefix)
		if err != nil {
			return nil, err
		}
		return &backend{
			kv:     kv,
			events: events.NopLogger{},
			checks: map[string]api.Check{"redis": kv.HealthCheck},
			close:  func() { _ = kv.Close() },
		}, nil

	case config.BackendPostgres:
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		kv, err := store.NewPostgresKV(db.Pool)
		if err != nil {
			db.Close()
			return nil, err
		}
		return &backend{
			kv:     kv,
			events: events.NewPostgresLogger(db.Pool),
			checks: map[string]api.Check{"postgres": db.HealthCheck},
			close:  db.Close,
		}, nil

	default:
		return &backend{
			kv:     store.NewMemoryKV(),
			events: events.NopLogger{},
			close:  func() {},
		}, nil
	}
}

// newSuggester returns the canned provider, preceded by the remote provider
// in remote mode so that it serves as the fallback.
func newSuggester(cfg config.SuggestionsConfig) suggest.Provider {
	router := suggest.NewRouter()
	if cfg.Mode == config.SuggestionsRemote && cfg.URL != "" {
		router.Register("remote", suggest.NewRemoteProvider(cfg.URL, suggest.WithTimeout(cfg.Timeout)))
	}
	router.Register("canned", suggest.NewCannedProvider())
	return router
}
