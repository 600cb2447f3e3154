package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/engine"
	"inkwell/internal/handlers"
	"inkwell/internal/markdown"
	"inkwell/internal/metrics"
	"inkwell/internal/middleware"
	"inkwell/internal/router"
	"inkwell/internal/store"
)

// ServeCmd runs the HTTP server. All settings come from the environment.
type ServeCmd struct{}

func (s *ServeCmd) Run(_ *Global) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	// Connect to PostgreSQL and run pending migrations.
	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	// Seed a welcome post in development (no-op if content exists).
	if cfg.IsDev() {
		if err := database.Seed(ctx, db); err != nil {
			return err
		}
	}

	// Connect to Valkey for the preview and page caches.
	valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		metricsHandler = metrics.HTTPHandler(reg)
	}

	eng, err := engine.New(markdown.Default(), engine.Options{
		Previews:      cache.NewPreviewCache(valkeyClient, cfg.PreviewCacheTTL),
		Recorder:      recorder,
		ExcerptLength: cfg.ExcerptLength,
	})
	if err != nil {
		return err
	}

	contentStore := store.NewContentStore(db)
	pageCache := cache.NewPageCache(valkeyClient, cfg.PageCacheTTL)

	limiter := middleware.NewRateLimiter(cfg.PreviewRateLimit, time.Minute)
	defer limiter.Stop()
	limiter.OnReject = func(*http.Request) {
		recorder.IncPreviewRequest(http.StatusTooManyRequests)
	}

	r := router.New(router.Routes{
		Preview:        handlers.NewPreview(eng, recorder, cfg.MaxBodyBytes),
		Content:        handlers.NewContent(contentStore, pageCache, cfg.MaxBodyBytes),
		Public:         handlers.NewPublic(eng, contentStore, pageCache, recorder),
		Cache:          handlers.NewCache(eng, pageCache),
		PreviewLimiter: limiter,
		Metrics:        metricsHandler,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr(), "metrics", cfg.MetricsEnabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
