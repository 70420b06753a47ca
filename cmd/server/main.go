package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/web3-frozen/whirlpool-monitor/internal/cache"
	"github.com/web3-frozen/whirlpool-monitor/internal/config"
	"github.com/web3-frozen/whirlpool-monitor/internal/dashboard"
	"github.com/web3-frozen/whirlpool-monitor/internal/handler"
	"github.com/web3-frozen/whirlpool-monitor/internal/middleware"
	"github.com/web3-frozen/whirlpool-monitor/internal/source"
	"github.com/web3-frozen/whirlpool-monitor/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database connected and migrated")

	opts := []source.StoreOption{source.WithLimit(cfg.RecordLimit)}
	pingers := []handler.Pinger{db}

	// Redis record cache is optional; retry up to 30s for ExternalSecret to sync
	if cfg.RedisURL != "" {
		var sc *cache.SnapshotCache
		for i := 0; i < 6; i++ {
			sc, err = cache.New(cfg.RedisURL, cfg.RedisPassword, cfg.CacheTTL)
			if err == nil {
				break
			}
			logger.Warn("redis not ready, retrying...", "attempt", i+1, "error", err)
			time.Sleep(5 * time.Second)
		}
		if err != nil {
			logger.Warn("redis unavailable, serving records without cache", "error", err)
		} else {
			defer sc.Close()
			opts = append(opts, source.WithCache(sc))
			pingers = append(pingers, sc)
			logger.Info("redis connected for record cache", "ttl", cfg.CacheTTL.String())
		}
	}

	records := source.NewStoreSource(db, logger, opts...)

	view := dashboard.NewView("server", records, cfg.RefreshInterval, logger)
	if err := view.Activate(ctx); err != nil {
		logger.Error("failed to start dashboard view", "error", err)
		os.Exit(1)
	}
	defer view.Deactivate()

	// HTTP routes
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.FrontendOrigin))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handler.Health())
	r.Get("/readyz", handler.Ready(pingers...))
	r.Get("/", handler.Page(view, logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/whirlpool", handler.Records(records, logger))
		r.Get("/dashboard", handler.Dashboard(view))
		r.Post("/dashboard/selection", handler.SelectPosition(view))
		r.Post("/dashboard/refresh", handler.RefreshDashboard(view))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "record_limit", records.Limit())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gracefully")
	view.Deactivate()
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
