package cmd

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

	"github.com/spf13/cobra"

	"loan-amortizer/config"
	httpLayer "loan-amortizer/http"
	"loan-amortizer/logging"
	"loan-amortizer/metrics"
	"loan-amortizer/repository"
	"loan-amortizer/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API.

Configuration is read from the environment and an optional .env file:
  SERVER_HOST, SERVER_PORT    listen address (localhost:8080)
  DB_PATH                     SQLite file; unset keeps schedules in memory
  REDIS_ADDR                  Redis cache; unset uses an in-process cache
  RETENTION_DAYS              stored schedules older than this are purged`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	// .env may have set LOG_LEVEL after the root command configured logging
	if !cmd.Flags().Changed("log-level") {
		logging.Setup(logging.ParseLevel(cfg.LogLevel))
	}

	ctx := cmd.Context()
	m := metrics.New()
	checks := map[string]httpLayer.Pinger{}

	var repo repository.ScheduleRepository
	if cfg.Database.Path != "" {
		sqliteRepo, err := repository.NewSQLiteScheduleRepository(ctx, cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open schedule store: %w", err)
		}
		defer sqliteRepo.Close()
		repo = sqliteRepo
		checks["database"] = sqliteRepo
		slog.Info("Using SQLite schedule store", "path", cfg.Database.Path)
	} else {
		repo = repository.NewScheduleRepositoryMemory()
		slog.Warn("DB_PATH not set, stored schedules are lost on restart")
	}

	var cache repository.CacheRepository
	if cfg.Cache.RedisAddr != "" {
		redisCache := repository.NewRedisCache(cfg.Cache.RedisAddr)
		defer redisCache.Close()
		// An unreachable Redis only costs recomputation
		if err := redisCache.Ping(ctx); err != nil {
			slog.Warn("Redis not reachable", "addr", cfg.Cache.RedisAddr, "error", err)
		}
		cache = redisCache
		checks["cache"] = redisCache
	} else {
		cache = repository.NewMemoryCache()
	}

	schedules := service.NewScheduleService(repo, cache,
		service.WithMetrics(m),
		service.WithCacheTTL(cfg.Cache.TTL),
		service.WithBatchConcurrency(cfg.Batch.Concurrency),
	)

	retention, err := service.NewRetentionJob(schedules, cfg.Retention.Schedule, cfg.Retention.MaxAge)
	if err != nil {
		return err
	}
	retention.Start()
	defer func() { <-retention.Stop().Done() }()

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.Window)
	defer rateLimiter.Stop()

	router := httpLayer.NewRouter(httpLayer.RouterConfig{
		Schedules:      schedules,
		Projections:    service.NewProjectionService(),
		Comparisons:    service.NewTermComparisonService(schedules),
		Metrics:        m,
		Limiter:        rateLimiter,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		HealthChecks:   checks,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("API listening", "addr", "http://"+cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("error starting server: %w", err)
	case <-quit:
		slog.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error during server shutdown", "error", err)
	}

	slog.Info("Server exited")
	return nil
}
