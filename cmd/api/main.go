// Package main is the entrypoint for the ParkFlow API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/parkflow/parkflow/internal/cache"
	"github.com/parkflow/parkflow/internal/config"
	"github.com/parkflow/parkflow/internal/handler"
	"github.com/parkflow/parkflow/internal/metrics"
	"github.com/parkflow/parkflow/internal/middleware"
	"github.com/parkflow/parkflow/internal/repository"
	"github.com/parkflow/parkflow/internal/server"
	"github.com/parkflow/parkflow/internal/service"
	"github.com/parkflow/parkflow/internal/worker/reaper"
)

// limiterIdleTTL is how long an unused in-process rate limit bucket is kept.
const limiterIdleTTL = 10 * time.Minute

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := initLogger(cfg)

	if cfg.AutoMigrate {
		if err := repository.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error("failed to run migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			)
			return err
		}
		logger.Info("database migrations applied")
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.Options{
		MaxConns:     cfg.DBMaxConns,
		MinConns:     cfg.DBMinConns,
		QueryTimeout: cfg.QueryTimeout,
	})
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return err
	}
	defer repo.Close()
	logger.Info("connected to database")

	healthHandler := handler.NewHealthHandler(logger).AddCheck("postgres", repo)

	var limiter middleware.Limiter
	var memLimiter *cache.MemoryLimiter
	if cfg.RedisURL != "" {
		cacheClient, err := cache.New(ctx, cfg.RedisURL, cache.Options{
			PoolSize:     cfg.RedisPoolSize,
			MinIdleConns: cfg.RedisMinIdleConns,
		})
		if err != nil {
			logger.Error("failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			return err
		}
		defer cacheClient.Close()
		logger.Info("connected to Redis")
		limiter = cacheClient
		healthHandler.AddCheck("redis", cacheClient)
	} else {
		memLimiter = cache.NewMemoryLimiter(limiterIdleTTL)
		limiter = memLimiter
		logger.Info("REDIS_URL not set, rate limiting is per process")
	}

	var recorder metrics.Recorder = metrics.NewNoop()
	var registry *prometheus.Registry
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewCollector(registry)
	}

	authService := service.NewAuthService(repo, recorder)
	authHandler := handler.NewAuthHandler(authService, logger, cfg.IsProduction())

	r := setupRouter(routerDeps{
		cfg:      cfg,
		logger:   logger,
		auth:     authHandler,
		health:   healthHandler,
		limiter:  limiter,
		recorder: recorder,
		registry: registry,
	})

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	if memLimiter != nil {
		srv.OnShutdown("rate limiter", func(context.Context) error {
			memLimiter.Stop()
			return nil
		})
	}

	if cfg.SessionCleanupInterval > 0 {
		sessionReaper := reaper.New(repo, logger, recorder, cfg.SessionCleanupInterval)
		go func() {
			if err := sessionReaper.Run(ctx); err != nil {
				logger.Error("session reaper exited", "error", err)
			}
		}()
		srv.OnShutdown("session reaper", sessionReaper.Shutdown)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"metrics", cfg.MetricsEnabled,
	)

	return srv.Run(ctx)
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s&]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
