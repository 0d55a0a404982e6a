package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/parkflow/parkflow/internal/config"
	"github.com/parkflow/parkflow/internal/handler"
	"github.com/parkflow/parkflow/internal/metrics"
	"github.com/parkflow/parkflow/internal/middleware"
)

type routerDeps struct {
	cfg      *config.Config
	logger   *slog.Logger
	auth     *handler.AuthHandler
	health   *handler.HealthHandler
	limiter  middleware.Limiter
	recorder metrics.Recorder
	// registry is nil when metrics are disabled.
	registry *prometheus.Registry
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.Metrics(d.recorder))
	r.Use(middleware.Security(middleware.SecurityConfig{HSTS: d.cfg.IsProduction()}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = d.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	if d.registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(d.registry))
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  d.logger,
		Limiter: d.limiter,
		Enabled: d.cfg.RateLimitAuthEnabled,
		RPS:     d.cfg.RateLimitAuthRPS,
		Burst:   d.cfg.RateLimitAuthBurst,
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))

		r.With(middleware.RateLimitIP(rateLimitCfg, "signup")).Post("/signup", d.auth.Signup)
		r.With(middleware.RateLimitIP(rateLimitCfg, "login")).Post("/login", d.auth.Login)
		r.Post("/logout", d.auth.Logout)
		r.Get("/me", d.auth.Me)
	})

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}
