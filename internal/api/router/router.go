package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pratik-mahalle/costlens/internal/api/handlers"
	"github.com/pratik-mahalle/costlens/internal/api/middleware"
	"github.com/pratik-mahalle/costlens/internal/config"
	"github.com/pratik-mahalle/costlens/internal/pkg/logger"
	"github.com/pratik-mahalle/costlens/internal/pkg/metrics"
)

// Handlers bundles the HTTP handlers wired into the router
type Handlers struct {
	Health  *handlers.HealthHandler
	Anomaly *handlers.AnomalyHandler
}

// New builds the HTTP routing tree with the global middleware chain
func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))
	r.Use(middleware.RateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))
	r.Use(metrics.Middleware)

	// Health checks and metrics
	r.Get("/health", h.Health.Healthz)
	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)
	r.Handle("/metrics", metrics.Handler())

	// Anomaly detection
	r.Route("/api/v1/anomalies", func(r chi.Router) {
		r.Post("/detect", h.Anomaly.Detect)
	})

	return r
}
