package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"loan-amortizer/metrics"
	"loan-amortizer/service"
)

// RouterConfig carries the services and cross-cutting pieces the API is built from.
type RouterConfig struct {
	Schedules      *service.ScheduleService
	Projections    *service.ProjectionService
	Comparisons    *service.TermComparisonService
	Metrics        *metrics.Metrics
	Limiter        *RateLimiter
	AllowedOrigins []string
	HealthChecks   map[string]Pinger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logger)
	r.Use(middleware.Recoverer)
	r.Use(NewCORS(cfg.AllowedOrigins).Handler)

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", NewHealthHandler(cfg.HealthChecks).Health)

		limit := RateLimit(cfg.Limiter, cfg.Metrics, defaultRequestCost)
		limitBatch := RateLimit(cfg.Limiter, cfg.Metrics, batchRequestCost)

		schedules := NewScheduleHandler(cfg.Schedules)
		r.Route("/schedules", func(r chi.Router) {
			r.With(limit).Post("/", schedules.Create)
			r.With(limit).Get("/", schedules.List)
			r.With(limitBatch).Post("/batch", schedules.Batch)
			r.With(limit).Get("/{id}", schedules.Get)
			r.With(limit).Delete("/{id}", schedules.Delete)
		})

		r.With(limit).Post("/projections", NewProjectionHandler(cfg.Projections).Project)
		r.With(limit).Post("/comparisons", NewComparisonHandler(cfg.Comparisons).Compare)
	})

	return r
}
