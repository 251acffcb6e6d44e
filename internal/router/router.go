// Package router assembles the HTTP routing tree.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/usersvc/usersvc/internal/handler"
	"github.com/usersvc/usersvc/internal/metrics"
	"github.com/usersvc/usersvc/internal/middleware"
	"github.com/usersvc/usersvc/internal/service"
)

// Deps holds everything the routes need.
type Deps struct {
	Users        *service.UserService
	HealthChecks []handler.HealthCheck
	// Metrics may be nil, in which case /metrics answers 503.
	Metrics metrics.Snapshotter
	// MetricsExporter, when set, serves /metrics instead of the snapshot
	// renderer (the Prometheus registry handler in production).
	MetricsExporter http.Handler
	// HTTPMetrics receives one observation per request; nil disables it.
	HTTPMetrics metrics.Recorder
	Logger      *slog.Logger
	Security    middleware.SecurityConfig
	CORS        middleware.CORSConfig
}

// New configures the chi router with all routes and middleware.
func New(deps Deps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := handler.New()
	healthHandler := handler.NewHealthHandler(deps.HealthChecks...)
	var metricsHandler http.Handler = http.HandlerFunc(handler.NewMetricsHandler(deps.Metrics).Metrics)
	if deps.MetricsExporter != nil {
		metricsHandler = deps.MetricsExporter
	}
	userHandler := handler.NewUserHandler(deps.Users, logger.With("component", "handler.user"))
	pageHandler := handler.NewPageHandler(deps.Users, logger.With("component", "handler.page"))

	maxBody := deps.Security.MaxRequestBodySize
	if maxBody <= 0 {
		maxBody = middleware.DefaultSecurityConfig().MaxRequestBodySize
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.Metrics(deps.HTTPMetrics))
	}
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(deps.Security))
	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.MaxBodySize(maxBody))

	// Operational endpoints
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// Server-rendered page
	r.Get("/", pageHandler.Index)
	r.Post("/", pageHandler.Submit)

	// User API
	r.Get("/users/ping", userHandler.Ping)
	r.Get("/users", userHandler.List)
	r.Post("/users", userHandler.Create)
	r.Get("/users/{id}", userHandler.Get)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
