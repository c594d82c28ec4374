package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tressure/backend/internal/middleware"
)

// RouterConfig holds everything the router mounts.
type RouterConfig struct {
	Handler     *Handler
	Health      *HealthHandler
	Submissions *SubmissionHandler
	Admin       *AdminHandler
	Metrics     *MetricsHandler

	Logger         *slog.Logger
	AdminTokenHash string
	IsDevelopment  bool
	CORSOrigins    []string
	MaxBodySize    int64
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.CORSOrigins) > 0 {
		corsCfg.AllowedOrigins = cfg.CORSOrigins
	}

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(corsCfg))
	if cfg.MaxBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxBodySize))
	}

	// Probes
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	r.Get("/metrics", cfg.Metrics.Metrics)

	r.Get("/", cfg.Handler.Hello)

	r.Post("/submit", cfg.Submissions.Submit)
	r.Get("/users", cfg.Submissions.List)
	r.Get("/users/", cfg.Submissions.Get)
	r.Get("/users/{email}", cfg.Submissions.Get)
	r.Get("/winner", cfg.Submissions.Winner)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(middleware.AdminConfig{
			Logger:    cfg.Logger,
			TokenHash: cfg.AdminTokenHash,
		}))
		r.Post("/init-db", cfg.Admin.InitDB)
		r.Get("/init-db", cfg.Admin.InitDB)
	})

	r.NotFound(cfg.Handler.NotFound)
	r.MethodNotAllowed(cfg.Handler.MethodNotAllowed)

	return r
}
