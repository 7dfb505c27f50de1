package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/righthome-ai/property-copilot/internal/middleware"
	"github.com/righthome-ai/property-copilot/pkg/logger"
)

// RouterConfig collects what the HTTP router needs.
type RouterConfig struct {
	Sessions *SessionHandler
	Stream   *StreamHandler
	Listings *ListingHandler
	Health   *HealthHandler
	Logger   *logger.Logger

	// AuthSecret enables JWT auth on /api/v1 when non-empty.
	AuthSecret        string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewRouter builds the API routes.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Correlation-ID"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", cfg.Health.Health)
	r.Get("/ready", cfg.Health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AuthSecret != "" {
			r.Use(middleware.Auth(cfg.AuthSecret))
		}
		if cfg.RateLimitRequests > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}

		r.Post("/turn", cfg.Sessions.StatelessTurn)

		r.Get("/listings", cfg.Listings.List)
		r.Get("/listings/{id}", cfg.Listings.Get)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", cfg.Sessions.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.Sessions.Get)
				r.Delete("/", cfg.Sessions.Delete)
				r.Post("/turns", cfg.Sessions.Turn)
				r.Post("/stream", cfg.Stream.StreamTurn)
				r.Post("/schedule", cfg.Sessions.Schedule)
				r.Get("/transcript", cfg.Sessions.Transcript)
			})
		})
	})

	return r
}
