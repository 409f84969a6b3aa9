package server

import (
	"net/http"

	"github.com/costnav/costnav/internal/config"
	"github.com/costnav/costnav/internal/handler"
	"github.com/costnav/costnav/internal/middleware"
	"github.com/costnav/costnav/internal/security"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type handlers struct {
	health    *handler.HealthHandler
	providers *handler.ProvidersHandler
	ask       *handler.AskHandler // nil when no oracle is configured
}

func (s *Server) setupRoutes() http.Handler {
	cfg := s.cfg

	provider := ""
	var ask *handler.AskHandler
	if s.oracle != nil {
		provider = s.oracle.Provider()
		ask = handler.NewAskHandler(
			NewResolver(cfg, s.oracle, s.store),
			security.NewPromptValidator(cfg.MaxQuestionLength),
			NewPHIDetector(cfg),
		)
	}

	return newRouter(cfg, handlers{
		health:    handler.NewHealthHandler(s.store, provider),
		providers: handler.NewProvidersHandler(s.store),
		ask:       ask,
	})
}

func newRouter(cfg *config.Config, h handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))

	// Public routes
	r.Get("/health", h.health.Health)
	r.Get("/", h.health.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute))

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			r.Get("/providers", h.providers.Search)
			if h.ask != nil {
				r.With(middleware.RateLimit(cfg.AskRateLimitPerMinute)).Post("/ask", h.ask.Ask)
			}
		})
	})

	return r
}
