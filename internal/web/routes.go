package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/appraisal-gallery/internal/web/handlers"
)

func (s *Server) setupRoutes() error {
	// Create handlers
	configHandler := handlers.NewConfigHandler(s.config)
	layoutHandler, err := handlers.NewLayoutHandler(s.config, s.sessions)
	if err != nil {
		return err
	}

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Config
		r.Get("/config", configHandler.Get)

		// Layout
		r.Post("/layout", layoutHandler.Layout)
		r.Post("/layout/report", layoutHandler.Report)
		r.Post("/layout/preview", layoutHandler.Preview)
	})

	return nil
}
