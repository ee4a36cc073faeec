package server

import (
	"os"

	"github.com/fulmenhq/gofulmen/signals"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	"github.com/webinsights/webinsights/internal/observability"
	"github.com/webinsights/webinsights/internal/server/handlers"
	servermw "github.com/webinsights/webinsights/internal/server/middleware"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	// Public operational endpoints
	s.router.Get("/health", s.opts.Health.HealthHandler)
	s.router.Get("/health/live", s.opts.Health.LivenessHandler)
	s.router.Get("/health/ready", s.opts.Health.ReadinessHandler)
	s.router.Get("/health/startup", s.opts.Health.StartupHandler)

	s.router.Get("/version", handlers.VersionHandler)

	// Metrics endpoint (in server package to access HandleError)
	s.router.Get("/metrics", MetricsHandler)

	// Analysis endpoints require a bearer token and consume rate budget
	s.router.Group(func(r chi.Router) {
		r.Use(servermw.BearerAuth(s.opts.AuthSecret))
		r.Use(servermw.RateLimit(s.opts.Limiter))

		r.Post("/analyze", s.opts.API.AnalyzeHandler)
		r.Post("/converse", s.opts.API.ConverseHandler)
	})

	// Admin signal endpoint (optional, requires WEBINSIGHTS_ADMIN_TOKEN)
	s.registerAdminEndpoint()
}

// registerAdminEndpoint optionally registers the admin signal endpoint
func (s *Server) registerAdminEndpoint() {
	adminToken := os.Getenv("WEBINSIGHTS_ADMIN_TOKEN")
	logger := observability.ServerLogger

	if adminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no WEBINSIGHTS_ADMIN_TOKEN set)")
		}
		return
	}

	// HTTP signal handler with bearer token auth and its own rate limiting
	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: adminToken,
		RateLimit: 10,
		RateBurst: 5,
		Manager:   nil, // use default global manager
	})

	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("auth", "bearer token"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}
