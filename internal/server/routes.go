package server

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fonthunter/internal/db"
	"fonthunter/internal/handlers"
	"fonthunter/internal/handlers/api"
	"fonthunter/internal/middleware"
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Hunter api.Hunter
	// DB is nil when hunt history is disabled.
	DB   *db.DB
	Auth *middleware.AuthMiddleware
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(deps Deps) {
	auth := deps.Auth
	if auth == nil {
		auth = &middleware.AuthMiddleware{}
	}

	var (
		pinger handlers.Pinger
		store  api.HuntStore
	)
	if deps.DB != nil {
		pinger = deps.DB
		store = deps.DB
	}

	// Initialize handlers
	probeHandler := handlers.NewProbeHandler(pinger)
	pageHandler := handlers.NewHuntPageHandler(deps.Hunter, s.Cfg.HuntDeadline)
	huntHandler := api.NewHuntHandler(deps.Hunter, s.Cfg.HuntDeadline)
	historyHandler := api.NewHistoryHandler(store)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Frontend
	s.App.Get("/", func(c fiber.Ctx) error {
		return c.Redirect().To("/hunt")
	})
	s.App.Get("/hunt", pageHandler.Show)

	// JSON API
	apiGroup := s.App.Group("/api", auth.RequireAuth)
	apiGroup.Post("/hunt", huntHandler.Hunt)
	apiGroup.Get("/keywords", huntHandler.Keywords)
	apiGroup.Get("/report", huntHandler.Report)
	apiGroup.Get("/hunts", historyHandler.List)
	apiGroup.Get("/hunts/:id", historyHandler.Get)
}
