package api

import (
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/aircode610/MouseTron/pkg/service"
)

// Server is the API server for recording executions and querying
// recommendations.
type Server struct {
	config Config
	svc    *service.Service
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server. The service is injected so the MCP
// tools and the HTTP handlers share one engine lock.
func NewServer(config Config, svc *service.Service, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		svc:    svc,
		logger: logger,
		app:    app,
	}

	if config.Metrics != nil {
		app.Use(s.countRequests)
		app.Get("/metrics", adaptor.HTTPHandler(config.Metrics.Handler()))
	}

	app.Get("/ping", s.handlePing)
	app.Post("/api/tools", s.handleRecord)
	app.Get("/api/tools", s.handleRecent)
	app.Get("/api/tools/recent", s.handleRecent)
	app.Get("/api/tools/stats", s.handleStats)
	app.Get("/api/tools/:id<int>", s.handleGetExecution)
	app.Get("/api/recommendations", s.handleRecommendations)

	if config.MCPHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(config.MCPHandler))
	}

	return s
}

func (s *Server) countRequests(c *fiber.Ctx) error {
	err := c.Next()
	s.config.Metrics.Request(c.Route().Path, c.Response().StatusCode())
	return err
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
