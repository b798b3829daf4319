package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/papercomputeco/legalqa/api/mcp"
	"github.com/papercomputeco/legalqa/pkg/history"
	"github.com/papercomputeco/legalqa/pkg/logger"
	"github.com/papercomputeco/legalqa/pkg/qa"
)

// Server is the HTTP front of a qa.Service. A nil service is allowed and
// makes every question route answer 503.
type Server struct {
	config  Config
	service *qa.Service
	logger  *slog.Logger
	app     *fiber.App
}

// NewServer creates a new API server and registers its routes.
func NewServer(config Config, service *qa.Service, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}
	if config.PreviewChars <= 0 {
		config.PreviewChars = history.DefaultPreviewChars
	}

	s := &Server{
		config:  config,
		service: service,
		logger:  log,
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(cors.New())

	s.app.Get("/ping", s.handlePing)
	s.app.Get("/api/health", s.handleHealth)
	s.app.Post("/api/ask", s.handleAsk)
	s.app.Get("/api/retrieve", s.handleRetrieve)
	s.app.Get("/api/history", s.handleHistory)
	s.app.Post("/api/clear-history", s.handleClearHistory)

	mcpServer, err := mcp.NewServer(mcp.Config{
		Service: service,
		Noop:    config.MCPDisabled || service == nil,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}
	s.app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))

	if config.StaticDir != "" {
		s.app.Static("/", config.StaticDir)
	}

	s.app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Handler exposes the routes as a net/http handler, for embedding the API
// in another server or in tests.
func (s *Server) Handler() http.Handler {
	return adaptor.FiberApp(s.app)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && (fe.Code == fiber.StatusNotFound || fe.Code == fiber.StatusMethodNotAllowed) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Endpoint non trouve"})
	}

	s.logger.Error("unhandled API error", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Erreur serveur interne"})
}
