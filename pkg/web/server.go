// Package web serves the animation REST API and the frame and event
// websocket streams.
package web

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-bbanim/internal/log"
	"github.com/teslashibe/go-bbanim/pkg/driver"
	"github.com/teslashibe/go-bbanim/pkg/hub"
	"github.com/teslashibe/go-bbanim/pkg/session"
)

// Version is reported by the health endpoint.
var Version = "0.1.0"

// Options configures the server.
type Options struct {
	// AccessLog enables the fiber request logger.
	AccessLog bool

	// Stats reports driver counters on /health when set.
	Stats func() driver.Stats
}

// Server is the HTTP and websocket front end.
type Server struct {
	app      *fiber.App
	sessions *session.Manager
	bc       *Broadcaster
	stats    func() driver.Stats
	logger   *slog.Logger
}

// NewServer creates the fiber app and registers every route.
func NewServer(sessions *session.Manager, bc *Broadcaster, opts Options) *Server {
	s := &Server{
		sessions: sessions,
		bc:       bc,
		stats:    opts.Stats,
		logger:   log.Component("web"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "bbanim",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	if opts.AccessLog {
		app.Use(logger.New())
	}

	app.Get("/health", s.handleHealth)

	api := app.Group("/api")
	api.Get("/animations", s.handleListAnimations)
	api.Get("/animations/:name", s.handleGetAnimation)
	api.Get("/animations/:name/sample", s.handleSampleAnimation)
	api.Get("/sessions", s.handleListSessions)
	api.Post("/sessions", s.handleCreateSession)
	api.Get("/sessions/:id", s.handleGetSession)
	api.Delete("/sessions/:id", s.handleDeleteSession)
	api.Post("/sessions/:id/switch", s.handleSwitch)
	api.Post("/sessions/:id/pause", s.handlePause)
	api.Post("/sessions/:id/resume", s.handleResume)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/frames", websocket.New(s.streamHandler(bc.Frames())))
	app.Get("/ws/events", websocket.New(s.streamHandler(bc.Events())))

	s.app = app
	return s
}

// App returns the fiber app so other packages can add routes.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// streamHandler subscribes a websocket to h. The optional session query
// parameter limits the stream to one session.
func (s *Server) streamHandler(h *hub.Hub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		client := hub.NewClient(h, c, c.Query("session"))
		client.Run()
	}
}
