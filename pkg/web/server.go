// Package web exposes the scanner over HTTP and streams scan progress to
// websocket clients.
package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-panscan/internal/log"
	"github.com/teslashibe/go-panscan/pkg/camera"
	"github.com/teslashibe/go-panscan/pkg/hub"
	"github.com/teslashibe/go-panscan/pkg/scan"
)

// TrackedLister exposes the live tracked-object store. Implemented by
// camera.Tracker; nil disables the /api/objects endpoint.
type TrackedLister interface {
	Tracked() []camera.TrackedInfo
}

// Server is the scanner's HTTP and websocket front end.
type Server struct {
	app  *fiber.App
	port string

	scanner *scan.Scanner
	tracker TrackedLister

	// progressHub fans scan progress out to websocket clients.
	progressHub *hub.Hub
}

// NewServer creates a server around the given scanner. tracker may be nil
// when no live store is available.
func NewServer(port string, scanner *scan.Scanner, tracker TrackedLister) *Server {
	s := &Server{
		port:        port,
		scanner:     scanner,
		tracker:     tracker,
		progressHub: hub.New("progress"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "panscan",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Get("/positions", s.handlePositions)
	api.Post("/scan", s.handleStartScan)
	api.Get("/scan/latest", s.handleLatest)
	api.Get("/objects", s.handleObjects)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/progress", websocket.New(s.handleProgressWS))

	s.app = app
	return s
}

// Start runs the server. Blocks until shutdown.
func (s *Server) Start() error {
	go s.progressHub.Run()
	log.Info("web server listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("web server", "error", err)
		}
	}()
}

// Shutdown gracefully stops the web server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// ProgressHub returns the progress hub for external use.
func (s *Server) ProgressHub() *hub.Hub {
	return s.progressHub
}
