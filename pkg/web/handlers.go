package web

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-panscan/internal/log"
	"github.com/teslashibe/go-panscan/pkg/hub"
	"github.com/teslashibe/go-panscan/pkg/scan"
)

// handleState returns the scanner lifecycle state.
func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"state":     s.scanner.State().String(),
		"observers": s.progressHub.ClientCount(),
	})
}

// handlePositions returns the planned pan angles for the configured scan.
func (s *Server) handlePositions(c *fiber.Ctx) error {
	positions, err := s.scanner.Config().Positions()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"positions": positions,
		"count":     len(positions),
	})
}

// handleStartScan launches a scan and streams its progress to the hub.
// A scan already in flight is a conflict, not a queue.
func (s *Server) handleStartScan(c *fiber.Ctx) error {
	session, err := s.scanner.Start(context.Background())
	if err != nil {
		if errors.Is(err, scan.ErrScanInFlight) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	go s.forward(session)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "started",
	})
}

// forward relays one session's events to the progress hub, followed by a
// completion message.
func (s *Server) forward(session *scan.Session) {
	for p := range session.Events() {
		s.progressHub.BroadcastJSON(p)
	}

	result, err := session.Result()
	done := fiber.Map{"state": "finished"}
	if err != nil {
		done["error"] = err.Error()
	}
	if result != nil {
		done["scan_id"] = result.ID
		done["objects"] = len(result.Objects)
		done["interrupted"] = result.Interrupted
	}
	s.progressHub.BroadcastJSON(done)

	if err != nil {
		log.Warn("scan finished with error", "error", err)
	}
}

// handleLatest returns the most recent completed scan result.
func (s *Server) handleLatest(c *fiber.Ctx) error {
	result := s.scanner.LastResult()
	if result == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no scan completed yet",
		})
	}
	return c.JSON(result)
}

// handleObjects returns the live tracked-object store.
func (s *Server) handleObjects(c *fiber.Ctx) error {
	if s.tracker == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no live tracker attached",
		})
	}
	return c.JSON(s.tracker.Tracked())
}

// handleProgressWS attaches one websocket client to the progress hub.
func (s *Server) handleProgressWS(c *websocket.Conn) {
	client := hub.NewClient(s.progressHub, c)
	client.Run()
}
