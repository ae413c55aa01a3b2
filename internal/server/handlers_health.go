package server

import (
	"github.com/labstack/echo/v4"

	"github.com/deebugger/retrobot/internal/platform/version"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := s.clock.Now().Sub(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	if !s.readiness.Ready() {
		return c.JSON(503, map[string]any{
			"status":       "unhealthy",
			"failed_check": "slack_connection",
		})
	}
	return c.JSON(200, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(200, version.Get())
}
