// Package server exposes the operational HTTP surface: health probes,
// Prometheus metrics and build information. The bot itself talks to Slack
// over socket mode; nothing here handles retro traffic.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/deebugger/retrobot/internal/platform/config"
)

// ReadyChecker reports whether the Slack connection is up. The dispatcher
// implements this; readiness flips as socket mode connects and drops.
type ReadyChecker interface {
	Ready() bool
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	readiness ReadyChecker
	clock     clockwork.Clock
	startTime time.Time
}

func NewServer(cfg *config.Config, readiness ReadyChecker, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	srv := &Server{
		echo:      e,
		config:    cfg,
		readiness: readiness,
		clock:     clock,
		startTime: clock.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
