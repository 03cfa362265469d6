package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"keyframe/internal/config"
	"keyframe/internal/logging"
	"keyframe/internal/notifications"
	"keyframe/internal/queue"
	"keyframe/internal/stage"
)

// StageHealthFunc reports per-stage readiness; the daemon wires the
// workflow manager's status here.
type StageHealthFunc func(ctx context.Context) map[string]stage.Health

// Server exposes the job submission and feed endpoints.
type Server struct {
	bind        string
	store       *queue.Store
	logger      *slog.Logger
	notifier    notifications.Service
	stageHealth StageHealthFunc

	echo     *echo.Echo
	listener net.Listener
}

// NewServer constructs the HTTP server. A blank bind address disables it
// and returns nil.
func NewServer(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service, stageHealth StageHealthFunc) *Server {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		bind:        bind,
		store:       store,
		logger:      logging.NewComponentLogger(logger, "api"),
		notifier:    notifier,
		stageHealth: stageHealth,
		echo:        e,
	}

	e.POST("/api/v1/generate", s.handleGenerate)
	e.GET("/api/v1/status/:id", s.handleStatus)
	e.GET("/api/v1/feed", s.handleFeed)
	e.GET("/health", s.handleHealth)
	return s
}

// Handler returns the underlying HTTP handler (used in tests).
func (s *Server) Handler() http.Handler { return s.echo }

// Start begins serving requests until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.echo.Listener = listener

	go func() {
		if err := s.echo.Start(s.bind); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	if s == nil || s.echo == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("api shutdown failed", logging.Error(err))
	}
}

// Addr returns the bound listener address, or the configured bind before
// Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}
