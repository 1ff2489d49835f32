package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server HTTP listener with graceful stop.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer leaves WriteTimeout unset: /socket connections are long-lived and exports can be large.
func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks until the listener fails or Stop is called. A Stop-initiated return is nil.
func (s *Server) Start() error {
	s.logger.Info("Starting event-registration HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests. Upgraded websocket connections are not tracked by
// Shutdown; they end when the hub closes their subscriptions.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping event-registration HTTP server")
	return s.httpServer.Shutdown(ctx)
}
