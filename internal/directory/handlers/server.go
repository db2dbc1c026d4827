// Package handlers provides the HTTP server for the directory service,
// bridging the transport layer and the session-aware business logic.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ServerConfig holds the listener settings.
type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server wraps the HTTP server with logging and graceful shutdown.
type Server struct {
	httpServer      *http.Server
	logger          *zap.Logger
	endpoint        string
	shutdownTimeout time.Duration
}

// NewServer constructs a Server serving handler on the configured port.
func NewServer(cfg ServerConfig, handler http.Handler, logger *zap.Logger) *Server {
	endpoint := fmt.Sprintf(":%d", cfg.Port)
	shutdown := cfg.ShutdownTimeout
	if shutdown <= 0 {
		shutdown = 5 * time.Second
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              endpoint,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		logger:          logger.Named("http_server"),
		endpoint:        endpoint,
		shutdownTimeout: shutdown,
	}
}

// Start listens and serves until Stop is called. It returns nil after a
// graceful shutdown and the listen or serve error otherwise.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.endpoint)
	if err != nil {
		return fmt.Errorf("HTTP listen error: %w", err)
	}
	return s.Serve(lis)
}

// Serve runs the server on an existing listener.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("Starting HTTP server", zap.String("endpoint", lis.Addr().String()))
	if err := s.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP serve error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	s.logger.Info("Server stopped")
}
