// Package http exposes the bookmark ingestion API: POST /bookmark plus the
// liveness and metrics endpoints. It answers for validation and storage only;
// notification delivery is asynchronous and never reflected in a response.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/kart-io/bookmarkhub/pkg/logger"
)

// Config holds the HTTP listener settings.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server wraps the net/http server hosting the ingestion API.
type Server struct {
	server *http.Server
	log    logger.Logger
}

// NewServer creates the ingestion server. Zero config fields fall back to
// the loopback defaults.
func NewServer(cfg Config, handler http.Handler, log logger.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:5601"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if log == nil {
		log = logger.Discard
	}

	return &Server{
		server: &http.Server{
			Addr:           cfg.Addr,
			Handler:        handler,
			ReadTimeout:    cfg.ReadTimeout,
			WriteTimeout:   cfg.WriteTimeout,
			MaxHeaderBytes: 1 << 20,
		},
		log: log,
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start runs the listener until Stop is called. It returns
// http.ErrServerClosed after a clean shutdown.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop drains in-flight requests until the context expires. Detached
// dispatch goroutines are not waited for.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("HTTP server shutting down")
	return s.server.Shutdown(ctx)
}
