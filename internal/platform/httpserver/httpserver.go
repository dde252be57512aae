// Package httpserver wraps http.Server with the timeouts and lifecycle hooks
// the service needs, so main only deals with start and shutdown.
package httpserver

import (
	"context"
	"net/http"
	"time"
)

// Server is a thin wrapper around http.Server with sane defaults.
type Server struct {
	srv *http.Server
}

// New creates a server listening on addr serving handler.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// ListenAndServe starts serving. Blocks until the server stops.
func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
