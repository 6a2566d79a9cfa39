// Package httpserver exposes the minimal HTTP surface the hosting platform
// needs: a liveness endpoint reporting the tracker's current state.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gabapcia/tokenwatch/internal/tracker"
)

// Server is a small HTTP server answering health probes.
type Server struct {
	srv *http.Server
}

// New creates a health server listening on the given port.
//
// GET /healthz responds 200 with the tracker's lifecycle state in the body.
// The process is considered alive in every state, including reconnection:
// transient feed issues are handled internally and must not get the process
// restarted by its supervisor.
func New(port int, t tracker.Service) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, t.State())
	})

	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves until Shutdown is called. A closed server returns nil.
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
