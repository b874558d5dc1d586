package api

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"rcon-go/internal/logger"
)

// HealthServer exposes liveness and readiness endpoints for rcond.
type HealthServer struct {
	server *http.Server
	ready  atomic.Bool
	conns  func() int
}

// NewHealthServer serves on addr. conns, if non-nil, reports the number of
// open rcon connections in the readiness body.
func NewHealthServer(addr string, conns func() int) *HealthServer {
	mux := http.NewServeMux()
	hs := &HealthServer{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		conns: conns,
	}

	mux.HandleFunc("/health", hs.handleHealth)
	mux.HandleFunc("/ready", hs.handleReady)

	return hs
}

// Start serves in the background; listen errors are logged.
func (s *HealthServer) Start() {
	go func() {
		logger.Info("Health server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Health server error", "error", err)
		}
	}()
}

// Stop shuts the server down gracefully.
func (s *HealthServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// SetReady flips the /ready endpoint between 200 and 503.
func (s *HealthServer) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Handler returns the mux serving /health and /ready.
func (s *HealthServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *HealthServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
		return
	}

	w.WriteHeader(http.StatusOK)
	if s.conns != nil {
		fmt.Fprintf(w, "ready connections=%d", s.conns())
		return
	}
	w.Write([]byte("ready"))
}
