// Package health exposes liveness and readiness endpoints for the watcher
// process, so container schedulers can tell a draining poller from a hung
// one.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const checkTimeout = 5 * time.Second

// Report is the /health response body.
type Report struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]Result `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

// Result is one check's outcome inside a Report.
type Result struct {
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// CheckFunc probes one subsystem. The string is a human-readable detail for
// the report.
type CheckFunc func(ctx context.Context) (bool, string)

// Server serves /health, /ready, and /live on its own port.
type Server struct {
	port      int
	version   string
	startedAt time.Time

	mu     sync.RWMutex
	checks map[string]CheckFunc

	server *http.Server
}

// NewServer creates a health server; call Start to begin listening.
func NewServer(port int, version string) *Server {
	return &Server{
		port:      port,
		version:   version,
		startedAt: time.Now(),
		checks:    make(map[string]CheckFunc),
	}
}

// RegisterCheck adds a named readiness check. Registering the same name
// again replaces the previous check.
func (s *Server) RegisterCheck(name string, check CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Start begins serving in the background. Listen errors are swallowed; the
// watcher keeps running without its probe endpoints.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/live", s.handleLive)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: checkTimeout,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			_ = err
		}
	}()

	return nil
}

// Stop shuts the server down, honoring ctx as the drain deadline.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) snapshotChecks() map[string]CheckFunc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	checks := make(map[string]CheckFunc, len(s.checks))
	for name, check := range s.checks {
		checks[name] = check
	}
	return checks
}

// handleHealth runs every check and returns the full report. Any failing
// check degrades the status and the HTTP code.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	report := Report{
		Status:    "ok",
		Service:   "arbwatch",
		Version:   s.version,
		Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
		Checks:    make(map[string]Result),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	code := http.StatusOK
	for name, check := range s.snapshotChecks() {
		healthy, detail := check(ctx)
		report.Checks[name] = Result{Healthy: healthy, Detail: detail}
		if !healthy {
			report.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(report)
}

// handleReady answers 200 only while every registered check passes. The
// poller registers a check that fails during the shutdown drain, so load
// balancers stop routing before the process exits.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	for _, check := range s.snapshotChecks() {
		if healthy, _ := check(ctx); !healthy {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// handleLive is a bare liveness probe: the process is up.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}
