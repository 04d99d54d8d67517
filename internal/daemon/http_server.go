package daemon

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/pointwatch/internal/logfields"
	"git.home.luguber.info/inful/pointwatch/internal/poller"
	"git.home.luguber.info/inful/pointwatch/internal/version"
)

// AdminServer serves the observability surface: health, engine status, and
// Prometheus metrics. It is not the broadcast path.
type AdminServer struct {
	engine    *poller.Engine
	collector *poller.Collector
	server    *http.Server
	startTime time.Time
}

// NewAdminServer creates the admin HTTP server.
func NewAdminServer(listen string, engine *poller.Engine, collector *poller.Collector) *AdminServer {
	s := &AdminServer{
		engine:    engine,
		collector: collector,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.healthHandler)
	mux.HandleFunc("/status", s.statusHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{}))

	s.server = &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start runs the server until it is shut down.
func (s *AdminServer) Start() error {
	slog.Info("Admin server listening", slog.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *AdminServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type healthResponse struct {
	Status  string `json:"status"`
	State   string `json:"state"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

func (s *AdminServer) healthHandler(w http.ResponseWriter, _ *http.Request) {
	status := s.engine.Status()

	resp := healthResponse{
		Status:  "healthy",
		State:   string(status.State),
		Uptime:  time.Since(s.startTime).String(),
		Version: version.Version,
	}
	code := http.StatusOK
	switch status.State {
	case poller.StateDegraded:
		resp.Status = "degraded"
	case poller.StateStopped, poller.StateDisabled:
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode health response", logfields.Error(err))
	}
}

type statusResponse struct {
	poller.Snapshot
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *AdminServer) statusHandler(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		Snapshot:  s.engine.GetSnapshot(),
		Version:   version.Version,
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode status response", logfields.Error(err))
	}
}
