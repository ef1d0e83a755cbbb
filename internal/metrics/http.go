package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
)

// Server exposes the metrics over HTTP for scraping during long runs.
type Server struct {
	metrics *Metrics
	server  *http.Server
	log     *logger.Logger
}

// NewServer creates a metrics HTTP server listening on addr.
func NewServer(addr string, m *Metrics, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}

	s := &Server{
		metrics: m,
		log:     log.WithComponent("metrics"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		s.log.Info("metrics server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("metrics server failed", "error", err)
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.Write([]byte(s.metrics.PrometheusFormat()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
