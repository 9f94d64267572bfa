package crawl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// StatusServer exposes read-only observability endpoints while a crawl runs:
// /healthz, /progress (JSON snapshot) and /metrics (Prometheus). It never
// feeds back into the crawl.
type StatusServer struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewStatusServer builds the server around a progress snapshot function.
func NewStatusServer(addr string, snapshot func() Progress, logger *zap.Logger) *StatusServer {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/progress", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snapshot()); err != nil {
			logger.Warn("Failed to encode progress", zap.Error(err))
		}
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return &StatusServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the HTTP handler, exposed for tests.
func (s *StatusServer) Handler() http.Handler {
	return s.srv.Handler
}

// Start serves in the background until Shutdown.
func (s *StatusServer) Start() {
	go func() {
		s.logger.Info("Status server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Status server failed", zap.Error(err))
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *StatusServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
