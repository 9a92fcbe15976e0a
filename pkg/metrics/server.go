package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cubbit/localfs/internal/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the process registry over HTTP at /metrics for Prometheus
// to scrape, with graceful shutdown tied to a caller-supplied context.
type Server struct {
	server *http.Server
}

// NewServer creates a metrics HTTP server bound to addr. If metrics are not
// enabled (InitRegistry was never called), /metrics responds 503 rather
// than panicking on a nil registry.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()

	if IsEnabled() {
		mux.Handle("/metrics", promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{EnableOpenMetrics: true}))
	} else {
		mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "metrics collection is disabled", http.StatusServiceUnavailable)
		})
	}

	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start listens and serves until ctx is cancelled, then gracefully shuts
// down. Returns nil on a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics: listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
