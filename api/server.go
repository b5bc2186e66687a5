package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server exposes the chunker over HTTP.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer wires the routes. gatherer backs /metrics; nil uses the default
// Prometheus registry.
func NewServer(chunker Chunker, port int, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + strconv.Itoa(port),
			Handler:           NewHandler(chunker, gatherer, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func NewHandler(chunker Chunker, gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	h := &handlers{chunker: chunker, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/chunk", h.chunk)
	mux.HandleFunc("/api/models", h.models)
	mux.HandleFunc("/health", h.health)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return requestLogger(logger, mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", zap.String("addr", s.httpServer.Addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down API server")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
