// Package http serves health endpoints and prometheus metrics for the query
// engine.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/huozhe/spotify-downloader/internal/core"
)

type Server struct {
	config  *core.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	metrics *Metrics
}

// Metrics implements core.Metrics over prometheus collectors.
type Metrics struct {
	QueriesTotal    *prometheus.CounterVec
	SongsTotal      prometheus.Counter
	DuplicatesTotal prometheus.Counter
	MismatchesTotal prometheus.Counter
}

func NewServer(config *core.ServerConfig, logger *zap.Logger) *Server {
	metrics := &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spotdl_queries_total",
				Help: "Total number of queries dispatched",
			},
			[]string{"kind", "status"},
		),
		SongsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "spotdl_songs_total",
				Help: "Total number of songs returned by dispatch",
			},
		),
		DuplicatesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "spotdl_duplicates_total",
				Help: "Total number of duplicate songs suppressed",
			},
		),
		MismatchesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "spotdl_mismatch_warnings_total",
				Help: "Total number of inexact cross-source title matches",
			},
		),
	}

	prometheus.MustRegister(
		metrics.QueriesTotal,
		metrics.SongsTotal,
		metrics.DuplicatesTotal,
		metrics.MismatchesTotal,
	)

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"spotdl"}`))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready","service":"spotdl"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return &Server{
		config:  config,
		logger:  logger,
		server:  server,
		metrics: metrics,
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting status server", zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down status server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown status server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("status server failed: %w", err)
	}

	return nil
}

func (s *Server) RecordQuery(kind, status string) {
	s.metrics.QueriesTotal.WithLabelValues(kind, status).Inc()
}

func (s *Server) RecordSongs(count int) {
	s.metrics.SongsTotal.Add(float64(count))
}

func (s *Server) RecordDuplicate() {
	s.metrics.DuplicatesTotal.Inc()
}

func (s *Server) RecordMismatch() {
	s.metrics.MismatchesTotal.Inc()
}
