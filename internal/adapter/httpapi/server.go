// Package httpapi exposes the operational endpoints plus read-only queries
// over the training collections.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tindershed/wildfire-data-etl/internal/domain"
	"github.com/tindershed/wildfire-data-etl/internal/export"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// EventSource serves the read-only training-data queries.
type EventSource interface {
	TrainingEvents(ctx context.Context) ([]domain.Event, error)
	FeatureRecords(ctx context.Context) ([]domain.FeatureRecord, error)
}

// Server exposes health, readiness, metrics, and query endpoints.
type Server struct {
	httpServer *http.Server
	ready      ReadinessChecker
	source     EventSource
	logger     *slog.Logger
}

// NewServer creates the HTTP server and its routes.
func NewServer(addr string, ready ReadinessChecker, source EventSource, logger *slog.Logger) *Server {
	s := &Server{
		ready:  ready,
		source: source,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/events", s.handleEvents)
	r.Get("/training", s.handleTraining)
	r.Get("/training.csv", s.handleTrainingCSV)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.ready.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.source.TrainingEvents(r.Context())
	if err != nil {
		s.logger.Error("training events query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "query failed"})
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleTraining(w http.ResponseWriter, r *http.Request) {
	records, err := s.source.FeatureRecords(r.Context())
	if err != nil {
		s.logger.Error("feature records query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "query failed"})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleTrainingCSV(w http.ResponseWriter, r *http.Request) {
	records, err := s.source.FeatureRecords(r.Context())
	if err != nil {
		s.logger.Error("feature records query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "query failed"})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="training.csv"`)
	if err := export.WriteCSV(w, records); err != nil {
		s.logger.Error("csv export failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
