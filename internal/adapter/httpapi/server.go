// Package httpapi exposes the plant directory and the suitability
// scorer over HTTP, plus the usual health and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/florahub/ecocrop-etl/internal/domain"
	"github.com/florahub/ecocrop-etl/internal/suitability"
)

// ReadinessChecker reports whether the service is ready to serve
// traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// PlantDirectory serves plant lookups; satisfied by the sqlite store.
type PlantDirectory interface {
	GetByCode(ctx context.Context, code int) (domain.PlantSummary, error)
	GetByScientificName(ctx context.Context, name string) (domain.PlantSummary, error)
	SearchByCommonName(ctx context.Context, query string, limit int) ([]domain.PlantSummary, error)
	SearchByName(ctx context.Context, query string, limit int) ([]domain.PlantSummary, error)
}

// Assessor scores a species at a place; satisfied by the suitability
// service.
type Assessor interface {
	AssessByCode(ctx context.Context, code int, place suitability.Place) (suitability.Assessment, error)
	AssessByName(ctx context.Context, name string, place suitability.Place) (suitability.Assessment, error)
}

// Server routes the API, health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	directory  PlantDirectory
	assessor   Assessor
	logger     *slog.Logger
}

// NewServer creates the HTTP server. Health, readiness, and metrics
// routes are always registered; the plant and suitability routes only
// when a directory and assessor are provided, so the ETL process can
// expose operational endpoints without the query API.
func NewServer(addr string, ready ReadinessChecker, directory PlantDirectory, assessor Assessor, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		directory: directory,
		assessor:  assessor,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	if directory != nil {
		mux.HandleFunc("GET /api/v1/plants/{code}", s.handleGetPlant)
		mux.HandleFunc("GET /api/v1/plants", s.handleSearchPlants)
	}
	if assessor != nil {
		mux.HandleFunc("POST /api/v1/suitability", s.handleSuitability)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful
// shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context
// deadline.
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

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
