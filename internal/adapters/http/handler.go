// Package http exposes ingestion, range queries and liveness over HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quentinrf/sensor-data-pipeline/internal/domain"
	"github.com/quentinrf/sensor-data-pipeline/internal/ports"
)

// MaxBodyBytes caps an ingestion request body
const MaxBodyBytes = 10 << 20

// Ingester accepts a batch of reading lines
type Ingester interface {
	Ingest(ctx context.Context, p ports.Payload) (int, error)
}

// Querier reads the curated timeline
type Querier interface {
	Query(ctx context.Context, from, to string) ([]domain.ReadingRow, error)
}

// HealthChecker reports database liveness
type HealthChecker interface {
	Check(ctx context.Context) bool
}

// Handler serves the reading API
type Handler struct {
	ingest Ingester
	query  Querier
	health HealthChecker
}

// NewHandler creates a new HTTP handler
func NewHandler(ingest Ingester, query Querier, health HealthChecker) *Handler {
	return &Handler{
		ingest: ingest,
		query:  query,
		health: health,
	}
}

// RegisterRoutes maps the API onto mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /data", h.handleIngest)
	mux.HandleFunc("GET /data", h.handleQuery)
	mux.HandleFunc("GET /health", h.handleHealth)
}

// Routes returns the API wrapped in the standard middleware chain
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return RequestID(AccessLog(Recoverer(mux)))
}

type resultResponse struct {
	Success bool `json:"success"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// handleIngest: POST /data with a text/plain body of reading lines
func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn().Int64("limit", tooLarge.Limit).Msg("ingestion body too large")
			writeJSON(w, http.StatusRequestEntityTooLarge, resultResponse{Success: false})
			return
		}
		logger.Warn().Err(err).Msg("failed to read ingestion body")
		writeJSON(w, http.StatusBadRequest, resultResponse{Success: false})
		return
	}

	_, err = h.ingest.Ingest(r.Context(), ports.Payload{
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	})
	writeJSON(w, statusFor(err), resultResponse{Success: err == nil})
}

// handleQuery: GET /data?from=...&to=...
func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.query.Query(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		writeJSON(w, statusFor(err), resultResponse{Success: false})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleHealth: GET /health
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health.Check(r.Context()) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Database: "connected"})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Database: "disconnected"})
}

// statusFor maps service errors onto HTTP status codes. Causes are never
// written to the client; the services have already logged them.
// statusFor maps an outcome to a status code. Failure bodies still carry
// {"success":false}, so clients that only read the body see no difference
// between a rejection and a storage failure.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case domain.IsRejection(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
