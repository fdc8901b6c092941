package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/divya01062005/Ayurtrace/internal/middleware"
	"github.com/divya01062005/Ayurtrace/internal/models"
	"github.com/divya01062005/Ayurtrace/internal/service"
)

// TraceService defines the operations the trace handlers require.
type TraceService interface {
	CreateBatch(ctx context.Context, collectorAddress string, in service.CreateBatchInput) (*service.CreateBatchResult, error)
	LogEvent(ctx context.Context, actorAddress string, in service.LogEventInput) (*models.Event, error)
	ListBatches(ctx context.Context) ([]models.Batch, error)
	RecentEvents(ctx context.Context, limit int) ([]models.Event, error)
	Verify(ctx context.Context, batchID string) (*models.VerifyResult, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// TraceHandler handles batch, event, verification, and stats requests.
type TraceHandler struct {
	// TraceService performs the underlying trace operations.
	TraceService TraceService
}

// ListBatches returns every batch, newest first.
func (h *TraceHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.TraceService.ListBatches(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if batches == nil {
		batches = []models.Batch{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"batches": batches})
}

// CreateBatch stores a new batch for the authenticated collector.
func (h *TraceHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	var in service.CreateBatchInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := h.TraceService.CreateBatch(r.Context(), claims.Subject, in)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// LogEvent stores a downstream supply-chain event.
func (h *TraceHandler) LogEvent(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	var in service.LogEventInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	event, err := h.TraceService.LogEvent(r.Context(), claims.Subject, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrBatchNotFound):
			writeError(w, http.StatusNotFound, "batch not found")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"event": event})
}

// RecentEvents returns the latest events across all batches.
func (h *TraceHandler) RecentEvents(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.TraceService.RecentEvents(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// Verify is the public consumer endpoint behind the QR code. An
// unknown batch id yields 404; a known batch with zero events is a
// valid, verified response.
func (h *TraceHandler) Verify(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchId")
	result, err := h.TraceService.Verify(r.Context(), batchID)
	if err != nil {
		if errors.Is(err, service.ErrBatchNotFound) {
			writeError(w, http.StatusNotFound, "batch not found or invalid QR code")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Stats returns aggregate counters for the admin dashboard.
func (h *TraceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.TraceService.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
