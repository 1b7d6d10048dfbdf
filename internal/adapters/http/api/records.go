// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/vitalsentry/vitalsentry/internal/adapters/repository"
	"github.com/vitalsentry/vitalsentry/internal/domain/model"
	"github.com/vitalsentry/vitalsentry/internal/domain/rules"
)

// RecordDependencies defines the interface for reading stored records.
type RecordDependencies interface {
	Records(ctx context.Context, patientID int, fromMS, toMS int64) ([]model.Record, error)
}

// RecordsHandler handles patient record queries.
type RecordsHandler struct {
	deps RecordDependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps RecordDependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

// recordResponse mirrors the stored record shape.
type recordResponse struct {
	PatientID   int     `json:"patientId"`
	SignalType  string  `json:"signalType"`
	Value       float64 `json:"value"`
	TimestampMS int64   `json:"timestampMs"`
}

// HandleGetRecords handles GET /records/{patientId} requests. Optional
// from and to query parameters bound the window in Unix milliseconds;
// the default is the standard evaluation window ending now.
func (h *RecordsHandler) HandleGetRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/records/")
	patientID, err := strconv.Atoi(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid patient id", ErrBadRequest))
		return
	}

	fromMS, toMS, err := windowBounds(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	records, err := h.deps.Records(r.Context(), patientID, fromMS, toMS)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}

	out := make([]recordResponse, len(records))
	for i, rec := range records {
		out[i] = recordResponse{
			PatientID:   rec.PatientID,
			SignalType:  string(rec.Signal),
			Value:       rec.Value,
			TimestampMS: rec.TS,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func windowBounds(r *http.Request) (int64, int64, error) {
	toMS := nowMS()
	fromMS := toMS - rules.WindowMS

	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, 0, errors.New("invalid from; must be unix milliseconds")
		}
		fromMS = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, 0, errors.New("invalid to; must be unix milliseconds")
		}
		toMS = parsed
	}
	return fromMS, toMS, nil
}
