// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bufio"
	"context"
	"net/http"
	"strings"

	"github.com/vitalsentry/vitalsentry/internal/domain/model"
	"github.com/vitalsentry/vitalsentry/internal/ingest"
	"github.com/vitalsentry/vitalsentry/pkg/metrics"
)

// IngestDependencies defines the interface for record ingestion.
type IngestDependencies interface {
	Ingest(ctx context.Context, rec model.Record) error
}

// IngestHandler handles vital-sign submissions.
type IngestHandler struct {
	deps IngestDependencies
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(deps IngestDependencies) *IngestHandler {
	return &IngestHandler{deps: deps}
}

// HandleIngest handles POST /ingest requests. The body is one or more
// wire-format CSV lines; malformed lines are counted and dropped, never
// failing the batch.
func (h *IngestHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var accepted, dropped int

	scanner := bufio.NewScanner(r.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		rec, err := ingest.ParseLine(line)
		if err != nil {
			metrics.RecordMalformedLine()
			dropped++
			continue
		}

		if err := h.deps.Ingest(r.Context(), rec); err != nil {
			dropped++
			continue
		}
		accepted++
	}
	if err := scanner.Err(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	writeJSON(w, http.StatusAccepted, ingestResponse{Accepted: accepted, Dropped: dropped})
}
