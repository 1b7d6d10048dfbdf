// Package ingest turns external vital-sign feeds into records.
//
// Sources speak a line-oriented CSV format:
//
//	patientId,timestampMs,signalType,value
//
// Saturation values may carry a trailing percent sign. Malformed lines
// are dropped, counted, and never abort the feed.
package ingest

import (
	"context"

	"github.com/vitalsentry/vitalsentry/internal/domain/model"
)

// Handler receives parsed records from a reader.
type Handler interface {
	Ingest(ctx context.Context, rec model.Record) error
}
