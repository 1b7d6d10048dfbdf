// Package repository defines the vital-record store interface and errors.
package repository

import (
	"context"

	"github.com/vitalsentry/vitalsentry/internal/domain/model"
)

// Store provides read/write access to patient vital-sign records.
type Store interface {
	// Append adds a record to the patient's history. Records may arrive
	// out of timestamp order; the store keeps each patient's history
	// sorted by timestamp.
	Append(ctx context.Context, rec model.Record) error

	// Records returns the patient's records with fromMS <= TS <= toMS,
	// ordered by timestamp. The returned slice is a copy the caller owns.
	// An unknown patient yields an empty result, not an error.
	Records(ctx context.Context, patientID int, fromMS, toMS int64) ([]model.Record, error)

	// Patients returns the IDs of all patients with at least one record.
	Patients(ctx context.Context) []int

	// Count returns the total number of records across all patients.
	Count(ctx context.Context) int
}
