// Package rules implements the rule evaluation engine: pure, stateless
// functions that scan a patient's time-ordered measurement history and
// decide which alert events to emit.
//
// Every evaluator tolerates empty or short input (zero alerts, no error),
// never mutates the record sequence it is given, and treats negative or
// zero measurement values as ordinary data. Alert timestamps are always
// taken from the triggering record, never from evaluation wall-clock time.
package rules

import (
	"sort"
	"strconv"

	"github.com/vitalsentry/vitalsentry/internal/domain/model"
)

// Family identifies a rule family in logs, metrics, and alert priorities.
type Family string

// The five rule families.
const (
	FamilyThreshold   Family = "threshold"
	FamilyTrend       Family = "trend"
	FamilyRapidChange Family = "rapid_change"
	FamilyCorrelation Family = "correlation"
	FamilyAnomaly     Family = "anomaly"
)

// Shared window constants.
const (
	// WindowMS is the default trailing look-back window for all families.
	WindowMS = int64(86_400_000)

	// tenMinutesMS bounds the rapid-change pair scan.
	tenMinutesMS = int64(600_000)
)

func patientID(r model.Record) string {
	return strconv.Itoa(r.PatientID)
}

// sortedByTS returns a copy of records ordered by ascending timestamp.
// The stable sort keeps arrival order among records with equal timestamps.
func sortedByTS(records []model.Record) []model.Record {
	out := make([]model.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TS < out[j].TS })
	return out
}
