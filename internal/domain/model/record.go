// Package model contains domain models passed between layers.
package model

// SignalType is the category of a vital-sign measurement.
type SignalType string

// The fixed signal catalog. Each signal carries its own rule set.
const (
	SignalSystolic   SignalType = "SystolicPressure"
	SignalDiastolic  SignalType = "DiastolicPressure"
	SignalSaturation SignalType = "Saturation"
	SignalECG        SignalType = "ECG"
	SignalHeartRate  SignalType = "HeartRate"
)

// Signals lists the known signal types in catalog order.
func Signals() []SignalType {
	return []SignalType{
		SignalSystolic,
		SignalDiastolic,
		SignalSaturation,
		SignalECG,
		SignalHeartRate,
	}
}

// IsValid reports whether the signal type belongs to the catalog.
func (s SignalType) IsValid() bool {
	switch s {
	case SignalSystolic, SignalDiastolic, SignalSaturation, SignalECG, SignalHeartRate:
		return true
	default:
		return false
	}
}

// Record is a single measurement for a patient. Records are immutable once
// created. Negative and zero values are valid inputs; duplicates at the same
// timestamp are legal and every consumer must process both.
type Record struct {
	PatientID int
	Signal    SignalType
	Value     float64
	TS        int64 // epoch milliseconds
}

// PartitionBySignal splits records by signal type, preserving the original
// relative order within each partition.
func PartitionBySignal(records []Record) map[SignalType][]Record {
	parts := make(map[SignalType][]Record)
	for _, r := range records {
		parts[r.Signal] = append(parts[r.Signal], r)
	}
	return parts
}

// FilterBySignal returns the records matching one signal type, preserving
// their relative order.
func FilterBySignal(records []Record, signal SignalType) []Record {
	var out []Record
	for _, r := range records {
		if r.Signal == signal {
			out = append(out, r)
		}
	}
	return out
}
