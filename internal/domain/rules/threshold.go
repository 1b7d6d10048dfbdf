package rules

import (
	"fmt"

	"github.com/vitalsentry/vitalsentry/internal/domain/alert"
	"github.com/vitalsentry/vitalsentry/internal/domain/model"
)

// bounds describes the critical range for one signal. A bound is only
// checked when its flag is set: Saturation has no upper bound.
type bounds struct {
	high    float64
	low     float64
	hasHigh bool
	hasLow  bool
}

// criticalBounds is the per-signal threshold table. ECG carries no
// threshold rule; it is covered by the windowed-anomaly family.
var criticalBounds = map[model.SignalType]bounds{
	model.SignalSystolic:   {high: 180, low: 90, hasHigh: true, hasLow: true},
	model.SignalDiastolic:  {high: 120, low: 60, hasHigh: true, hasLow: true},
	model.SignalSaturation: {low: 92.0, hasLow: true},
	model.SignalHeartRate:  {high: 120, low: 50, hasHigh: true, hasLow: true},
}

// Threshold emits one alert per record strictly outside its signal's
// critical bounds. No deduplication and no hysteresis: five consecutive
// out-of-range readings yield five alerts. Signals without a bounds table
// entry produce nothing.
//
// The condition label is uniform across signals, including heart rate:
// "<Signal> Critical Threshold Alert".
func Threshold(signal model.SignalType, records []model.Record) []alert.Event {
	b, ok := criticalBounds[signal]
	if !ok {
		return nil
	}

	var events []alert.Event
	condition := fmt.Sprintf("%s Critical Threshold Alert", signal)
	for _, r := range records {
		if (b.hasHigh && r.Value > b.high) || (b.hasLow && r.Value < b.low) {
			events = append(events, alert.New(patientID(r), condition, r.TS))
		}
	}
	return events
}
