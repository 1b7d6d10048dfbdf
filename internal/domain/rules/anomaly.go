package rules

import (
	"github.com/vitalsentry/vitalsentry/internal/domain/alert"
	"github.com/vitalsentry/vitalsentry/internal/domain/model"
)

// Windowed-anomaly parameters.
const (
	anomalyWindowSize = 5
	anomalyMultiplier = 1.5
)

// ECGAnomaly detects amplitude spikes against a trailing moving average.
// For each position, the arithmetic mean of the preceding five values is
// compared against the next point; the point fires when it strictly
// exceeds 1.5x the mean. Fewer than six records produce nothing.
//
// The multiplicative bound is kept as literal arithmetic: a zero or
// negative mean degenerates the threshold (zero or sign-flipped bound),
// which is deterministic and accepted behavior for near-zero ECG baselines.
func ECGAnomaly(records []model.Record) []alert.Event {
	var events []alert.Event
	for i := 0; i+anomalyWindowSize < len(records); i++ {
		var sum float64
		for j := 0; j < anomalyWindowSize; j++ {
			sum += records[i+j].Value
		}
		avg := sum / anomalyWindowSize

		next := records[i+anomalyWindowSize]
		if next.Value > anomalyMultiplier*avg {
			events = append(events, alert.New(patientID(next), "ECG Irregularity", next.TS))
		}
	}
	return events
}
