package rules

import (
	"fmt"

	"github.com/vitalsentry/vitalsentry/internal/domain/alert"
	"github.com/vitalsentry/vitalsentry/internal/domain/model"
)

// trendDelta is the minimum per-step move that counts toward a run.
const trendDelta = 10.0

// Trend detects two consecutive large moves in the same direction in a
// blood-pressure partition. A run of same-direction deltas with magnitude
// >= 10 fires once its length reaches 2, at the record closing the run,
// and keeps re-firing at every later index while the run persists. The
// repeat firing is deliberate: a still-climbing pressure stays alarming.
//
// Requires at least 3 records (two deltas); fewer produce nothing.
func Trend(signal model.SignalType, records []model.Record) []alert.Event {
	if len(records) < 3 {
		return nil
	}

	var events []alert.Event
	run := 0
	increasing := false
	decreasing := false

	for i := 1; i < len(records); i++ {
		delta := records[i].Value - records[i-1].Value

		switch {
		case delta >= trendDelta:
			if increasing {
				run++
			} else {
				increasing = true
				decreasing = false
				run = 1
			}
		case delta <= -trendDelta:
			if decreasing {
				run++
			} else {
				decreasing = true
				increasing = false
				run = 1
			}
		default:
			run = 0
			increasing = false
			decreasing = false
		}

		if run >= 2 {
			direction := "decrease"
			if increasing {
				direction = "increase"
			}
			condition := fmt.Sprintf("%s Trend Alert %s", signal, direction)
			events = append(events, alert.New(patientID(records[i]), condition, records[i].TS))
		}
	}
	return events
}
