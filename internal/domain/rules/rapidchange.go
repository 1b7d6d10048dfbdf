package rules

import (
	"github.com/vitalsentry/vitalsentry/internal/domain/alert"
	"github.com/vitalsentry/vitalsentry/internal/domain/model"
)

// rapidDropPoints is the saturation drop that constitutes a rapid change.
const rapidDropPoints = 5.0

// RapidDrop detects any saturation drop of more than 5 percentage points
// within a trailing 10-minute window. The scan is deliberately pairwise
// rather than adjacent-only: a slow decline across many small steps that
// exceeds 5 points within 10 minutes anywhere in the window must fire.
//
// The input is sorted by timestamp first; the inner loop's early break on
// the time gap is only correct on ordered input, and ingestion order is
// not guaranteed upstream. Overlapping windows produce multiple alerts
// and are not deduplicated.
func RapidDrop(records []model.Record) []alert.Event {
	if len(records) == 0 {
		return nil
	}
	ordered := sortedByTS(records)

	var events []alert.Event
	for i := 0; i < len(ordered); i++ {
		for j := i; j < len(ordered); j++ {
			if ordered[j].TS-ordered[i].TS > tenMinutesMS {
				break
			}
			// Self-pairs (j == i) are scanned but can never fire: diff is 0.
			if ordered[j].Value-ordered[i].Value < -rapidDropPoints {
				events = append(events, alert.New(
					patientID(ordered[j]),
					"Rapid Drop of Blood Saturation",
					ordered[j].TS,
				))
			}
		}
	}
	return events
}
