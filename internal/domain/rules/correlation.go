package rules

import (
	"github.com/vitalsentry/vitalsentry/internal/domain/alert"
	"github.com/vitalsentry/vitalsentry/internal/domain/model"
)

// Hypotension and hypoxemia cutoffs for the correlation rule.
const (
	hypotensiveSystolic = 90.0
	hypoxemicSaturation = 92.0
)

// HypotensiveHypoxemia detects low systolic pressure (<=90) and low
// saturation (<92.0) occurring close together. Each qualifying systolic
// record opens a validity interval [its TS, next systolic TS), unbounded
// above when no systolic reading follows, however distant. Every
// saturation record inside the interval with a value below 92.0 fires an
// alert at the saturation record's timestamp. No deduplication: the
// result is the cross product of hypotensive episodes and qualifying
// saturation readings.
func HypotensiveHypoxemia(systolic, saturation []model.Record) []alert.Event {
	if len(systolic) == 0 || len(saturation) == 0 {
		return nil
	}
	sys := sortedByTS(systolic)
	sat := sortedByTS(saturation)

	var events []alert.Event
	for i, s := range sys {
		if s.Value > hypotensiveSystolic {
			continue
		}

		hasNext := i+1 < len(sys)
		var next int64
		if hasNext {
			next = sys[i+1].TS
		}

		for _, o := range sat {
			if hasNext && o.TS >= next {
				break
			}
			if o.TS < s.TS {
				continue
			}
			if o.Value < hypoxemicSaturation {
				events = append(events, alert.New(
					patientID(o),
					"Hypotensive Hypoxemia Alert",
					o.TS,
				))
			}
		}
	}
	return events
}
