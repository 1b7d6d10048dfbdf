// Package alert defines the alert event value object and its enrichment
// transformations.
package alert

import "fmt"

// Priority labels appended by WithPriority.
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

// Event is a decided alert bound to a patient and a timestamp. It is a value
// object: the timestamp is always the timestamp of the triggering record,
// never evaluation wall-clock time, and the core identity fields are never
// rewritten after construction.
type Event struct {
	PatientID string
	Condition string
	TS        int64 // epoch milliseconds
	Triggered bool
}

// New constructs an alert event for a detected condition occurrence.
func New(patientID, condition string, ts int64) Event {
	return Event{
		PatientID: patientID,
		Condition: condition,
		TS:        ts,
		Triggered: true,
	}
}

// WithPriority returns a copy with a priority label appended to the
// condition text. PatientID and TS are untouched.
func (e Event) WithPriority(priority string) Event {
	e.Condition = fmt.Sprintf("%s - Priority: %s", e.Condition, priority)
	return e
}

// WithRepeatCount returns a copy with a repeat count appended to the
// condition text. PatientID and TS are untouched.
func (e Event) WithRepeatCount(count int) Event {
	e.Condition = fmt.Sprintf("%s (Repeated %d times)", e.Condition, count)
	return e
}
