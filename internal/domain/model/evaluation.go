package model

// Evaluation asks the orchestrator to re-evaluate one patient's window.
// QueuedAt is the enqueue time in Unix milliseconds, used to measure
// queue dwell time.
type Evaluation struct {
	PatientID int
	QueuedAt  int64
}
