package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vitalsentry/vitalsentry/internal/domain/model"
	"github.com/vitalsentry/vitalsentry/pkg/metrics"
)

// fieldCount is the number of comma-separated fields in a wire line.
const fieldCount = 4

// ParseLine parses one CSV line into a record.
//
// Splitting is capped at four parts so a stray comma in the value field
// shows up as a parse failure instead of silently shifting fields.
func ParseLine(line string) (model.Record, error) {
	parts := strings.SplitN(line, ",", fieldCount)
	if len(parts) != fieldCount {
		return model.Record{}, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedLine, fieldCount, len(parts))
	}

	patientID, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return model.Record{}, fmt.Errorf("%w: patient id: %v", ErrMalformedLine, err)
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return model.Record{}, fmt.Errorf("%w: timestamp: %v", ErrMalformedLine, err)
	}

	signal := model.SignalType(strings.TrimSpace(parts[2]))
	if !signal.IsValid() {
		return model.Record{}, fmt.Errorf("%w: unknown signal %q", ErrMalformedLine, parts[2])
	}

	// Saturation values arrive with a trailing percent sign.
	raw := strings.ReplaceAll(strings.TrimSpace(parts[3]), "%", "")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return model.Record{}, fmt.Errorf("%w: value: %v", ErrMalformedLine, err)
	}

	return model.Record{
		PatientID: patientID,
		Signal:    signal,
		Value:     value,
		TS:        ts,
	}, nil
}

// ParseBatch parses a multi-line payload. Malformed lines are counted
// and dropped; blank lines are skipped without counting.
func ParseBatch(payload string) []model.Record {
	lines := strings.Split(payload, "\n")
	records := make([]model.Record, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		rec, err := ParseLine(line)
		if err != nil {
			metrics.RecordMalformedLine()
			continue
		}
		records = append(records, rec)
	}

	return records
}
