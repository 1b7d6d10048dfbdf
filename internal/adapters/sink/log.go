package sink

import (
	"context"

	"github.com/vitalsentry/vitalsentry/internal/domain/alert"
	"github.com/vitalsentry/vitalsentry/pkg/logger"
	"github.com/vitalsentry/vitalsentry/pkg/metrics"
)

// LogSink writes each alert as a structured log line. It is always
// configured, so every triggered alert is visible even when no external
// sink is wired.
type LogSink struct {
	logger logger.Logger
}

var _ Sink = (*LogSink)(nil)

// NewLogSink creates a sink that logs alerts through the global logger.
func NewLogSink() *LogSink {
	return &LogSink{
		logger: logger.Get().Named("alerts"),
	}
}

// Publish implements Sink.Publish.
func (s *LogSink) Publish(ctx context.Context, events []alert.Event) error {
	for _, e := range events {
		s.logger.Warn(ctx, "alert triggered",
			logger.String("patient_id", e.PatientID),
			logger.String("condition", e.Condition),
			logger.Int64("timestamp_ms", e.TS),
		)
		metrics.RecordSinkPublish(s.Name())
	}
	return nil
}

// Name implements Sink.Name.
func (s *LogSink) Name() string { return "log" }

// Close implements Sink.Close.
func (s *LogSink) Close() error { return nil }
