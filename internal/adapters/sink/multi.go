package sink

import (
	"context"
	"errors"

	"github.com/vitalsentry/vitalsentry/internal/domain/alert"
	"github.com/vitalsentry/vitalsentry/pkg/logger"
)

// Multi fans a batch out to every configured sink. A failing sink is
// logged and does not stop delivery to the others.
type Multi struct {
	sinks  []Sink
	logger logger.Logger
}

var _ Sink = (*Multi)(nil)

// NewMulti creates a fan-out sink over the given sinks.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{
		sinks:  sinks,
		logger: logger.Get().Named("sink"),
	}
}

// Publish implements Sink.Publish. It delivers to every sink and joins
// the individual errors.
func (m *Multi) Publish(ctx context.Context, events []alert.Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Publish(ctx, events); err != nil {
			m.logger.Error(ctx, "sink publish failed",
				logger.String("sink", s.Name()),
				logger.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Name implements Sink.Name.
func (m *Multi) Name() string { return "multi" }

// Close implements Sink.Close. Every sink is closed even when earlier
// ones fail.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
