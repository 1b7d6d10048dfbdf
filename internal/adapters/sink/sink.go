// Package sink delivers alert events to their destinations.
//
// A sink is a terminal for triggered alerts. The service fans each batch
// out to every configured sink; one sink failing never blocks the others.
package sink

import (
	"context"

	"github.com/vitalsentry/vitalsentry/internal/domain/alert"
)

// Sink receives batches of alert events.
type Sink interface {
	// Publish delivers a batch of alert events. Implementations must be
	// safe for concurrent use.
	Publish(ctx context.Context, events []alert.Event) error

	// Name identifies the sink in logs and metrics.
	Name() string

	// Close releases any resources held by the sink.
	Close() error
}
