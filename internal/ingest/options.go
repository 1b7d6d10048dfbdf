// Package ingest turns external vital-sign feeds into records.
package ingest

import "time"

// ReaderOption applies a configuration option to either reader kind.
type ReaderOption interface {
	applyWS(*WSReader)
	applyTCP(*TCPReader)
}

type reconnectDelayOption time.Duration

func (o reconnectDelayOption) applyWS(r *WSReader) {
	if o > 0 {
		r.reconnectDelay = time.Duration(o)
	}
}

func (o reconnectDelayOption) applyTCP(r *TCPReader) {
	if o > 0 {
		r.reconnectDelay = time.Duration(o)
	}
}

// WithReconnectDelay sets the initial delay between reconnect attempts.
// The delay doubles after each failed attempt, capped at thirty seconds.
func WithReconnectDelay(d time.Duration) ReaderOption {
	return reconnectDelayOption(d)
}
