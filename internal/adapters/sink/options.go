// Package sink delivers alert events to their destinations.
package sink

import "time"

// KafkaOption applies a configuration option to the KafkaSink.
type KafkaOption func(*KafkaSink)

// WithMaxRetries sets how many times a failed publish is retried.
func WithMaxRetries(n int) KafkaOption {
	return func(s *KafkaSink) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithRetryBackoff sets the initial backoff between publish retries.
// The backoff doubles on each attempt.
func WithRetryBackoff(d time.Duration) KafkaOption {
	return func(s *KafkaSink) {
		if d > 0 {
			s.retryBackoff = d
		}
	}
}
