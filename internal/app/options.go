package service

import (
	"time"

	repository "github.com/vitalsentry/vitalsentry/internal/adapters/repository"
	"github.com/vitalsentry/vitalsentry/internal/adapters/sink"
	"github.com/vitalsentry/vitalsentry/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of evaluation worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the evaluation queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithPendingSize sets the capacity of the pending-evaluation set.
func WithPendingSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pendingSize = size
		}
	}
}

// WithWindowMS sets the evaluation window in milliseconds.
func WithWindowMS(windowMS int64) Option {
	return func(s *Service) {
		if windowMS > 0 {
			s.windowMS = windowMS
		}
	}
}

// WithSweepInterval sets how often every patient is re-evaluated.
// A non-positive interval disables the sweep.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *Service) {
		s.sweepInterval = interval
	}
}

// WithStore sets a custom record store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSink sets the alert sink. Defaults to the log sink.
func WithSink(alertSink sink.Sink) Option {
	return func(s *Service) {
		if alertSink != nil {
			s.alertSink = alertSink
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
