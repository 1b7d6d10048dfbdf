// Package pending tracks patients with an evaluation request in flight.
package pending

// Option applies a configuration option to the inMemorySet.
type Option func(*inMemorySet)

// WithMaxSize sets the maximum number of patients the set will mark.
// If maxSize > 0: bounded mode, new marks are refused once full.
// If maxSize <= 0: unbounded mode (no limit).
func WithMaxSize(maxSize int) Option {
	return func(s *inMemorySet) {
		s.maxSize = maxSize
	}
}
