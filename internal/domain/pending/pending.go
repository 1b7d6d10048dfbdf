// Package pending tracks patients with an evaluation request in flight.
package pending

import (
	"context"
	"sync"
	"sync/atomic"
)

// Set coalesces evaluation requests so each patient has at most one
// queued at a time.
type Set interface {
	// MarkAndRecord atomically checks whether patientID already has a
	// pending evaluation and marks it if not. Returns true if the patient
	// was already pending, false if it was newly marked. This is the ONLY
	// method for coalescing - thread-safe and atomic.
	MarkAndRecord(ctx context.Context, patientID int) bool

	// Unmark clears the pending flag for a patient. Call it when the
	// evaluation starts (so later records queue a fresh one) or when the
	// queued request could not be delivered.
	Unmark(ctx context.Context, patientID int)

	Size() int64
}

// inMemorySet implements Set with a plain map guarded by a mutex.
// For bounded mode (maxSize > 0): new marks are refused once the set is
// full, which reports the patient as pending and sheds the request.
// For unbounded mode (maxSize <= 0): no limit.
type inMemorySet struct {
	mu      sync.Mutex
	marked  map[int]struct{}
	maxSize int
	size    atomic.Int64
}

// NewInMemorySet creates a new in-memory pending set with configuration options.
func NewInMemorySet(opts ...Option) Set {
	s := &inMemorySet{
		maxSize: 50000, // default max size
	}

	for _, opt := range opts {
		opt(s)
	}

	s.marked = make(map[int]struct{})

	return s
}

// MarkAndRecord atomically checks whether patientID is pending and
// marks it if not. Returns true if it was already pending.
func (s *inMemorySet) MarkAndRecord(ctx context.Context, patientID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.marked[patientID]; exists {
		return true // Already pending
	}

	// A full bounded set refuses new marks; the caller treats the patient
	// as pending and the record still lands in the store, so the next
	// evaluation covers it.
	if s.maxSize > 0 && len(s.marked) >= s.maxSize {
		return true
	}

	s.marked[patientID] = struct{}{}
	s.size.Add(1)
	return false // Newly marked
}

// Unmark clears the pending flag for a patient.
func (s *inMemorySet) Unmark(ctx context.Context, patientID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.marked[patientID]; exists {
		delete(s.marked, patientID)
		s.size.Add(-1)
	}
}

// Size returns the current number of pending patients.
func (s *inMemorySet) Size() int64 {
	return s.size.Load()
}
