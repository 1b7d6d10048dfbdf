// Package repository defines the vital-record store interface and errors.
package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vitalsentry/vitalsentry/internal/domain/model"
	"github.com/vitalsentry/vitalsentry/pkg/metrics"
)

// MemStore is an in-memory Store implementation.
//
// Each patient's history is a slice kept sorted by timestamp. Appends
// binary-search the insertion point, so in-order arrival is an O(1)
// tail append and out-of-order arrival costs one shift. Reads copy the
// requested range under a read lock, so evaluators never observe a
// history mid-append.
type MemStore struct {
	mu        sync.RWMutex
	byPatient map[int][]model.Record
	total     int

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
}

var _ Store = (*MemStore)(nil)

// NewMemStore constructs an in-memory store with configuration options.
func NewMemStore(ctx context.Context, opts ...Option) *MemStore {
	s := &MemStore{
		metricsUpdateInterval: 5 * time.Second,
		byPatient:             make(map[int][]model.Record),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startMetricsUpdater(ctx)

	return s
}

// Append implements Store.Append.
func (s *MemStore) Append(ctx context.Context, rec model.Record) error {
	if !rec.Signal.IsValid() {
		return fmt.Errorf("%w: signal %q", ErrInvalidRecord, rec.Signal)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.byPatient[rec.PatientID]

	// Insertion point: first index whose timestamp is strictly greater,
	// so equal timestamps preserve arrival order.
	i := sort.Search(len(history), func(i int) bool {
		return history[i].TS > rec.TS
	})

	history = append(history, model.Record{})
	copy(history[i+1:], history[i:])
	history[i] = rec

	s.byPatient[rec.PatientID] = history
	s.total++

	return nil
}

// Records implements Store.Records.
func (s *MemStore) Records(ctx context.Context, patientID int, fromMS, toMS int64) ([]model.Record, error) {
	if fromMS > toMS {
		return nil, fmt.Errorf("%w: from %d after to %d", ErrInvalidRange, fromMS, toMS)
	}

	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.byPatient[patientID]
	if len(history) == 0 {
		return []model.Record{}, nil
	}

	lo := sort.Search(len(history), func(i int) bool {
		return history[i].TS >= fromMS
	})
	hi := sort.Search(len(history), func(i int) bool {
		return history[i].TS > toMS
	})

	out := make([]model.Record, hi-lo)
	copy(out, history[lo:hi])
	return out, nil
}

// Patients implements Store.Patients.
func (s *MemStore) Patients(ctx context.Context) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int, 0, len(s.byPatient))
	for id := range s.byPatient {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Count implements Store.Count.
func (s *MemStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Close gracefully shuts down the background metrics goroutine.
func (s *MemStore) Close() error {
	select {
	case <-s.stopChan:
		// Channel already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

func (s *MemStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *MemStore) updateMetrics() {
	s.mu.RLock()
	total := s.total
	patients := len(s.byPatient)
	s.mu.RUnlock()

	metrics.UpdateStoreRecords(total)
	metrics.UpdatePatientsTracked(patients)
}
