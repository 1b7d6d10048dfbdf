// Package service provides the core monitoring service that wires
// ingestion, storage, evaluation and alert delivery together.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	evalqueue "github.com/vitalsentry/vitalsentry/internal/adapters/mq/queue"
	workerpool "github.com/vitalsentry/vitalsentry/internal/adapters/mq/worker"
	repository "github.com/vitalsentry/vitalsentry/internal/adapters/repository"
	"github.com/vitalsentry/vitalsentry/internal/adapters/sink"
	"github.com/vitalsentry/vitalsentry/internal/domain/alert"
	"github.com/vitalsentry/vitalsentry/internal/domain/model"
	"github.com/vitalsentry/vitalsentry/internal/domain/pending"
	"github.com/vitalsentry/vitalsentry/internal/domain/rules"
	"github.com/vitalsentry/vitalsentry/pkg/logger"
	"github.com/vitalsentry/vitalsentry/pkg/metrics"
)

// Service implements the API dependencies for the monitoring system.
//
// Records flow in through Ingest, land in the store, and schedule an
// asynchronous evaluation of the patient's window. Evaluations are
// coalesced per patient and serialized per patient, so concurrent
// feeds never run two rule passes over the same history at once.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	pendingSet pending.Set
	evalQueue  evalqueue.Queue
	workerPool *workerpool.Pool
	alertSink  sink.Sink

	// Per-patient evaluation locks
	locksMu sync.Mutex
	locks   map[int]*sync.Mutex

	// Configuration
	workerCount   int
	queueSize     int
	pendingSize   int
	windowMS      int64
	sweepInterval time.Duration

	// State
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU() * 4,
		queueSize:     100000,
		pendingSize:   50000,
		windowMS:      rules.WindowMS,
		sweepInterval: 30 * time.Second,
		locks:         make(map[int]*sync.Mutex),
		stopCh:        make(chan struct{}),
		logger:        nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting monitoring service...")

	if s.store == nil {
		s.store = repository.NewMemStore(ctx)
	}
	s.pendingSet = pending.NewInMemorySet(
		pending.WithMaxSize(s.pendingSize),
	)
	s.evalQueue = evalqueue.NewInMemoryQueue(
		evalqueue.WithCapacity(s.queueSize),
		evalqueue.WithBufferSize(s.queueSize),
	)
	if s.alertSink == nil {
		s.alertSink = sink.NewLogSink()
	}

	s.workerPool = workerpool.NewPool(s.workerCount, s.evalQueue, s, s.alertSink)
	s.workerPool.Start(ctx)

	s.startSweeper(ctx)

	s.started = true
	s.logger.Info(ctx, "monitoring service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int64("window_ms", s.windowMS),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping monitoring service...")

	// Signal the sweeper to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}
	s.wg.Wait()

	// Shutdown closes the queue, which drains the workers
	if s.workerPool != nil {
		_ = s.workerPool.Shutdown(context.Background())
	}

	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	if s.alertSink != nil {
		_ = s.alertSink.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "monitoring service stopped")
}

// Ingest stores one record and schedules an evaluation of the patient.
func (s *Service) Ingest(ctx context.Context, rec model.Record) error {
	if err := s.store.Append(ctx, rec); err != nil {
		return err
	}
	metrics.RecordIngested()

	s.scheduleEvaluation(ctx, rec.PatientID)
	return nil
}

// scheduleEvaluation enqueues an evaluation request unless one is
// already pending for the patient.
func (s *Service) scheduleEvaluation(ctx context.Context, patientID int) {
	if s.pendingSet.MarkAndRecord(ctx, patientID) {
		return // already pending
	}

	ok := s.evalQueue.Enqueue(ctx, evalqueue.Request{
		PatientID: patientID,
		QueuedAt:  time.Now().UnixMilli(),
	})
	if !ok {
		// Backpressure: release the mark so the sweep or a later record
		// can retry.
		s.pendingSet.Unmark(ctx, patientID)
		s.logger.Warn(ctx, "evaluation queue full, request dropped",
			logger.Int("patient_id", patientID),
		)
	}
}

// Evaluate runs every rule family over the patient's current window
// and returns the triggered alerts. It implements worker.Evaluator.
func (s *Service) Evaluate(ctx context.Context, patientID int) ([]alert.Event, error) {
	// Clear the pending mark before reading, so records arriving during
	// this pass schedule a fresh evaluation that will see them.
	s.pendingSet.Unmark(ctx, patientID)

	lock := s.patientLock(patientID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	defer func() {
		metrics.RecordEvaluation(float64(time.Since(start).Milliseconds()))
	}()

	now := time.Now().UnixMilli()
	window, err := s.store.Records(ctx, patientID, now-s.windowMS, now)
	if err != nil {
		return nil, err
	}
	if len(window) == 0 {
		return nil, nil
	}

	bySignal := model.PartitionBySignal(window)
	systolic := bySignal[model.SignalSystolic]
	diastolic := bySignal[model.SignalDiastolic]
	saturation := bySignal[model.SignalSaturation]

	var events []alert.Event

	events = append(events, s.runFamily(ctx, rules.FamilyThreshold, func() []alert.Event {
		var out []alert.Event
		for _, sig := range model.Signals() {
			out = append(out, rules.Threshold(sig, bySignal[sig])...)
		}
		return out
	})...)

	events = append(events, s.runFamily(ctx, rules.FamilyTrend, func() []alert.Event {
		out := rules.Trend(model.SignalSystolic, systolic)
		return append(out, rules.Trend(model.SignalDiastolic, diastolic)...)
	})...)

	events = append(events, s.runFamily(ctx, rules.FamilyRapidChange, func() []alert.Event {
		return rules.RapidDrop(saturation)
	})...)

	events = append(events, s.runFamily(ctx, rules.FamilyCorrelation, func() []alert.Event {
		return rules.HypotensiveHypoxemia(systolic, saturation)
	})...)

	events = append(events, s.runFamily(ctx, rules.FamilyAnomaly, func() []alert.Event {
		return rules.ECGAnomaly(bySignal[model.SignalECG])
	})...)

	return events, nil
}

// familyPriority maps each rule family to the priority label its alerts
// are enriched with before publishing.
var familyPriority = map[rules.Family]string{
	rules.FamilyThreshold:   alert.PriorityHigh,
	rules.FamilyTrend:       alert.PriorityMedium,
	rules.FamilyRapidChange: alert.PriorityHigh,
	rules.FamilyCorrelation: alert.PriorityHigh,
	rules.FamilyAnomaly:     alert.PriorityMedium,
}

// runFamily executes one rule family with panic isolation. A panicking
// family loses its own alerts for this pass; the others still run.
// Surviving alerts are enriched with the family's priority label.
func (s *Service) runFamily(ctx context.Context, family rules.Family, fn func() []alert.Event) (events []alert.Event) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordEvaluatorPanic(string(family))
			s.logger.Error(ctx, "rule evaluator panicked",
				logger.String("rule", string(family)),
				logger.Any("panic", r),
			)
			events = nil
		}
	}()

	events = fn()
	priority := familyPriority[family]
	for i, e := range events {
		events[i] = e.WithPriority(priority)
		metrics.RecordAlert(string(family))
	}
	return events
}

// patientLock returns the evaluation lock for a patient, creating it on
// first use. Locks are never removed; the population of patients is
// small and stable.
func (s *Service) patientLock(patientID int) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[patientID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[patientID] = l
	}
	return l
}

// startSweeper periodically schedules an evaluation for every known
// patient, covering requests lost to backpressure and rules whose
// windows age out between records.
func (s *Service) startSweeper(ctx context.Context) {
	if s.sweepInterval <= 0 {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				for _, id := range s.store.Patients(ctx) {
					s.scheduleEvaluation(ctx, id)
				}
			}
		}
	}()
}

// Records exposes a patient's stored window for the HTTP API.
func (s *Service) Records(ctx context.Context, patientID int, fromMS, toMS int64) ([]model.Record, error) {
	return s.store.Records(ctx, patientID, fromMS, toMS)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"windowMs":    s.windowMS,
	}

	if s.started {
		stats["queueLength"] = s.evalQueue.Len(ctx)
		stats["totalRecords"] = s.store.Count(ctx)
		stats["totalPatients"] = len(s.store.Patients(ctx))
		stats["pendingEvaluations"] = s.pendingSet.Size()
	}

	return stats
}
