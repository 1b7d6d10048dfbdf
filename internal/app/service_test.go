package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	service "github.com/vitalsentry/vitalsentry/internal/app"
	"github.com/vitalsentry/vitalsentry/internal/domain/alert"
	"github.com/vitalsentry/vitalsentry/internal/domain/model"
	"github.com/vitalsentry/vitalsentry/pkg/logger"
)

// captureSink collects alerts published by the service.
type captureSink struct {
	mu     sync.Mutex
	events []alert.Event
}

func (c *captureSink) Publish(ctx context.Context, events []alert.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, events...)
	return nil
}

func (c *captureSink) Name() string { return "capture" }
func (c *captureSink) Close() error { return nil }

func (c *captureSink) snapshot() []alert.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]alert.Event, len(c.events))
	copy(out, c.events)
	return out
}

func (c *captureSink) waitFor(n int) bool {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if len(c.snapshot()) >= n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return len(c.snapshot()) >= n
}

func newStartedService(t *testing.T, sink *captureSink) (*service.Service, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	svc := service.New(
		service.WithWorkerCount(2),
		service.WithQueueSize(100),
		service.WithSweepInterval(0),
		service.WithSink(sink),
	)
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	return svc, cancel
}

func TestServiceLifecycle(t *testing.T) {
	_ = logger.Init()

	Convey("Given a monitoring service", t, func() {
		sink := &captureSink{}
		svc, cancel := newStartedService(t, sink)
		defer cancel()

		Convey("When started twice", func() {
			So(svc.Start(context.Background()), ShouldBeNil)

			Convey("Then the second start is a no-op", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
			})
		})

		Convey("When stopped", func() {
			svc.Stop()

			Convey("Then stats report it stopped and a second stop is safe", func() {
				So(svc.GetStats()["started"], ShouldBeFalse)
				svc.Stop()
			})
		})
	})
}

func TestServiceIngestAndEvaluate(t *testing.T) {
	_ = logger.Init()
	ctx := context.Background()

	Convey("Given a running service", t, func() {
		sink := &captureSink{}
		svc, cancel := newStartedService(t, sink)
		defer cancel()
		defer svc.Stop()

		now := time.Now().UnixMilli()

		Convey("When a critical diastolic reading arrives", func() {
			err := svc.Ingest(ctx, model.Record{
				PatientID: 1, Signal: model.SignalDiastolic, Value: 130, TS: now,
			})

			Convey("Then a threshold alert reaches the sink", func() {
				So(err, ShouldBeNil)
				So(sink.waitFor(1), ShouldBeTrue)

				events := sink.snapshot()
				So(events[0].PatientID, ShouldEqual, "1")
				So(events[0].Condition, ShouldEqual, "DiastolicPressure Critical Threshold Alert - Priority: HIGH")
				So(events[0].TS, ShouldEqual, now)
				So(events[0].Triggered, ShouldBeTrue)
			})
		})

		Convey("When a normal reading arrives", func() {
			err := svc.Ingest(ctx, model.Record{
				PatientID: 2, Signal: model.SignalHeartRate, Value: 75, TS: now,
			})

			Convey("Then no alert is published", func() {
				So(err, ShouldBeNil)
				time.Sleep(100 * time.Millisecond)
				So(sink.snapshot(), ShouldBeEmpty)
			})
		})

		Convey("When low systolic pressure and low saturation coincide", func() {
			So(svc.Ingest(ctx, model.Record{
				PatientID: 3, Signal: model.SignalSystolic, Value: 85, TS: now - 2000,
			}), ShouldBeNil)
			So(svc.Ingest(ctx, model.Record{
				PatientID: 3, Signal: model.SignalSaturation, Value: 91, TS: now,
			}), ShouldBeNil)

			Convey("Then threshold and correlation alerts both fire", func() {
				So(sink.waitFor(3), ShouldBeTrue)

				conditions := map[string]bool{}
				for _, e := range sink.snapshot() {
					conditions[e.Condition] = true
				}
				So(conditions["SystolicPressure Critical Threshold Alert - Priority: HIGH"], ShouldBeTrue)
				So(conditions["Saturation Critical Threshold Alert - Priority: HIGH"], ShouldBeTrue)
				So(conditions["Hypotensive Hypoxemia Alert - Priority: HIGH"], ShouldBeTrue)
			})
		})

		Convey("When a record with an invalid signal is ingested", func() {
			err := svc.Ingest(ctx, model.Record{
				PatientID: 4, Signal: model.SignalType("Pulse"), Value: 70, TS: now,
			})

			Convey("Then the record is rejected", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestServiceEvaluateDirect(t *testing.T) {
	_ = logger.Init()
	ctx := context.Background()

	Convey("Given a service with stored readings", t, func() {
		sink := &captureSink{}
		svc, cancel := newStartedService(t, sink)
		defer cancel()
		defer svc.Stop()

		now := time.Now().UnixMilli()
		readings := []float64{1.0, 1.0, 1.1, 0.9, 1.0, 2.0}
		for i, v := range readings {
			So(svc.Ingest(ctx, model.Record{
				PatientID: 9, Signal: model.SignalECG, Value: v, TS: now - int64(len(readings)-i)*1000,
			}), ShouldBeNil)
		}

		Convey("When evaluating the patient directly", func() {
			events, err := svc.Evaluate(ctx, 9)

			Convey("Then the ECG anomaly fires", func() {
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, 1)
				So(events[0].Condition, ShouldEqual, "ECG Irregularity - Priority: MEDIUM")
			})

			Convey("Then re-evaluating the same window is idempotent", func() {
				again, err := svc.Evaluate(ctx, 9)
				So(err, ShouldBeNil)
				So(again, ShouldResemble, events)
			})
		})

		Convey("When evaluating a patient with no records", func() {
			events, err := svc.Evaluate(ctx, 404)

			Convey("Then nothing fires and no error occurs", func() {
				So(err, ShouldBeNil)
				So(events, ShouldBeEmpty)
			})
		})
	})
}

func TestServiceStatsAndRecords(t *testing.T) {
	_ = logger.Init()
	ctx := context.Background()

	Convey("Given a running service with data", t, func() {
		sink := &captureSink{}
		svc, cancel := newStartedService(t, sink)
		defer cancel()
		defer svc.Stop()

		now := time.Now().UnixMilli()
		So(svc.Ingest(ctx, model.Record{
			PatientID: 1, Signal: model.SignalHeartRate, Value: 70, TS: now,
		}), ShouldBeNil)

		Convey("When reading records through the service", func() {
			records, err := svc.Records(ctx, 1, now-1000, now+1000)

			Convey("Then the stored window comes back", func() {
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 1)
				So(records[0].Value, ShouldEqual, 70)
			})
		})

		Convey("When fetching stats", func() {
			stats := svc.GetStats()

			Convey("Then counters reflect the stored data", func() {
				So(stats["started"], ShouldBeTrue)
				So(stats["totalRecords"], ShouldEqual, 1)
				So(stats["totalPatients"], ShouldEqual, 1)
			})
		})
	})
}
