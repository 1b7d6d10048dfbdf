package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When invoking every package-level helper", func() {
			call := func() {
				RecordIngested()
				RecordMalformedLine()
				RecordEvaluation(12.5)
				RecordAlert("threshold")
				RecordEvaluatorPanic("trend")
				UpdatePatientsTracked(3)
				UpdateStoreRecords(120)
				RecordStoreQueryLatency(0.4)
				UpdateQueueSize(5)
				UpdateQueueCapacity(1000)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(8)
				RecordWorkerLatency(3.2)
				RecordWorkerError()
				RecordSinkPublish("log")
				RecordSinkError("kafka")
				RecordHTTPRequest("ingest", "POST", "202")
				RecordHTTPRequestDuration("ingest", "POST", "202", 1.1)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(42)
				RecordSystemGCPauseTime(0.7)
			}

			Convey("Then none of them panic", func() {
				So(call, ShouldNotPanic)
			})
		})
	})
}

func TestRegistryContainsDomainMetrics(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		// Touch a couple of vectors so they materialize.
		RecordAlert("threshold")
		RecordSinkPublish("log")

		Convey("When gathering metric families", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)

			names := map[string]bool{}
			for _, f := range families {
				names[f.GetName()] = true
			}

			Convey("Then the service metrics are registered", func() {
				So(names["vitalsentry_monitor_records_ingested_total"], ShouldBeTrue)
				So(names["vitalsentry_monitor_alerts_emitted_total"], ShouldBeTrue)
				So(names["vitalsentry_monitor_queue_size"], ShouldBeTrue)
				So(names["vitalsentry_monitor_sink_publish_total"], ShouldBeTrue)
				So(names["vitalsentry_monitor_system_goroutine_count"], ShouldBeTrue)
			})
		})
	})
}

func TestNewManagerWithOptions(t *testing.T) {
	Convey("Given a manager with custom options", t, func() {
		reg := prometheus.NewRegistry()
		m := NewManager(
			WithRegistry(reg),
			WithNamespace("testns"),
			WithSubsystem("unit"),
			WithHistogramBuckets([]float64{0.1, 1, 10}),
		)

		Convey("When gathering from its registry", func() {
			So(m, ShouldNotBeNil)
			families, err := reg.Gather()
			So(err, ShouldBeNil)

			Convey("Then every metric carries the configured namespace", func() {
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "testns_unit_"), ShouldBeTrue)
				}
			})
		})
	})
}
