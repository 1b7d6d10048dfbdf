package rules_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vitalsentry/vitalsentry/internal/domain/model"
	"github.com/vitalsentry/vitalsentry/internal/domain/rules"
)

func TestECGAnomaly(t *testing.T) {
	Convey("Given ECG values [1.0, 1.0, 1.1, 0.9, 1.0, 2.0]", t, func() {
		records := recs(model.SignalECG, 1,
			[2]float64{1.0, 0}, [2]float64{1.0, 1}, [2]float64{1.1, 2},
			[2]float64{0.9, 3}, [2]float64{1.0, 4}, [2]float64{2.0, 5})

		Convey("When evaluating the anomaly rule", func() {
			events := rules.ECGAnomaly(records)

			Convey("Then the spike past 1.5x the window mean fires once", func() {
				So(events, ShouldHaveLength, 1)
				So(events[0].TS, ShouldEqual, 5)
				So(events[0].Condition, ShouldEqual, "ECG Irregularity")
			})
		})
	})

	Convey("Given a value at exactly the multiplier bound", t, func() {
		records := recs(model.SignalECG, 1,
			[2]float64{1.0, 0}, [2]float64{1.0, 1}, [2]float64{1.0, 2},
			[2]float64{1.0, 3}, [2]float64{1.0, 4}, [2]float64{1.5, 5})

		Convey("Then the strict comparison does not fire", func() {
			So(rules.ECGAnomaly(records), ShouldBeEmpty)
		})
	})

	Convey("Given a long series with two spikes", t, func() {
		records := recs(model.SignalECG, 1,
			[2]float64{1.0, 0}, [2]float64{1.0, 1}, [2]float64{1.0, 2},
			[2]float64{1.0, 3}, [2]float64{1.0, 4}, [2]float64{2.0, 5},
			[2]float64{1.0, 6}, [2]float64{1.0, 7}, [2]float64{1.0, 8},
			[2]float64{1.0, 9}, [2]float64{3.0, 10})
		events := rules.ECGAnomaly(records)

		Convey("Then the window slides one record at a time and catches both", func() {
			// Windows ending before the first spike see mean 1.0. The spike
			// itself then inflates later window means, so the second spike
			// must clear a higher bar.
			So(events, ShouldHaveLength, 2)
			So(events[0].TS, ShouldEqual, 5)
			So(events[1].TS, ShouldEqual, 10)
		})
	})

	Convey("Given exactly five records", t, func() {
		records := recs(model.SignalECG, 1,
			[2]float64{1.0, 0}, [2]float64{1.0, 1}, [2]float64{1.0, 2},
			[2]float64{1.0, 3}, [2]float64{9.0, 4})

		Convey("Then there is no record after the window and nothing fires", func() {
			So(rules.ECGAnomaly(records), ShouldBeEmpty)
		})
	})

	Convey("Given a window with a zero mean", t, func() {
		records := recs(model.SignalECG, 1,
			[2]float64{0, 0}, [2]float64{0, 1}, [2]float64{0, 2},
			[2]float64{0, 3}, [2]float64{0, 4}, [2]float64{0.0001, 5})

		Convey("Then any positive value exceeds the zero bound", func() {
			events := rules.ECGAnomaly(records)
			So(events, ShouldHaveLength, 1)
			So(events[0].TS, ShouldEqual, 5)
		})
	})

	Convey("Given a window with a negative mean", t, func() {
		records := recs(model.SignalECG, 1,
			[2]float64{-1, 0}, [2]float64{-1, 1}, [2]float64{-1, 2},
			[2]float64{-1, 3}, [2]float64{-1, 4}, [2]float64{-1.2, 5})

		Convey("Then the literal arithmetic applies and the smaller magnitude fires", func() {
			// Mean -1.0 gives a bound of -1.5, so -1.2 counts as anomalous.
			events := rules.ECGAnomaly(records)
			So(events, ShouldHaveLength, 1)
			So(events[0].TS, ShouldEqual, 5)
		})
	})

	Convey("Given empty input", t, func() {
		So(rules.ECGAnomaly(nil), ShouldBeEmpty)
	})
}
