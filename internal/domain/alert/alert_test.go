package alert_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vitalsentry/vitalsentry/internal/domain/alert"
)

func TestEventConstruction(t *testing.T) {
	Convey("Given a detected condition", t, func() {
		e := alert.New("42", "Saturation Critical Threshold Alert", 1_700_000_000_000)

		Convey("Then the event carries the triggering record's identity", func() {
			So(e.PatientID, ShouldEqual, "42")
			So(e.Condition, ShouldEqual, "Saturation Critical Threshold Alert")
			So(e.TS, ShouldEqual, 1_700_000_000_000)
			So(e.Triggered, ShouldBeTrue)
		})
	})
}

func TestEnrichment(t *testing.T) {
	Convey("Given a constructed alert event", t, func() {
		base := alert.New("7", "ECG Irregularity", 123456789)

		Convey("When appending a priority label", func() {
			enriched := base.WithPriority(alert.PriorityHigh)

			Convey("Then only the condition text changes", func() {
				So(enriched.Condition, ShouldEqual, "ECG Irregularity - Priority: HIGH")
				So(enriched.PatientID, ShouldEqual, base.PatientID)
				So(enriched.TS, ShouldEqual, base.TS)
			})

			Convey("And the original value is untouched", func() {
				So(base.Condition, ShouldEqual, "ECG Irregularity")
			})
		})

		Convey("When appending a repeat count", func() {
			enriched := base.WithRepeatCount(3)
			So(enriched.Condition, ShouldEqual, "ECG Irregularity (Repeated 3 times)")
			So(enriched.PatientID, ShouldEqual, base.PatientID)
			So(enriched.TS, ShouldEqual, base.TS)
		})

		Convey("When composing both enrichments", func() {
			enriched := base.WithPriority(alert.PriorityMedium).WithRepeatCount(2)

			Convey("Then both suffixes appear in application order", func() {
				So(enriched.Condition, ShouldEqual,
					"ECG Irregularity - Priority: MEDIUM (Repeated 2 times)")
				So(enriched.PatientID, ShouldEqual, base.PatientID)
				So(enriched.TS, ShouldEqual, base.TS)
			})
		})
	})
}
