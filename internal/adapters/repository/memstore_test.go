package repository_test

import (
	"context"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vitalsentry/vitalsentry/internal/adapters/repository"
	"github.com/vitalsentry/vitalsentry/internal/domain/model"
)

func rec(patient int, signal model.SignalType, value float64, ts int64) model.Record {
	return model.Record{PatientID: patient, Signal: signal, Value: value, TS: ts}
}

func TestMemStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new MemStore", t, func() {
		s := repository.NewMemStore(ctx)
		defer s.Close()

		Convey("When no records have been appended", func() {
			Convey("Then counts and queries are empty", func() {
				So(s.Count(ctx), ShouldEqual, 0)
				So(s.Patients(ctx), ShouldBeEmpty)

				records, err := s.Records(ctx, 1, 0, 100)
				So(err, ShouldBeNil)
				So(records, ShouldBeEmpty)
			})
		})

		Convey("When appending records in timestamp order", func() {
			So(s.Append(ctx, rec(1, model.SignalHeartRate, 70, 100)), ShouldBeNil)
			So(s.Append(ctx, rec(1, model.SignalHeartRate, 72, 200)), ShouldBeNil)
			So(s.Append(ctx, rec(1, model.SignalHeartRate, 74, 300)), ShouldBeNil)

			Convey("Then a full-range query returns them in order", func() {
				records, err := s.Records(ctx, 1, 0, 1000)
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 3)
				So(records[0].TS, ShouldEqual, 100)
				So(records[2].TS, ShouldEqual, 300)
			})

			Convey("Then the range bounds are inclusive on both ends", func() {
				records, err := s.Records(ctx, 1, 100, 200)
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 2)

				records, err = s.Records(ctx, 1, 101, 199)
				So(err, ShouldBeNil)
				So(records, ShouldBeEmpty)
			})

			Convey("Then a point query matches a single timestamp", func() {
				records, err := s.Records(ctx, 1, 200, 200)
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 1)
				So(records[0].Value, ShouldEqual, 72)
			})
		})

		Convey("When appending records out of timestamp order", func() {
			So(s.Append(ctx, rec(1, model.SignalSaturation, 95, 300)), ShouldBeNil)
			So(s.Append(ctx, rec(1, model.SignalSaturation, 98, 100)), ShouldBeNil)
			So(s.Append(ctx, rec(1, model.SignalSaturation, 96, 200)), ShouldBeNil)

			Convey("Then queries still see a sorted history", func() {
				records, err := s.Records(ctx, 1, 0, 1000)
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 3)
				So(records[0].TS, ShouldEqual, 100)
				So(records[1].TS, ShouldEqual, 200)
				So(records[2].TS, ShouldEqual, 300)
			})
		})

		Convey("When two records share a timestamp", func() {
			So(s.Append(ctx, rec(1, model.SignalECG, 1.0, 500)), ShouldBeNil)
			So(s.Append(ctx, rec(1, model.SignalECG, 2.0, 500)), ShouldBeNil)

			Convey("Then arrival order is preserved", func() {
				records, err := s.Records(ctx, 1, 500, 500)
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 2)
				So(records[0].Value, ShouldEqual, 1.0)
				So(records[1].Value, ShouldEqual, 2.0)
			})
		})

		Convey("When multiple patients have records", func() {
			So(s.Append(ctx, rec(3, model.SignalHeartRate, 70, 100)), ShouldBeNil)
			So(s.Append(ctx, rec(1, model.SignalHeartRate, 71, 100)), ShouldBeNil)
			So(s.Append(ctx, rec(2, model.SignalHeartRate, 72, 100)), ShouldBeNil)

			Convey("Then histories are isolated per patient", func() {
				records, err := s.Records(ctx, 2, 0, 1000)
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 1)
				So(records[0].PatientID, ShouldEqual, 2)
			})

			Convey("Then Patients lists each ID once, sorted", func() {
				So(s.Patients(ctx), ShouldResemble, []int{1, 2, 3})
				So(s.Count(ctx), ShouldEqual, 3)
			})
		})

		Convey("When querying with an inverted range", func() {
			_, err := s.Records(ctx, 1, 500, 100)

			Convey("Then it returns ErrInvalidRange", func() {
				So(err, ShouldWrap, repository.ErrInvalidRange)
			})
		})

		Convey("When appending a record with an unknown signal", func() {
			err := s.Append(ctx, rec(1, model.SignalType("Pulse"), 70, 100))

			Convey("Then it returns ErrInvalidRecord", func() {
				So(err, ShouldWrap, repository.ErrInvalidRecord)
				So(s.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When a query result is mutated by the caller", func() {
			So(s.Append(ctx, rec(1, model.SignalHeartRate, 70, 100)), ShouldBeNil)

			records, err := s.Records(ctx, 1, 0, 1000)
			So(err, ShouldBeNil)
			records[0].Value = -1

			Convey("Then the stored history is unaffected", func() {
				again, err := s.Records(ctx, 1, 0, 1000)
				So(err, ShouldBeNil)
				So(again[0].Value, ShouldEqual, 70)
			})
		})

		Convey("When appending and reading concurrently", func() {
			var wg sync.WaitGroup
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					for i := 0; i < 200; i++ {
						_ = s.Append(ctx, rec(g, model.SignalHeartRate, float64(i), int64(i)))
						_, _ = s.Records(ctx, g, 0, int64(i))
					}
				}(g)
			}
			wg.Wait()

			Convey("Then every record lands exactly once", func() {
				So(s.Count(ctx), ShouldEqual, 8*200)
				records, err := s.Records(ctx, 0, 0, 1000)
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 200)
			})
		})
	})
}
