package queue_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vitalsentry/vitalsentry/internal/adapters/mq/queue"
)

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new in-memory queue", t, func() {
		Convey("When enqueuing within capacity", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(10))
			defer q.Close()

			ok := q.Enqueue(ctx, queue.Request{PatientID: 1})

			Convey("Then the request is accepted", func() {
				So(ok, ShouldBeTrue)
				So(q.Len(ctx), ShouldEqual, 1)
			})
		})

		Convey("When the queue is full", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(2), queue.WithBufferSize(2))
			defer q.Close()

			So(q.Enqueue(ctx, queue.Request{PatientID: 1}), ShouldBeTrue)
			So(q.Enqueue(ctx, queue.Request{PatientID: 2}), ShouldBeTrue)

			Convey("Then further enqueues are rejected without blocking", func() {
				So(q.Enqueue(ctx, queue.Request{PatientID: 3}), ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})
		})

		Convey("When dequeuing", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(10))

			q.Enqueue(ctx, queue.Request{PatientID: 1})
			q.Enqueue(ctx, queue.Request{PatientID: 2})

			ch := q.Dequeue(ctx)

			Convey("Then requests come out in FIFO order", func() {
				first := <-ch
				second := <-ch
				So(first.PatientID, ShouldEqual, 1)
				So(second.PatientID, ShouldEqual, 2)
			})

			Convey("Then closing the queue closes the channel after draining", func() {
				So(q.Close(), ShouldBeNil)

				var got []int
				for r := range ch {
					got = append(got, r.PatientID)
				}
				So(got, ShouldResemble, []int{1, 2})
			})
		})

		Convey("When the queue is closed", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(10))
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueues are rejected", func() {
				So(q.Enqueue(ctx, queue.Request{PatientID: 1}), ShouldBeFalse)
				So(q.IsClosed(), ShouldBeTrue)
			})

			Convey("Then closing again is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})

		Convey("When the dequeue context is cancelled and the queue closed", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(10))

			dequeueCtx, cancel := context.WithCancel(ctx)
			ch := q.Dequeue(dequeueCtx)

			q.Enqueue(ctx, queue.Request{PatientID: 1})
			cancel()
			So(q.Close(), ShouldBeNil)

			Convey("Then the consumer channel closes", func() {
				// The wrapper goroutine may deliver the in-flight request
				// before it observes cancellation; either way the channel
				// must close once the queue is drained.
				closed := false
				timeout := time.After(2 * time.Second)
				for !closed {
					select {
					case _, open := <-ch:
						if !open {
							closed = true
						}
					case <-timeout:
						closed = true
					}
				}
				So(q.IsClosed(), ShouldBeTrue)
			})
		})
	})
}
