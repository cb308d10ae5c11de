package worker_test

import (
	"context"
	"errors"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aircode610/MouseTron/pkg/eventstream"
	testutils "github.com/aircode610/MouseTron/pkg/utils/test"
	"github.com/aircode610/MouseTron/pkg/worker"
)

// blockingPublisher holds every Publish until release is closed.
type blockingPublisher struct {
	release chan struct{}
	count   atomic.Int32
}

func (p *blockingPublisher) Publish(_ context.Context, _ *eventstream.ExecutionRecordedEvent) error {
	<-p.release
	p.count.Add(1)
	return nil
}

func (p *blockingPublisher) Close() error { return nil }

func newEvent(id int64) *eventstream.ExecutionRecordedEvent {
	return eventstream.NewExecutionRecordedEvent(id, []string{"a", "b"}, nil)
}

var _ = Describe("Worker Pool", func() {
	It("requires a publisher", func() {
		_, err := worker.NewPool(&worker.Config{})
		Expect(err).To(MatchError(worker.ErrNilPublisher))
	})

	It("publishes every queued event before Close returns", func() {
		pub := testutils.NewRecordingPublisher()
		wp, err := worker.NewPool(&worker.Config{Publisher: pub})
		Expect(err).NotTo(HaveOccurred())

		for i := range 10 {
			Expect(wp.Enqueue(worker.Job{Event: newEvent(int64(i + 1))})).To(BeTrue())
		}
		Expect(wp.Close()).To(Succeed())

		Expect(pub.Events()).To(HaveLen(10))
	})

	It("refuses jobs without an event", func() {
		wp, err := worker.NewPool(&worker.Config{Publisher: testutils.NewRecordingPublisher()})
		Expect(err).NotTo(HaveOccurred())
		Expect(wp.Enqueue(worker.Job{})).To(BeFalse())
		Expect(wp.Close()).To(Succeed())
	})

	It("drops jobs when the queue is full", func() {
		pub := &blockingPublisher{release: make(chan struct{})}
		var drops atomic.Int32
		wp, err := worker.NewPool(&worker.Config{
			Publisher:  pub,
			NumWorkers: 1,
			QueueSize:  1,
			OnDrop:     func() { drops.Add(1) },
		})
		Expect(err).NotTo(HaveOccurred())

		// One job can be held by the worker and one by the queue; the rest drop.
		accepted := 0
		for i := range 10 {
			if wp.Enqueue(worker.Job{Event: newEvent(int64(i))}) {
				accepted++
			}
		}
		Expect(accepted).To(BeNumerically("<=", 2))
		Expect(int(drops.Load())).To(Equal(10 - accepted))

		close(pub.release)
		Expect(wp.Close()).To(Succeed())
		Expect(int(pub.count.Load())).To(Equal(accepted))
	})

	It("logs and continues when publishing fails", func() {
		pub := testutils.NewRecordingPublisher()
		pub.Err = errors.New("broker down")
		wp, err := worker.NewPool(&worker.Config{Publisher: pub})
		Expect(err).NotTo(HaveOccurred())

		Expect(wp.Enqueue(worker.Job{Event: newEvent(1)})).To(BeTrue())
		Expect(wp.Close()).To(Succeed())
		Expect(pub.Events()).To(BeEmpty())
	})

	It("is safe to close twice", func() {
		wp, err := worker.NewPool(&worker.Config{Publisher: testutils.NewRecordingPublisher()})
		Expect(err).NotTo(HaveOccurred())
		Expect(wp.Close()).To(Succeed())
		Expect(wp.Close()).To(Succeed())
	})
})
