package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/aircode610/MouseTron/pkg/eventstream"
	"github.com/aircode610/MouseTron/pkg/eventstream/kafka"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafkago.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

var _ = Describe("Publisher", func() {
	var (
		writer    *fakeWriter
		publisher *kafka.Publisher
	)

	BeforeEach(func() {
		writer = &fakeWriter{}
		publisher = kafka.NewPublisherWithWriter(writer, kafka.Config{Topic: "executions"})
	})

	It("requires brokers and a topic", func() {
		_, err := kafka.NewPublisher(kafka.Config{Topic: "t"})
		Expect(err).To(MatchError(kafka.ErrNoBrokers))

		_, err = kafka.NewPublisher(kafka.Config{Brokers: []string{"localhost:9092"}})
		Expect(err).To(MatchError(kafka.ErrNoTopic))
	})

	It("rejects nil events", func() {
		Expect(publisher.Publish(context.Background(), nil)).To(MatchError(eventstream.ErrNilEvent))
		Expect(writer.messages).To(BeEmpty())
	})

	It("writes a JSON message keyed by event id", func() {
		event := eventstream.NewExecutionRecordedEvent(4, []string{"search", "fetch"}, nil)
		Expect(publisher.Publish(context.Background(), event)).To(Succeed())

		Expect(writer.messages).To(HaveLen(1))
		msg := writer.messages[0]
		Expect(string(msg.Key)).To(Equal(event.EventID))

		var decoded eventstream.ExecutionRecordedEvent
		Expect(json.Unmarshal(msg.Value, &decoded)).To(Succeed())
		Expect(decoded.Execution.ID).To(Equal(int64(4)))
		Expect(decoded.Execution.Tools).To(Equal([]string{"search", "fetch"}))
	})

	It("wraps writer errors", func() {
		boom := errors.New("broker down")
		writer.err = boom

		err := publisher.Publish(context.Background(), eventstream.NewExecutionRecordedEvent(1, []string{"a"}, nil))
		Expect(err).To(MatchError(boom))
		Expect(err.Error()).To(ContainSubstring("executions"))
	})

	It("closes the writer", func() {
		Expect(publisher.Close()).To(Succeed())
		Expect(writer.closed).To(BeTrue())
	})
})
