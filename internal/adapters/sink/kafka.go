package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/vitalsentry/vitalsentry/internal/domain/alert"
	"github.com/vitalsentry/vitalsentry/pkg/logger"
	"github.com/vitalsentry/vitalsentry/pkg/metrics"
)

// Default Kafka sink configuration constants.
const (
	defaultBatchTimeout = 100 * time.Millisecond
	defaultWriteTimeout = 10 * time.Second
	defaultMaxRetries   = 3
	defaultRetryBackoff = 250 * time.Millisecond
)

// kafkaAlert is the wire shape of an alert event on the topic.
type kafkaAlert struct {
	PatientID   string `json:"patientId"`
	Condition   string `json:"condition"`
	TimestampMS int64  `json:"timestampMs"`
	Triggered   bool   `json:"triggered"`
}

// KafkaSink publishes alerts to a Kafka topic, keyed by patient so one
// patient's alerts stay in order on a single partition.
type KafkaSink struct {
	writer       *kafka.Writer
	topic        string
	maxRetries   int
	retryBackoff time.Duration
	closed       atomic.Bool

	logger logger.Logger
}

var _ Sink = (*KafkaSink)(nil)

// NewKafkaSink creates a sink writing to topic on the given brokers.
func NewKafkaSink(brokers []string, topic string, opts ...KafkaOption) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}
	if topic == "" {
		return nil, errors.New("topic is required")
	}

	s := &KafkaSink{
		topic:        topic,
		maxRetries:   defaultMaxRetries,
		retryBackoff: defaultRetryBackoff,
		logger:       logger.Get().Named("kafka-sink"),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // partition by key
		BatchTimeout: defaultBatchTimeout,
		WriteTimeout: defaultWriteTimeout,
		RequiredAcks: kafka.RequireOne,
		Async:        false, // sync for reliability
	}

	return s, nil
}

// Publish implements Sink.Publish.
func (s *KafkaSink) Publish(ctx context.Context, events []alert.Event) error {
	if s.closed.Load() {
		return fmt.Errorf("%w: kafka", ErrClosed)
	}
	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		data, err := json.Marshal(kafkaAlert{
			PatientID:   e.PatientID,
			Condition:   e.Condition,
			TimestampMS: e.TS,
			Triggered:   e.Triggered,
		})
		if err != nil {
			// Alert events are plain values; marshal failure means a bug.
			metrics.RecordSinkError(s.Name())
			s.logger.Error(ctx, "failed to serialize alert", logger.Error(err))
			continue
		}

		messages = append(messages, kafka.Message{
			Key:   []byte(e.PatientID),
			Value: data,
			Time:  time.UnixMilli(e.TS),
		})
	}

	if len(messages) == 0 {
		return nil
	}

	if err := s.publishWithRetry(ctx, messages); err != nil {
		metrics.RecordSinkError(s.Name())
		return err
	}

	for range messages {
		metrics.RecordSinkPublish(s.Name())
	}
	return nil
}

// publishWithRetry writes messages with exponential backoff retry.
func (s *KafkaSink) publishWithRetry(ctx context.Context, messages []kafka.Message) error {
	var lastErr error
	backoff := s.retryBackoff

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			s.logger.Warn(ctx, "retrying kafka publish",
				logger.Int("attempt", attempt),
				logger.Int("batch_size", len(messages)),
			)

			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := s.writer.WriteMessages(ctx, messages...)
		if err == nil {
			return nil
		}

		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", s.maxRetries+1, lastErr)
}

// Name implements Sink.Name.
func (s *KafkaSink) Name() string { return "kafka" }

// Close implements Sink.Close.
func (s *KafkaSink) Close() error {
	if s.closed.Swap(true) {
		return nil // already closed
	}
	return s.writer.Close()
}
