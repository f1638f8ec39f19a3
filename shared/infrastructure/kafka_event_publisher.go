package infrastructure

import (
	"context"

	"github.com/draftea/order-saga/shared/events"
	"github.com/draftea/order-saga/shared/telemetry"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
)

var _ events.Publisher = (*KafkaEventPublisher)(nil)

// KafkaWriter is the subset of *kafka.Writer used by the publisher
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEventPublisher publishes events to a Kafka topic. Messages are keyed by
// aggregate id so all messages of one order land on the same partition.
type KafkaEventPublisher struct {
	writer KafkaWriter
}

// NewKafkaEventPublisher creates a publisher writing to topic
func NewKafkaEventPublisher(brokers []string, topic string) *KafkaEventPublisher {
	return NewKafkaEventPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	})
}

// NewKafkaEventPublisherWithWriter wraps an existing writer
func NewKafkaEventPublisherWithWriter(writer KafkaWriter) *KafkaEventPublisher {
	return &KafkaEventPublisher{writer: writer}
}

// Publish implements events.Publisher
func (p *KafkaEventPublisher) Publish(ctx context.Context, evts ...*events.Event) error {
	if len(evts) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(evts))
	for _, event := range evts {
		telemetry.InjectEvent(ctx, event)

		body, err := event.ToJSON()
		if err != nil {
			return errors.Wrap(err, "failed to marshal event")
		}

		headers := []kafka.Header{{Key: "topic", Value: []byte(event.Topic.String())}}
		for k, v := range event.Metadata {
			headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
		}

		msgs = append(msgs, kafka.Message{
			Key:     []byte(event.AggregateID.String()),
			Value:   body,
			Headers: headers,
			Time:    event.Timestamp,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return errors.Wrap(err, "failed to write messages to kafka")
	}

	for _, event := range evts {
		telemetry.RecordCounter(ctx, "saga_messages_published_total", "Published saga messages", 1,
			attribute.String("topic", event.Topic.String()),
			attribute.String("status", "ok"),
		)
	}

	return nil
}

// Close flushes and closes the writer
func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}
