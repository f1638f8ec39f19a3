package infrastructure

import (
	"context"
	"sync"
	"time"

	"github.com/draftea/order-saga/shared/events"
	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

var _ events.Subscriber = (*KafkaEventSubscriber)(nil)

// KafkaReader is the subset of *kafka.Reader used by the subscriber
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEventSubscriber consumes a Kafka topic with a consumer group. A message
// is committed after its handler succeeds, or after maxAttempts failures, in
// which case it is logged as dead-lettered.
type KafkaEventSubscriber struct {
	reader      KafkaReader
	maxAttempts int
	backoff     time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewKafkaEventSubscriber creates a subscriber reading topic as groupID
func NewKafkaEventSubscriber(brokers []string, topic, groupID string) *KafkaEventSubscriber {
	return NewKafkaEventSubscriberWithReader(kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	}))
}

// NewKafkaEventSubscriberWithReader wraps an existing reader
func NewKafkaEventSubscriberWithReader(reader KafkaReader) *KafkaEventSubscriber {
	return &KafkaEventSubscriber{
		reader:      reader,
		maxAttempts: 5,
		backoff:     500 * time.Millisecond,
	}
}

// Subscribe starts the consume loop. eventType is a topic pattern; events
// that do not match it are committed without being handled.
func (s *KafkaEventSubscriber) Subscribe(ctx context.Context, eventType string, handler events.EventHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return errors.New("subscriber is already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	pattern := events.Topic(eventType)
	if pattern == "" {
		pattern = "#"
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.consume(ctx, pattern, handler)
	}()

	return nil
}

func (s *KafkaEventSubscriber) consume(ctx context.Context, pattern events.Topic, handler events.EventHandler) {
	zlog.Info().Str("pattern", pattern.String()).Msg("kafka subscriber started")

	for {
		msg, err := s.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				zlog.Info().Msg("kafka subscriber shutting down")
				return
			}
			zlog.Error().Err(err).Msg("failed to fetch kafka message")
			sleepWithContext(ctx, time.Second)
			continue
		}

		s.process(ctx, msg, pattern, handler)

		if err := s.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			zlog.Error().Err(err).Int64("offset", msg.Offset).Msg("failed to commit kafka message")
		}
	}
}

func (s *KafkaEventSubscriber) process(ctx context.Context, msg kafka.Message, pattern events.Topic, handler events.EventHandler) {
	event, err := events.FromJSON(msg.Value)
	if err != nil {
		zlog.Warn().Err(err).Int64("offset", msg.Offset).Msg("skipping malformed kafka message")
		return
	}

	for _, h := range msg.Headers {
		if _, exists := event.Metadata[h.Key]; !exists {
			event.Metadata.Set(h.Key, string(h.Value))
		}
	}

	if !event.Topic.Matches(pattern) {
		return
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err = handler.Handle(ctx, event)
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}

		zlog.Warn().Err(err).
			Str("event_id", event.ID.String()).
			Int("attempt", attempt).
			Msg("kafka handler failed")
		sleepWithContext(ctx, time.Duration(attempt)*s.backoff)
	}

	zlog.Error().Err(err).
		Str("event_id", event.ID.String()).
		Str("topic", event.Topic.String()).
		Str("order_id", event.AggregateID.String()).
		Msg("dead-lettering kafka message after retries")
}

// Close stops the consume loop and closes the reader
func (s *KafkaEventSubscriber) Close() error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		s.wg.Wait()
	}

	return s.reader.Close()
}
