package infrastructure

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/draftea/order-saga/shared/events"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKafkaWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeKafkaWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeKafkaWriter) Close() error { return nil }

// fakeKafkaReader serves queued messages, then blocks until ctx is done.
type fakeKafkaReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	closed    bool
}

func (r *fakeKafkaReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()

	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeKafkaReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeKafkaReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeKafkaReader) committedOffsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func TestKafkaEventPublisher_KeysByAggregate(t *testing.T) {
	writer := &fakeKafkaWriter{}
	publisher := NewKafkaEventPublisherWithWriter(writer)

	event := events.NewEvent("order-7", events.ValidateOrderRequestedEvent, events.ValidateOrderRequest{OrderID: "order-7"})
	require.NoError(t, publisher.Publish(context.Background(), event))

	require.Len(t, writer.msgs, 1)
	msg := writer.msgs[0]
	assert.Equal(t, "order-7", string(msg.Key))
	assert.Equal(t, "topic", msg.Headers[0].Key)
	assert.Equal(t, events.ValidateOrderRequestedEvent, string(msg.Headers[0].Value))

	decoded, err := events.FromJSON(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, event.ID, decoded.ID)
}

func TestKafkaEventPublisher_WriteError(t *testing.T) {
	publisher := NewKafkaEventPublisherWithWriter(&fakeKafkaWriter{err: errors.New("leader not available")})

	err := publisher.Publish(context.Background(), events.NewEvent("order-1", events.ValidateOrderRequestedEvent, events.ValidateOrderRequest{}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write messages to kafka")
}

func kafkaMessageFor(t *testing.T, event *events.Event, offset int64) kafka.Message {
	t.Helper()
	body, err := event.ToJSON()
	require.NoError(t, err)
	return kafka.Message{Value: body, Offset: offset}
}

func TestKafkaEventSubscriber_CommitsAfterHandlingAndRetries(t *testing.T) {
	reader := &fakeKafkaReader{}
	reader.queue = []kafka.Message{
		kafkaMessageFor(t, events.NewEvent("order-1", events.ValidateOrderCompletedEvent, events.ValidateOrderResult{}), 1),
		kafkaMessageFor(t, events.NewEvent("order-2", events.AllocateOrderCompletedEvent, events.AllocateOrderResult{}), 2),
		kafkaMessageFor(t, events.NewEvent("order-3", events.ValidateOrderRequestedEvent, events.ValidateOrderRequest{}), 3),
		{Value: []byte("garbage"), Offset: 4},
	}

	subscriber := NewKafkaEventSubscriberWithReader(reader)
	subscriber.backoff = time.Millisecond

	var mu sync.Mutex
	attempts := map[string]int{}
	handler := funcHandler{fn: func(_ context.Context, event *events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		attempts[event.AggregateID.String()]++
		if event.AggregateID == "order-2" && attempts["order-2"] < 3 {
			return errors.New("transient")
		}
		return nil
	}}

	require.NoError(t, subscriber.Subscribe(context.Background(), events.OrderRepliesPattern, handler))

	assert.Eventually(t, func() bool {
		return len(reader.committedOffsets()) == 4
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, subscriber.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, attempts["order-1"])
	assert.Equal(t, 3, attempts["order-2"])
	assert.Zero(t, attempts["order-3"], "requests do not match the replies pattern")
	assert.Equal(t, []int64{1, 2, 3, 4}, reader.committedOffsets())
	assert.True(t, reader.closed)
}
