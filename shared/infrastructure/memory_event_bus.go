package infrastructure

import (
	"context"
	"sync"

	"github.com/draftea/order-saga/shared/events"
	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

var (
	_ events.Publisher  = (*MemoryEventBus)(nil)
	_ events.Subscriber = (*MemoryEventBus)(nil)
)

// ErrBusClosed is returned when publishing on a closed bus
var ErrBusClosed = errors.New("event bus is closed")

type memorySubscription struct {
	pattern events.Topic
	handler events.EventHandler
}

// MemoryEventBus is an in-process publisher and subscriber. Every matching
// subscription receives its own copy of the event on a separate goroutine, so
// delivery is asynchronous and unordered like the real brokers.
type MemoryEventBus struct {
	mu            sync.RWMutex
	subscriptions []memorySubscription
	closed        bool
	inflight      sync.WaitGroup
	baseCtx       context.Context
	cancel        context.CancelFunc
}

// NewMemoryEventBus creates an empty bus
func NewMemoryEventBus() *MemoryEventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &MemoryEventBus{baseCtx: ctx, cancel: cancel}
}

// Subscribe registers handler for every topic matching eventType. An empty
// eventType receives everything.
func (b *MemoryEventBus) Subscribe(_ context.Context, eventType string, handler events.EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}

	pattern := events.Topic(eventType)
	if pattern == "" {
		pattern = "#"
	}

	b.subscriptions = append(b.subscriptions, memorySubscription{pattern: pattern, handler: handler})
	return nil
}

// Publish hands each event to the matching subscribers. Handlers run under the
// bus lifetime but keep the publisher's span and logger. Handler errors are
// logged; there is no redelivery.
func (b *MemoryEventBus) Publish(ctx context.Context, evts ...*events.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	deliveryCtx := trace.ContextWithSpanContext(b.baseCtx, trace.SpanContextFromContext(ctx))
	deliveryCtx = zlog.Ctx(ctx).WithContext(deliveryCtx)

	for _, event := range evts {
		for _, sub := range b.subscriptions {
			if !event.Topic.Matches(sub.pattern) {
				continue
			}

			delivered := event.Clone()
			handler := sub.handler

			b.inflight.Add(1)
			go func() {
				defer b.inflight.Done()
				if err := handler.Handle(deliveryCtx, delivered); err != nil {
					zlog.Warn().Err(err).
						Str("event_id", delivered.ID.String()).
						Str("topic", delivered.Topic.String()).
						Msg("memory bus handler failed")
				}
			}()
		}
	}

	return nil
}

// Drain blocks until all deliveries started so far have finished.
func (b *MemoryEventBus) Drain() {
	b.inflight.Wait()
}

// Close rejects further publishes, cancels handlers and waits for them.
func (b *MemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.inflight.Wait()
	return nil
}
