package saga

import (
	"context"

	"github.com/draftea/order-saga/shared/events"
	"github.com/draftea/order-saga/shared/telemetry"
	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// route binds a topic pattern to a handler
type route struct {
	pattern events.Topic
	handler events.EventHandler
}

// EventRouter dispatches consumed saga messages to the handlers whose topic
// pattern matches. It restores the producer's trace context before handing
// the event over.
type EventRouter struct {
	id     string
	tel    *telemetry.Telemetry
	routes []route
}

// NewEventRouter creates a new event router
func NewEventRouter(id string, tel *telemetry.Telemetry) *EventRouter {
	return &EventRouter{id: id, tel: tel}
}

// RegisterHandler registers a handler for every topic matching pattern.
// Not safe for use once the router is consuming.
func (r *EventRouter) RegisterHandler(pattern events.Topic, handler events.EventHandler) {
	r.routes = append(r.routes, route{pattern: pattern, handler: handler})
}

// HandlerID identifies the router to the subscribers
func (r *EventRouter) HandlerID() string {
	return r.id
}

// Handle implements events.EventHandler. A handler error is returned so the
// transport redelivers the message.
func (r *EventRouter) Handle(ctx context.Context, event *events.Event) error {
	if r.tel != nil {
		ctx = telemetry.WithTelemetry(ctx, r.tel)
	}
	ctx = telemetry.ExtractEvent(ctx, event)

	ctx, span := telemetry.StartSpan(ctx, "consume "+event.Topic.String(),
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.message.id", event.ID.String()),
			attribute.String("messaging.destination", event.Topic.String()),
			attribute.String("order_id", event.AggregateID.String()),
		),
	)
	defer span.End()

	logger := zlog.With().
		Str("event_id", event.ID.String()).
		Str("topic", event.Topic.String()).
		Str("order_id", event.AggregateID.String()).
		Str("trace_id", span.SpanContext().TraceID().String()).
		Logger()
	ctx = logger.WithContext(ctx)

	matched := false
	for _, rt := range r.routes {
		if !event.Topic.Matches(rt.pattern) {
			continue
		}
		matched = true

		if err := rt.handler.Handle(ctx, event); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			telemetry.RecordCounter(ctx, "saga_messages_total", "Consumed saga messages", 1,
				attribute.String("topic", event.Topic.String()),
				attribute.String("status", "error"),
			)
			return errors.Wrapf(err, "handler failed for %s", event.Topic)
		}
	}

	if !matched {
		logger.Debug().Msg("no handler registered for topic")
		return nil
	}

	telemetry.RecordCounter(ctx, "saga_messages_total", "Consumed saga messages", 1,
		attribute.String("topic", event.Topic.String()),
		attribute.String("status", "ok"),
	)
	return nil
}
