package telemetry

import (
	"context"

	"github.com/draftea/order-saga/shared/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// InjectEvent writes the active trace context into the event metadata.
func InjectEvent(ctx context.Context, event *events.Event) {
	if event.Metadata == nil {
		event.Metadata = make(events.Metadata)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(event.Metadata))
}

// ExtractEvent returns a context carrying the trace context found in the
// event metadata, so consumer spans join the producer's trace.
func ExtractEvent(ctx context.Context, event *events.Event) context.Context {
	if len(event.Metadata) == 0 {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(event.Metadata))
}
