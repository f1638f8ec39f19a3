package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/draftea/order-saga/shared/events"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestGetStatusClass(t *testing.T) {
	assert.Equal(t, "1xx", getStatusClass(101))
	assert.Equal(t, "2xx", getStatusClass(204))
	assert.Equal(t, "3xx", getStatusClass(302))
	assert.Equal(t, "4xx", getStatusClass(409))
	assert.Equal(t, "5xx", getStatusClass(503))
	assert.Equal(t, "unknown", getStatusClass(0))
}

func TestMiddleware_InjectsTelemetryAndCapturesStatus(t *testing.T) {
	tel := NewTelemetry(Config{ServiceName: "order-service-test"})

	var seen *Telemetry
	r := chi.NewRouter()
	r.Use(Middleware(tel))
	r.Get("/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/42", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "order-service-test", seen.ServiceName())
}

func TestFromContext_FallsBackWhenMissing(t *testing.T) {
	tel := FromContext(context.Background())
	require.NotNil(t, tel)
	assert.Equal(t, "unknown", tel.ServiceName())

	// Recording without an injected telemetry must not panic.
	RecordCounter(context.Background(), "test_total", "test counter", 1)
	RecordHistogram(context.Background(), "test_seconds", "test histogram", 0.5)
}

func TestInjectExtractEvent(t *testing.T) {
	previous := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(previous) })

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	event := events.NewEvent("order-1", events.ValidateOrderRequestedEvent, events.ValidateOrderRequest{OrderID: "order-1"})
	event.Metadata = nil
	InjectEvent(ctx, event)

	require.Contains(t, event.Metadata, "traceparent")

	extracted := trace.SpanContextFromContext(ExtractEvent(context.Background(), event))
	assert.Equal(t, traceID, extracted.TraceID())
	assert.Equal(t, spanID, extracted.SpanID())
}
