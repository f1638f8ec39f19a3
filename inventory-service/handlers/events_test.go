package handlers

import (
	"context"
	"testing"

	"github.com/draftea/order-saga/inventory-service/application"
	"github.com/draftea/order-saga/shared/events"
	"github.com/draftea/order-saga/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	published []*events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...*events.Event) error {
	p.published = append(p.published, evts...)
	return nil
}

func newTestHandlers() (*InventoryEventHandlers, *recordingPublisher) {
	publisher := &recordingPublisher{}
	return NewInventoryEventHandlers(
		application.NewValidateOrder(publisher),
		application.NewAllocateOrder(publisher),
	), publisher
}

func snapshot(orderID models.ID, customerRef string) events.OrderSnapshot {
	return events.OrderSnapshot{
		OrderID:     orderID.String(),
		CustomerRef: customerRef,
		Lines: []events.OrderLineSnapshot{
			{LineID: models.GenerateUUID().String(), OrderedQty: 4},
		},
	}
}

func TestInventoryEventHandlers_Handle(t *testing.T) {
	orderID := models.GenerateUUID()

	tests := []struct {
		name      string
		event     *events.Event
		wantType  string
		wantReply bool
	}{
		{
			name: "validation request",
			event: events.NewEvent(orderID, events.ValidateOrderRequestedEvent, events.ValidateOrderRequest{
				OrderID: orderID.String(), Order: snapshot(orderID, "customer-1"),
			}),
			wantType:  events.ValidateOrderCompletedEvent,
			wantReply: true,
		},
		{
			name: "allocation request",
			event: events.NewEvent(orderID, events.AllocateOrderRequestedEvent, events.AllocateOrderRequest{
				OrderID: orderID.String(), Order: snapshot(orderID, "customer-1"),
			}),
			wantType:  events.AllocateOrderCompletedEvent,
			wantReply: true,
		},
		{
			name: "withheld allocation",
			event: events.NewEvent(orderID, events.AllocateOrderRequestedEvent, events.AllocateOrderRequest{
				OrderID: orderID.String(), Order: snapshot(orderID, "dont-allocate"),
			}),
		},
		{
			name:  "unrelated event",
			event: events.NewEvent(orderID, events.ValidateOrderCompletedEvent, events.ValidateOrderResult{OrderID: orderID.String()}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, publisher := newTestHandlers()

			require.NoError(t, h.Handle(context.Background(), tt.event))

			if !tt.wantReply {
				assert.Empty(t, publisher.published)
				return
			}
			require.Len(t, publisher.published, 1)
			assert.Equal(t, tt.wantType, publisher.published[0].EventType)
			assert.Equal(t, orderID, publisher.published[0].AggregateID)
		})
	}
}

func TestInventoryEventHandlers_UnparseablePayload(t *testing.T) {
	h, publisher := newTestHandlers()
	event := events.NewEvent(models.GenerateUUID(), events.ValidateOrderRequestedEvent, []byte("{not json"))

	err := h.Handle(context.Background(), event)

	assert.ErrorContains(t, err, "failed to parse validation request")
	assert.Empty(t, publisher.published)
}
