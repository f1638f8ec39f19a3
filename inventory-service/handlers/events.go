package handlers

import (
	"context"

	"github.com/draftea/order-saga/inventory-service/application"
	"github.com/draftea/order-saga/shared/events"
	"github.com/pkg/errors"
)

// InventoryEventHandlers answers the saga's collaborator requests
type InventoryEventHandlers struct {
	validateOrder *application.ValidateOrder
	allocateOrder *application.AllocateOrder
}

// NewInventoryEventHandlers creates new inventory event handlers
func NewInventoryEventHandlers(
	validateOrder *application.ValidateOrder,
	allocateOrder *application.AllocateOrder,
) *InventoryEventHandlers {
	return &InventoryEventHandlers{
		validateOrder: validateOrder,
		allocateOrder: allocateOrder,
	}
}

// Handle implements the events.EventHandler interface
func (h *InventoryEventHandlers) Handle(ctx context.Context, event *events.Event) error {
	switch event.EventType {
	case events.ValidateOrderRequestedEvent:
		return h.HandleValidationRequested(ctx, event)
	case events.AllocateOrderRequestedEvent:
		return h.HandleAllocationRequested(ctx, event)
	default:
		return nil
	}
}

// HandlerID returns the unique identifier for this event handler
func (h *InventoryEventHandlers) HandlerID() string {
	return "inventory-service-event-handler"
}

// HandleValidationRequested handles order.validation.requested
func (h *InventoryEventHandlers) HandleValidationRequested(ctx context.Context, event *events.Event) error {
	var request events.ValidateOrderRequest
	if err := event.UnmarshalPayload(&request); err != nil {
		return errors.Wrap(err, "failed to parse validation request")
	}

	return h.validateOrder.Execute(ctx, &request)
}

// HandleAllocationRequested handles order.allocation.requested
func (h *InventoryEventHandlers) HandleAllocationRequested(ctx context.Context, event *events.Event) error {
	var request events.AllocateOrderRequest
	if err := event.UnmarshalPayload(&request); err != nil {
		return errors.Wrap(err, "failed to parse allocation request")
	}

	return h.allocateOrder.Execute(ctx, &request)
}
