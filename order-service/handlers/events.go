package handlers

import (
	"context"

	"github.com/draftea/order-saga/order-service/application"
	"github.com/draftea/order-saga/order-service/domain"
	"github.com/draftea/order-saga/shared/events"
	"github.com/draftea/order-saga/shared/models"
	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
)

// OrderEventHandlers consumes collaborator replies
type OrderEventHandlers struct {
	manager *application.OrderSagaManager
}

// NewOrderEventHandlers creates new order event handlers
func NewOrderEventHandlers(manager *application.OrderSagaManager) *OrderEventHandlers {
	return &OrderEventHandlers{manager: manager}
}

// Handle implements the events.EventHandler interface
func (h *OrderEventHandlers) Handle(ctx context.Context, event *events.Event) error {
	switch event.EventType {
	case events.ValidateOrderCompletedEvent:
		return h.HandleValidationCompleted(ctx, event)
	case events.AllocateOrderCompletedEvent:
		return h.HandleAllocationCompleted(ctx, event)
	default:
		return nil
	}
}

// HandlerID returns the unique identifier for this event handler
func (h *OrderEventHandlers) HandlerID() string {
	return "order-service-event-handler"
}

// HandleValidationCompleted feeds a validation verdict into the saga
func (h *OrderEventHandlers) HandleValidationCompleted(ctx context.Context, event *events.Event) error {
	var data events.ValidateOrderResult
	if err := event.UnmarshalPayload(&data); err != nil {
		return errors.Wrap(err, "failed to parse validation result")
	}

	orderID, err := models.NewID(data.OrderID)
	if err != nil {
		zlog.Ctx(ctx).Error().Str("order_id", data.OrderID).Msg("discarding validation result with malformed order id")
		return nil
	}

	return h.settle(ctx, orderID, h.manager.ReceiveValidationResult(ctx, orderID, data.IsValid))
}

// HandleAllocationCompleted feeds an allocation outcome into the saga
func (h *OrderEventHandlers) HandleAllocationCompleted(ctx context.Context, event *events.Event) error {
	var data events.AllocateOrderResult
	if err := event.UnmarshalPayload(&data); err != nil {
		return errors.Wrap(err, "failed to parse allocation result")
	}

	orderID, err := models.NewID(data.OrderID)
	if err != nil {
		zlog.Ctx(ctx).Error().Str("order_id", data.OrderID).Msg("discarding allocation result with malformed order id")
		return nil
	}
	if !data.Outcome.Valid() {
		zlog.Ctx(ctx).Error().
			Str("order_id", data.OrderID).
			Str("outcome", string(data.Outcome)).
			Msg("discarding allocation result with unknown outcome")
		return nil
	}

	allocations := make([]domain.LineAllocation, 0, len(data.LineAllocations))
	for _, a := range data.LineAllocations {
		allocations = append(allocations, domain.LineAllocation{
			LineID:       models.ID(a.LineID),
			AllocatedQty: a.AllocatedQty,
		})
	}

	return h.settle(ctx, orderID, h.manager.ReceiveAllocationResult(ctx, orderID, data.Outcome, allocations))
}

// settle decides whether a failed reply is redelivered. Only storage failures
// are worth another attempt; everything else is acknowledged.
func (h *OrderEventHandlers) settle(ctx context.Context, orderID models.ID, err error) error {
	if err == nil {
		return nil
	}

	logger := zlog.Ctx(ctx).With().Str("order_id", orderID.String()).Logger()

	switch {
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrOrderNotFound):
		// late or duplicate reply
		logger.Warn().Err(err).Msg("discarding reply")
		return nil
	case errors.Is(err, domain.ErrSynchronizationTimeout), errors.Is(err, domain.ErrDispatchFailure):
		// the stage is committed; redrive picks the order up
		logger.Error().Err(err).Msg("reply applied but follow-up did not complete")
		return nil
	case errors.Is(err, domain.ErrInvalidOrder):
		// redelivery cannot fix the payload
		logger.Error().Err(err).Msg("discarding unusable reply")
		return nil
	default:
		return err
	}
}
