package infrastructure

import (
	"context"

	"github.com/draftea/order-saga/order-service/application"
	"github.com/draftea/order-saga/order-service/domain"
	"github.com/draftea/order-saga/shared/events"
	"github.com/pkg/errors"
)

var _ application.CollaboratorGateway = (*EventCollaboratorGateway)(nil)

// EventCollaboratorGateway sends collaborator requests as events
type EventCollaboratorGateway struct {
	publisher events.Publisher
}

// NewEventCollaboratorGateway creates a new EventCollaboratorGateway
func NewEventCollaboratorGateway(publisher events.Publisher) *EventCollaboratorGateway {
	return &EventCollaboratorGateway{publisher: publisher}
}

// RequestValidation publishes an order.validation.requested event
func (g *EventCollaboratorGateway) RequestValidation(ctx context.Context, order *domain.Order) error {
	event := events.NewEvent(order.ID, events.ValidateOrderRequestedEvent, events.ValidateOrderRequest{
		OrderID: order.ID.String(),
		Order:   order.ToSnapshot(),
	}).WithCorrelationID(order.ID)

	if err := g.publisher.Publish(ctx, event); err != nil {
		return errors.Wrap(err, "failed to publish validation request")
	}
	return nil
}

// RequestAllocation publishes an order.allocation.requested event
func (g *EventCollaboratorGateway) RequestAllocation(ctx context.Context, order *domain.Order) error {
	event := events.NewEvent(order.ID, events.AllocateOrderRequestedEvent, events.AllocateOrderRequest{
		OrderID: order.ID.String(),
		Order:   order.ToSnapshot(),
	}).WithCorrelationID(order.ID)

	if err := g.publisher.Publish(ctx, event); err != nil {
		return errors.Wrap(err, "failed to publish allocation request")
	}
	return nil
}
