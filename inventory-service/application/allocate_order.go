package application

import (
	"context"

	"github.com/draftea/order-saga/inventory-service/domain"
	"github.com/draftea/order-saga/shared/events"
	"github.com/draftea/order-saga/shared/models"
	"github.com/draftea/order-saga/shared/telemetry"
	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AllocateOrder answers allocation requests
type AllocateOrder struct {
	publisher events.Publisher
}

// NewAllocateOrder creates a new AllocateOrder use case
func NewAllocateOrder(publisher events.Publisher) *AllocateOrder {
	return &AllocateOrder{publisher: publisher}
}

// Execute plans the allocation for the request and publishes the reply
func (uc *AllocateOrder) Execute(ctx context.Context, request *events.AllocateOrderRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "allocate_order",
		trace.WithAttributes(
			attribute.String("order_id", request.OrderID),
			attribute.String("customer_ref", request.Order.CustomerRef),
		),
	)
	defer span.End()

	plan := domain.Allocate(request.Order)

	outcome := "no_reply"
	if plan.Reply {
		outcome = string(plan.Outcome)
	}
	telemetry.RecordCounter(ctx, "inventory_requests_total", "Collaborator requests answered", 1,
		attribute.String("kind", "allocation"),
		attribute.String("outcome", outcome),
	)

	logger := zlog.Ctx(ctx).With().Str("order_id", request.OrderID).Logger()
	if !plan.Reply {
		logger.Info().Msg("withholding allocation reply")
		return nil
	}

	orderID := models.ID(request.OrderID)
	reply := events.NewEvent(orderID, events.AllocateOrderCompletedEvent, events.AllocateOrderResult{
		OrderID:         request.OrderID,
		LineAllocations: plan.Allocations,
		Outcome:         plan.Outcome,
	}).WithCorrelationID(orderID)

	if err := uc.publisher.Publish(ctx, reply); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to publish allocation result")
	}

	logger.Info().Str("outcome", string(plan.Outcome)).Msg("order allocated")
	return nil
}
