package application

import (
	"context"
	"strconv"

	"github.com/draftea/order-saga/inventory-service/domain"
	"github.com/draftea/order-saga/shared/events"
	"github.com/draftea/order-saga/shared/models"
	"github.com/draftea/order-saga/shared/telemetry"
	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ValidateOrder answers validation requests
type ValidateOrder struct {
	publisher events.Publisher
}

// NewValidateOrder creates a new ValidateOrder use case
func NewValidateOrder(publisher events.Publisher) *ValidateOrder {
	return &ValidateOrder{publisher: publisher}
}

// Execute decides the verdict for the request and publishes the reply
func (uc *ValidateOrder) Execute(ctx context.Context, request *events.ValidateOrderRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "validate_order",
		trace.WithAttributes(
			attribute.String("order_id", request.OrderID),
			attribute.String("customer_ref", request.Order.CustomerRef),
		),
	)
	defer span.End()

	verdict := domain.Validate(request.Order)

	outcome := "no_reply"
	if verdict.Reply {
		outcome = strconv.FormatBool(verdict.IsValid)
	}
	telemetry.RecordCounter(ctx, "inventory_requests_total", "Collaborator requests answered", 1,
		attribute.String("kind", "validation"),
		attribute.String("outcome", outcome),
	)

	logger := zlog.Ctx(ctx).With().Str("order_id", request.OrderID).Logger()
	if !verdict.Reply {
		logger.Info().Msg("withholding validation reply")
		return nil
	}

	orderID := models.ID(request.OrderID)
	reply := events.NewEvent(orderID, events.ValidateOrderCompletedEvent, events.ValidateOrderResult{
		OrderID: request.OrderID,
		IsValid: verdict.IsValid,
	}).WithCorrelationID(orderID)

	if err := uc.publisher.Publish(ctx, reply); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to publish validation result")
	}

	logger.Info().Bool("is_valid", verdict.IsValid).Msg("order validated")
	return nil
}
