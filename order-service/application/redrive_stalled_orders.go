package application

import (
	"context"
	"time"

	"github.com/draftea/order-saga/order-service/domain"
	"github.com/draftea/order-saga/shared/telemetry"
	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

var redriveStages = []domain.Stage{
	domain.StageValidationPending,
	domain.StageValidated,
	domain.StageAllocationPending,
}

// RedriveStalledOrdersCommand selects the orders to re-drive
type RedriveStalledOrdersCommand struct {
	StaleAfter time.Duration
	BatchSize  int
}

// RedriveStalledOrdersResponse summarizes one sweep
type RedriveStalledOrdersResponse struct {
	Found    int `json:"found"`
	Redriven int `json:"redriven"`
	Failed   int `json:"failed"`
}

// RedriveStalledOrders resumes orders whose collaborator request or reply was
// lost. Pending orders get their request sent again; orders left at VALIDATED
// get ALLOCATE_ORDER fired. Duplicate replies are rejected by the stage
// machine, so re-sending is safe.
type RedriveStalledOrders struct {
	orderRepository domain.OrderRepository
	manager         *OrderSagaManager
}

// NewRedriveStalledOrders creates a new RedriveStalledOrders use case
func NewRedriveStalledOrders(orderRepository domain.OrderRepository, manager *OrderSagaManager) *RedriveStalledOrders {
	return &RedriveStalledOrders{
		orderRepository: orderRepository,
		manager:         manager,
	}
}

// Execute executes one redrive sweep
func (uc *RedriveStalledOrders) Execute(ctx context.Context, cmd *RedriveStalledOrdersCommand) (*RedriveStalledOrdersResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "redrive_stalled_orders")
	defer span.End()

	if cmd.BatchSize <= 0 {
		return nil, errors.New("batch size must be positive")
	}

	stalled, err := uc.orderRepository.FindStalled(ctx, redriveStages, time.Now().UTC().Add(-cmd.StaleAfter), cmd.BatchSize)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to list stalled orders")
	}

	response := &RedriveStalledOrdersResponse{Found: len(stalled)}
	for _, order := range stalled {
		err := uc.manager.redrive(ctx, order.ID, order.Stage)
		status := "ok"
		switch {
		case err == nil:
			response.Redriven++
		case errors.Is(err, domain.ErrInvalidTransition):
			// a reply won the race
			status = "skipped"
		default:
			status = "error"
			response.Failed++
			zlog.Ctx(ctx).Warn().Err(err).
				Str("order_id", order.ID.String()).
				Str("stage", order.Stage.String()).
				Msg("failed to redrive order")
		}

		telemetry.RecordCounter(ctx, "order_saga_redrives_total", "Stalled orders re-driven", 1,
			attribute.String("stage", order.Stage.String()),
			attribute.String("status", status),
		)
	}

	if response.Found > 0 {
		zlog.Ctx(ctx).Info().
			Int("found", response.Found).
			Int("redriven", response.Redriven).
			Int("failed", response.Failed).
			Msg("redrive sweep finished")
	}

	return response, nil
}
