package application

import (
	"context"
	"time"

	"github.com/draftea/order-saga/order-service/domain"
	"github.com/draftea/order-saga/shared/models"
	"github.com/draftea/order-saga/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// GetOrderHistoryQuery represents the query to list an order's stage changes
type GetOrderHistoryQuery struct {
	OrderID string `json:"order_id"`
}

// StageChangeResponse is one history entry
type StageChangeResponse struct {
	FromStage string `json:"from_stage"`
	ToStage   string `json:"to_stage"`
	Event     string `json:"event"`
	Version   int    `json:"version"`
	ChangedAt string `json:"changed_at"`
}

// OrderHistoryResponse lists stage changes oldest first
type OrderHistoryResponse struct {
	OrderID string                `json:"order_id"`
	Stage   string                `json:"stage"`
	Changes []StageChangeResponse `json:"changes"`
}

// GetOrderHistory use case
type GetOrderHistory struct {
	orderRepository domain.OrderRepository
}

// NewGetOrderHistory creates a new GetOrderHistory use case
func NewGetOrderHistory(orderRepository domain.OrderRepository) *GetOrderHistory {
	return &GetOrderHistory{orderRepository: orderRepository}
}

// Execute executes the get order history use case
func (uc *GetOrderHistory) Execute(ctx context.Context, query *GetOrderHistoryQuery) (*OrderHistoryResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "get_order_history",
		trace.WithAttributes(attribute.String("order_id", query.OrderID)),
	)
	defer span.End()

	orderID, err := models.NewID(query.OrderID)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrOrderNotFound, "invalid order ID %q", query.OrderID)
	}

	order, err := uc.orderRepository.FindByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return nil, &domain.PersistenceError{OrderID: orderID, Err: err}
	}
	if order == nil {
		return nil, errors.Wrapf(domain.ErrOrderNotFound, "order %s", orderID)
	}

	changes, err := uc.orderRepository.History(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return nil, &domain.PersistenceError{OrderID: orderID, Err: err}
	}

	response := &OrderHistoryResponse{
		OrderID: orderID.String(),
		Stage:   order.Stage.String(),
		Changes: make([]StageChangeResponse, 0, len(changes)),
	}
	for _, c := range changes {
		response.Changes = append(response.Changes, StageChangeResponse{
			FromStage: c.FromStage.String(),
			ToStage:   c.ToStage.String(),
			Event:     c.Event.String(),
			Version:   c.Version,
			ChangedAt: c.ChangedAt.Format(time.RFC3339Nano),
		})
	}

	return response, nil
}
