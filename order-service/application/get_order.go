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

// GetOrderQuery represents the query to get an order
type GetOrderQuery struct {
	OrderID string `json:"order_id"`
}

// OrderLineResponse is the API form of an order line
type OrderLineResponse struct {
	LineID       string `json:"line_id"`
	OrderedQty   int    `json:"ordered_qty"`
	AllocatedQty int    `json:"allocated_qty"`
}

// OrderResponse represents the response for getting an order
type OrderResponse struct {
	OrderID     string              `json:"order_id"`
	CustomerRef string              `json:"customer_ref"`
	Stage       string              `json:"stage"`
	Lines       []OrderLineResponse `json:"lines"`
	Version     int                 `json:"version"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
}

// NewOrderResponse converts an order to its API form
func NewOrderResponse(order *domain.Order) *OrderResponse {
	lines := make([]OrderLineResponse, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, OrderLineResponse{
			LineID:       l.ID.String(),
			OrderedQty:   l.OrderedQty,
			AllocatedQty: l.AllocatedQty,
		})
	}

	return &OrderResponse{
		OrderID:     order.ID.String(),
		CustomerRef: order.CustomerRef,
		Stage:       order.Stage.String(),
		Lines:       lines,
		Version:     order.Version.Value,
		CreatedAt:   order.Timestamps.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   order.Timestamps.UpdatedAt.Format(time.RFC3339),
	}
}

// GetOrder use case
type GetOrder struct {
	orderRepository domain.OrderRepository
}

// NewGetOrder creates a new GetOrder use case
func NewGetOrder(orderRepository domain.OrderRepository) *GetOrder {
	return &GetOrder{orderRepository: orderRepository}
}

// Execute executes the get order use case
func (uc *GetOrder) Execute(ctx context.Context, query *GetOrderQuery) (*OrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "get_order",
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

	span.SetAttributes(attribute.String("stage", order.Stage.String()))

	return NewOrderResponse(order), nil
}
