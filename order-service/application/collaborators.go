package application

import (
	"context"

	"github.com/draftea/order-saga/order-service/domain"
)

// CollaboratorGateway sends requests to the validation and allocation
// collaborators. Replies come back asynchronously as events.
type CollaboratorGateway interface {
	RequestValidation(ctx context.Context, order *domain.Order) error
	RequestAllocation(ctx context.Context, order *domain.Order) error
}
