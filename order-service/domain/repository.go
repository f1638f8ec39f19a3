package domain

import (
	"context"
	"time"

	"github.com/draftea/order-saga/shared/models"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	// FindByID returns nil, nil when the order does not exist.
	FindByID(ctx context.Context, id models.ID) (*Order, error)
	// UpdateStage stores order's stage, lines and version and appends change to
	// the history, atomically. It returns ErrStaleSnapshot when the stored
	// version is not expectedVersion.
	UpdateStage(ctx context.Context, order *Order, expectedVersion int, change StageChange) error
	FindStalled(ctx context.Context, stages []Stage, updatedBefore time.Time, limit int) ([]*Order, error)
	History(ctx context.Context, id models.ID) ([]StageChange, error)
}
