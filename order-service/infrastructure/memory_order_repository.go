package infrastructure

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/draftea/order-saga/order-service/domain"
	"github.com/draftea/order-saga/shared/models"
	"github.com/pkg/errors"
)

var _ domain.OrderRepository = (*MemoryOrderRepository)(nil)

// MemoryOrderRepository keeps orders in process memory. Orders are copied on
// the way in and out so callers never share a snapshot with the store.
type MemoryOrderRepository struct {
	mu      sync.RWMutex
	orders  map[models.ID]*domain.Order
	history map[models.ID][]domain.StageChange
}

// NewMemoryOrderRepository creates an empty repository
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders:  map[models.ID]*domain.Order{},
		history: map[models.ID][]domain.StageChange{},
	}
}

// Create stores a new order
func (r *MemoryOrderRepository) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return errors.Errorf("order %s already exists", order.ID)
	}

	r.orders[order.ID] = order.Clone()
	return nil
}

// FindByID returns a copy of the stored order
func (r *MemoryOrderRepository) FindByID(_ context.Context, id models.ID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return order.Clone(), nil
}

// UpdateStage swaps the stored snapshot when the version matches
func (r *MemoryOrderRepository) UpdateStage(_ context.Context, order *domain.Order, expectedVersion int, change domain.StageChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.orders[order.ID]
	if !ok {
		return errors.Wrapf(domain.ErrOrderNotFound, "order %s", order.ID)
	}
	if current.Version.Value != expectedVersion {
		return domain.ErrStaleSnapshot
	}

	r.orders[order.ID] = order.Clone()
	r.history[order.ID] = append(r.history[order.ID], change)
	return nil
}

// FindStalled lists orders in stages last updated before updatedBefore,
// oldest first
func (r *MemoryOrderRepository) FindStalled(_ context.Context, stages []domain.Stage, updatedBefore time.Time, limit int) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[domain.Stage]bool, len(stages))
	for _, s := range stages {
		wanted[s] = true
	}

	var stalled []*domain.Order
	for _, order := range r.orders {
		if wanted[order.Stage] && order.Timestamps.UpdatedAt.Before(updatedBefore) {
			stalled = append(stalled, order.Clone())
		}
	}

	sort.Slice(stalled, func(i, j int) bool {
		return stalled[i].Timestamps.UpdatedAt.Before(stalled[j].Timestamps.UpdatedAt)
	})

	if limit > 0 && len(stalled) > limit {
		stalled = stalled[:limit]
	}
	return stalled, nil
}

// History returns the stage changes of an order oldest first
func (r *MemoryOrderRepository) History(_ context.Context, id models.ID) ([]domain.StageChange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]domain.StageChange(nil), r.history[id]...), nil
}
