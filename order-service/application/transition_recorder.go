package application

import (
	"context"

	"github.com/draftea/order-saga/order-service/domain"
	"github.com/pkg/errors"
)

// TransitionRecorder is the single path through which stage changes are
// persisted and become visible
type TransitionRecorder struct {
	orderRepository domain.OrderRepository
	notifier        StageNotifier
}

// NewTransitionRecorder creates a new TransitionRecorder
func NewTransitionRecorder(orderRepository domain.OrderRepository, notifier StageNotifier) *TransitionRecorder {
	return &TransitionRecorder{
		orderRepository: orderRepository,
		notifier:        notifier,
	}
}

// Commit persists transition for order. Allocations are applied in the same
// write when the transition carries ActionApplyAllocation. order is only
// updated after the store accepted the write; on error it is left as it was.
func (r *TransitionRecorder) Commit(ctx context.Context, order *domain.Order, transition domain.Transition, allocations ...domain.LineAllocation) error {
	next := order.Clone()

	linesChanged := false
	if transition.Action == domain.ActionApplyAllocation {
		changed, err := next.ApplyAllocations(allocations)
		if err != nil {
			return errors.Wrap(err, "failed to apply allocations")
		}
		linesChanged = changed
	}

	if order.Stage == transition.To && !linesChanged {
		return nil
	}

	expectedVersion := order.Version.Value
	next.Stage = transition.To
	next.Version = next.Version.Update()
	next.Timestamps = next.Timestamps.Update()

	change := domain.StageChange{
		OrderID:   order.ID,
		FromStage: order.Stage,
		ToStage:   transition.To,
		Event:     transition.Event,
		Version:   next.Version.Value,
		ChangedAt: next.Timestamps.UpdatedAt,
	}

	if err := r.orderRepository.UpdateStage(ctx, next, expectedVersion, change); err != nil {
		if errors.Is(err, domain.ErrStaleSnapshot) {
			return err
		}
		return &domain.PersistenceError{OrderID: order.ID, Err: err}
	}

	*order = *next

	if r.notifier != nil {
		r.notifier.Notify(ctx, order.ID, order.Stage)
	}

	return nil
}
