package application

import (
	"context"
	"time"

	"github.com/draftea/order-saga/order-service/domain"
	"github.com/draftea/order-saga/shared/models"
	"github.com/pkg/errors"
)

// CompletionWaiter blocks until an order reaches a stage. Commit signals from
// the StageNotifier resolve the wait immediately; polling the store every
// interval is the fallback for signals that never arrive.
type CompletionWaiter struct {
	orderRepository domain.OrderRepository
	notifier        StageNotifier
}

// NewCompletionWaiter creates a new CompletionWaiter
func NewCompletionWaiter(orderRepository domain.OrderRepository, notifier StageNotifier) *CompletionWaiter {
	return &CompletionWaiter{
		orderRepository: orderRepository,
		notifier:        notifier,
	}
}

// AwaitStage reports whether orderID reached expected within maxAttempts
// reads. Exhausting the budget returns false with a nil error; cancellation
// returns false with ctx.Err(). A missing order counts as not reached.
func (w *CompletionWaiter) AwaitStage(ctx context.Context, orderID models.ID, expected domain.Stage, maxAttempts int, interval time.Duration) (bool, error) {
	var signals <-chan domain.Stage
	if w.notifier != nil {
		ch, cancel := w.notifier.Subscribe(orderID)
		defer cancel()
		signals = ch
	}

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		order, err := w.orderRepository.FindByID(ctx, orderID)
		if err != nil {
			return false, errors.Wrap(err, "failed to read order while waiting")
		}
		if order != nil && order.Stage == expected {
			return true, nil
		}

		if attempt == maxAttempts {
			break
		}

		timer.Reset(interval)
		for waiting := true; waiting; {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case stage := <-signals:
				if stage == expected {
					return true, nil
				}
			case <-timer.C:
				waiting = false
			}
		}
	}

	return false, nil
}
