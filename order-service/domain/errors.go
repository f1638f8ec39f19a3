package domain

import (
	"fmt"

	"github.com/draftea/order-saga/shared/models"
	"github.com/pkg/errors"
)

var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrPersistenceFailure     = errors.New("persistence failure")
	ErrSynchronizationTimeout = errors.New("synchronization timeout")
	ErrStaleSnapshot          = errors.New("stale order snapshot")
	ErrDispatchFailure        = errors.New("collaborator dispatch failure")
	ErrInvalidOrder           = errors.New("invalid order")
)

// InvalidTransitionError reports an event that is not defined for the
// order's current stage. The stage is left unchanged.
type InvalidTransitionError struct {
	OrderID models.ID
	Stage   Stage
	Event   SagaEvent
}

func (e *InvalidTransitionError) Error() string {
	if e.OrderID.IsZero() {
		return fmt.Sprintf("invalid transition: event %s not allowed from stage %s", e.Event, e.Stage)
	}
	return fmt.Sprintf("invalid transition for order %s: event %s not allowed from stage %s", e.OrderID, e.Event, e.Stage)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// PersistenceError wraps a storage failure during a commit
type PersistenceError struct {
	OrderID models.ID
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist order %s: %v", e.OrderID, e.Err)
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistenceFailure
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// SynchronizationTimeoutError is returned when an order did not reach the
// expected stage within the wait budget
type SynchronizationTimeoutError struct {
	OrderID  models.ID
	Expected Stage
	Attempts int
}

func (e *SynchronizationTimeoutError) Error() string {
	return fmt.Sprintf("order %s did not reach stage %s after %d attempts", e.OrderID, e.Expected, e.Attempts)
}

func (e *SynchronizationTimeoutError) Is(target error) bool {
	return target == ErrSynchronizationTimeout
}
