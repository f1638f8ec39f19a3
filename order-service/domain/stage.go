package domain

// Stage represents where an order is in its lifecycle
type Stage string

const (
	StageNew                 Stage = "NEW"
	StageValidationPending   Stage = "VALIDATION_PENDING"
	StageValidated           Stage = "VALIDATED"
	StageValidationException Stage = "VALIDATION_EXCEPTION"
	StageAllocationPending   Stage = "ALLOCATION_PENDING"
	StageAllocated           Stage = "ALLOCATED"
	StagePendingInventory    Stage = "PENDING_INVENTORY"
	StageAllocationException Stage = "ALLOCATION_EXCEPTION"
	StagePickedUp            Stage = "PICKED_UP"
	StageDelivered           Stage = "DELIVERED"
	StageDeliveryException   Stage = "DELIVERY_EXCEPTION"
	StageCancelled           Stage = "CANCELLED"
)

// AllStages lists every stage in lifecycle order
var AllStages = []Stage{
	StageNew,
	StageValidationPending,
	StageValidated,
	StageValidationException,
	StageAllocationPending,
	StageAllocated,
	StagePendingInventory,
	StageAllocationException,
	StagePickedUp,
	StageDelivered,
	StageDeliveryException,
	StageCancelled,
}

// IsTerminal reports whether the saga is complete once an order reaches s
func (s Stage) IsTerminal() bool {
	switch s {
	case StagePickedUp, StageDelivered, StageDeliveryException,
		StageValidationException, StageAllocationException, StageCancelled:
		return true
	}
	return false
}

// Valid reports whether s is a known stage
func (s Stage) Valid() bool {
	for _, stage := range AllStages {
		if stage == s {
			return true
		}
	}
	return false
}

func (s Stage) String() string {
	return string(s)
}

// SagaEvent is a signal fed into the order state machine
type SagaEvent string

const (
	EventValidateOrder         SagaEvent = "VALIDATE_ORDER"
	EventValidationPassed      SagaEvent = "VALIDATION_PASSED"
	EventValidationFailed      SagaEvent = "VALIDATION_FAILED"
	EventAllocateOrder         SagaEvent = "ALLOCATE_ORDER"
	EventAllocationSuccess     SagaEvent = "ALLOCATION_SUCCESS"
	EventAllocationNoInventory SagaEvent = "ALLOCATION_NO_INVENTORY"
	EventAllocationFailed      SagaEvent = "ALLOCATION_FAILED"
	EventOrderPickedUp         SagaEvent = "ORDER_PICKED_UP"
	EventCancelOrder           SagaEvent = "CANCEL_ORDER"
)

// AllEvents lists every saga event
var AllEvents = []SagaEvent{
	EventValidateOrder,
	EventValidationPassed,
	EventValidationFailed,
	EventAllocateOrder,
	EventAllocationSuccess,
	EventAllocationNoInventory,
	EventAllocationFailed,
	EventOrderPickedUp,
	EventCancelOrder,
}

func (e SagaEvent) String() string {
	return string(e)
}
