package domain

// Action is the side effect attached to a transition
type Action string

const (
	ActionNone                  Action = "none"
	ActionSendValidationRequest Action = "send_validation_request"
	ActionSendAllocationRequest Action = "send_allocation_request"
	ActionApplyAllocation       Action = "apply_allocation"
)

// Transition is one edge of the order state machine
type Transition struct {
	From   Stage
	Event  SagaEvent
	To     Stage
	Action Action
}

type transitionKey struct {
	stage Stage
	event SagaEvent
}

var transitions = buildTransitions()

func buildTransitions() map[transitionKey]Transition {
	table := map[transitionKey]Transition{}

	add := func(from Stage, event SagaEvent, to Stage, action Action) {
		table[transitionKey{from, event}] = Transition{From: from, Event: event, To: to, Action: action}
	}

	add(StageNew, EventValidateOrder, StageValidationPending, ActionSendValidationRequest)
	add(StageNew, EventValidationPassed, StageValidated, ActionNone)
	add(StageNew, EventValidationFailed, StageValidationException, ActionNone)

	// Submitting fires VALIDATE_ORDER right away, so replies find the order pending.
	add(StageValidationPending, EventValidationPassed, StageValidated, ActionNone)
	add(StageValidationPending, EventValidationFailed, StageValidationException, ActionNone)

	add(StageValidated, EventAllocateOrder, StageAllocationPending, ActionSendAllocationRequest)

	add(StageAllocationPending, EventAllocationSuccess, StageAllocated, ActionApplyAllocation)
	add(StageAllocationPending, EventAllocationNoInventory, StagePendingInventory, ActionApplyAllocation)
	add(StageAllocationPending, EventAllocationFailed, StageAllocationException, ActionNone)

	add(StageAllocated, EventOrderPickedUp, StagePickedUp, ActionNone)
	add(StagePendingInventory, EventOrderPickedUp, StagePickedUp, ActionNone)

	for _, stage := range AllStages {
		if !stage.IsTerminal() {
			add(stage, EventCancelOrder, StageCancelled, ActionNone)
		}
	}

	return table
}

// NextTransition looks up the edge fired by event from stage. Undefined pairs
// return an *InvalidTransitionError without an order id.
func NextTransition(stage Stage, event SagaEvent) (Transition, error) {
	t, ok := transitions[transitionKey{stage, event}]
	if !ok {
		return Transition{}, &InvalidTransitionError{Stage: stage, Event: event}
	}
	return t, nil
}
