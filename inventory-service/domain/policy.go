package domain

import "github.com/draftea/order-saga/shared/events"

// Customer references that steer the reference collaborators. Any other
// reference validates and allocates in full.
const (
	CustomerFailValidation    = "fail-validation"
	CustomerDontValidate      = "dont-validate"
	CustomerPartialAllocation = "partial-allocation"
	CustomerFailAllocation    = "fail-allocation"
	CustomerDontAllocate      = "dont-allocate"
)

// ValidationVerdict is what the validator answers for an order
type ValidationVerdict struct {
	Reply   bool
	IsValid bool
}

// Validate decides the validation reply for order
func Validate(order events.OrderSnapshot) ValidationVerdict {
	switch order.CustomerRef {
	case CustomerDontValidate:
		return ValidationVerdict{}
	case CustomerFailValidation:
		return ValidationVerdict{Reply: true, IsValid: false}
	default:
		return ValidationVerdict{Reply: true, IsValid: true}
	}
}

// AllocationPlan is what the allocator answers for an order
type AllocationPlan struct {
	Reply       bool
	Outcome     events.AllocationOutcome
	Allocations []events.LineAllocation
}

// Allocate decides the allocation reply for order. A partial allocation
// reserves one unit less than ordered on every line.
func Allocate(order events.OrderSnapshot) AllocationPlan {
	switch order.CustomerRef {
	case CustomerDontAllocate:
		return AllocationPlan{}
	case CustomerFailAllocation:
		return AllocationPlan{Reply: true, Outcome: events.AllocationOutcomeFailed}
	case CustomerPartialAllocation:
		return AllocationPlan{
			Reply:       true,
			Outcome:     events.AllocationOutcomeNoInventory,
			Allocations: allocateEach(order.Lines, func(ordered int) int { return ordered - 1 }),
		}
	default:
		return AllocationPlan{
			Reply:       true,
			Outcome:     events.AllocationOutcomeSuccess,
			Allocations: allocateEach(order.Lines, func(ordered int) int { return ordered }),
		}
	}
}

func allocateEach(lines []events.OrderLineSnapshot, qty func(ordered int) int) []events.LineAllocation {
	allocations := make([]events.LineAllocation, 0, len(lines))
	for _, line := range lines {
		allocations = append(allocations, events.LineAllocation{
			LineID:       line.LineID,
			AllocatedQty: qty(line.OrderedQty),
		})
	}
	return allocations
}
