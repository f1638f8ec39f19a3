package domain

import (
	"testing"

	"github.com/draftea/order-saga/shared/events"
	"github.com/stretchr/testify/assert"
)

func snapshot(customerRef string, quantities ...int) events.OrderSnapshot {
	order := events.OrderSnapshot{OrderID: "order-1", Stage: "ALLOCATION_PENDING", CustomerRef: customerRef}
	for i, q := range quantities {
		order.Lines = append(order.Lines, events.OrderLineSnapshot{LineID: string(rune('a' + i)), OrderedQty: q})
	}
	return order
}

func TestValidate(t *testing.T) {
	tests := []struct {
		customerRef string
		expected    ValidationVerdict
	}{
		{customerRef: "customer-1", expected: ValidationVerdict{Reply: true, IsValid: true}},
		{customerRef: CustomerFailValidation, expected: ValidationVerdict{Reply: true, IsValid: false}},
		{customerRef: CustomerDontValidate, expected: ValidationVerdict{}},
		// allocation conventions do not affect validation
		{customerRef: CustomerFailAllocation, expected: ValidationVerdict{Reply: true, IsValid: true}},
	}

	for _, tt := range tests {
		t.Run(tt.customerRef, func(t *testing.T) {
			assert.Equal(t, tt.expected, Validate(snapshot(tt.customerRef, 1)))
		})
	}
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		customerRef string
		expected    AllocationPlan
	}{
		{
			customerRef: "customer-1",
			expected: AllocationPlan{Reply: true, Outcome: events.AllocationOutcomeSuccess, Allocations: []events.LineAllocation{
				{LineID: "a", AllocatedQty: 3},
				{LineID: "b", AllocatedQty: 1},
			}},
		},
		{
			customerRef: CustomerPartialAllocation,
			expected: AllocationPlan{Reply: true, Outcome: events.AllocationOutcomeNoInventory, Allocations: []events.LineAllocation{
				{LineID: "a", AllocatedQty: 2},
				{LineID: "b", AllocatedQty: 0},
			}},
		},
		{
			customerRef: CustomerFailAllocation,
			expected:    AllocationPlan{Reply: true, Outcome: events.AllocationOutcomeFailed},
		},
		{
			customerRef: CustomerDontAllocate,
			expected:    AllocationPlan{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.customerRef, func(t *testing.T) {
			assert.Equal(t, tt.expected, Allocate(snapshot(tt.customerRef, 3, 1)))
		})
	}
}
