package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopic_Matches(t *testing.T) {
	tests := []struct {
		name    string
		topic   Topic
		pattern Topic
		want    bool
	}{
		{"exact", "order.validation.requested", "order.validation.requested", true},
		{"single segment wildcard", "order.allocation.requested", OrderRequestsPattern, true},
		{"wildcard does not cross segments", "order.allocation.requested", "order.*", false},
		{"replies pattern rejects requests", "order.validation.requested", OrderRepliesPattern, false},
		{"hash matches all", "order.validation.completed", "#", true},
		{"hash prefix", "order.validation.completed", "order.#", true},
		{"hash suffix", "order.validation.completed", "#.completed", true},
		{"hash contains", "order.validation.completed", "#validation#", true},
		{"different segment", "order.validation.completed", "order.allocation.completed", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.topic.Matches(tt.pattern))
		})
	}
}

func TestEvent_JSONRoundTripKeepsPayloadTyped(t *testing.T) {
	original := NewEvent("order-1", AllocateOrderCompletedEvent, AllocateOrderResult{
		OrderID: "order-1",
		LineAllocations: []LineAllocation{
			{LineID: "line-1", AllocatedQty: 3},
		},
		Outcome: AllocationOutcomeNoInventory,
	}).WithCorrelationID("order-1").WithMetadata("traceparent", "00-abc-def-01")

	raw, err := original.ToJSON()
	require.NoError(t, err)

	decoded, err := FromJSON(raw)
	require.NoError(t, err)

	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.Topic, decoded.Topic)
	assert.Equal(t, AllocateOrderCompletedEvent, decoded.EventType)
	assert.Equal(t, "00-abc-def-01", decoded.Metadata["traceparent"])
	assert.IsType(t, json.RawMessage{}, decoded.Data)

	var result AllocateOrderResult
	require.NoError(t, decoded.UnmarshalPayload(&result))
	assert.Equal(t, AllocationOutcomeNoInventory, result.Outcome)
	assert.Equal(t, 3, result.LineAllocations[0].AllocatedQty)
}

func TestEvent_UnmarshalPayload(t *testing.T) {
	t.Run("same type is assigned directly", func(t *testing.T) {
		event := NewEvent("order-1", ValidateOrderCompletedEvent, ValidateOrderResult{OrderID: "order-1", IsValid: true})

		var result ValidateOrderResult
		require.NoError(t, event.UnmarshalPayload(&result))
		assert.True(t, result.IsValid)
	})

	t.Run("pointer payload is dereferenced", func(t *testing.T) {
		event := NewEvent("order-1", ValidateOrderCompletedEvent, &ValidateOrderResult{OrderID: "order-1"})

		var result ValidateOrderResult
		require.NoError(t, event.UnmarshalPayload(&result))
		assert.Equal(t, "order-1", result.OrderID)
	})

	t.Run("non pointer receiver", func(t *testing.T) {
		event := NewEvent("order-1", ValidateOrderCompletedEvent, ValidateOrderResult{})
		assert.ErrorIs(t, event.UnmarshalPayload(ValidateOrderResult{}), ErrInvalidReceiver)
	})

	t.Run("missing payload", func(t *testing.T) {
		event := NewEvent("order-1", ValidateOrderCompletedEvent, nil)

		var result ValidateOrderResult
		assert.ErrorIs(t, event.UnmarshalPayload(&result), ErrInvalidPayload)
	})
}

func TestAllocationOutcome_Valid(t *testing.T) {
	assert.True(t, AllocationOutcomeSuccess.Valid())
	assert.True(t, AllocationOutcomeNoInventory.Valid())
	assert.True(t, AllocationOutcomeFailed.Valid())
	assert.False(t, AllocationOutcome("partial").Valid())
}
