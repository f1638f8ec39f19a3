package application

import (
	"context"
	"testing"

	"github.com/draftea/order-saga/shared/events"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	published []*events.Event
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...*events.Event) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, evts...)
	return nil
}

func orderSnapshot(customerRef string) events.OrderSnapshot {
	return events.OrderSnapshot{
		OrderID:     "550e8400-e29b-41d4-a716-446655440000",
		Stage:       "VALIDATION_PENDING",
		CustomerRef: customerRef,
		Lines: []events.OrderLineSnapshot{
			{LineID: "550e8400-e29b-41d4-a716-4466554400a1", OrderedQty: 2},
		},
	}
}

func TestValidateOrder_Execute(t *testing.T) {
	t.Run("publishes verdict", func(t *testing.T) {
		publisher := &recordingPublisher{}
		order := orderSnapshot("fail-validation")

		err := NewValidateOrder(publisher).Execute(context.Background(), &events.ValidateOrderRequest{OrderID: order.OrderID, Order: order})

		require.NoError(t, err)
		require.Len(t, publisher.published, 1)
		reply := publisher.published[0]
		assert.Equal(t, events.ValidateOrderCompletedEvent, reply.EventType)
		assert.Equal(t, order.OrderID, reply.AggregateID.String())
		assert.Equal(t, order.OrderID, reply.CorrelationID.String())

		var result events.ValidateOrderResult
		require.NoError(t, reply.UnmarshalPayload(&result))
		assert.Equal(t, events.ValidateOrderResult{OrderID: order.OrderID, IsValid: false}, result)
	})

	t.Run("withholds reply", func(t *testing.T) {
		publisher := &recordingPublisher{}
		order := orderSnapshot("dont-validate")

		err := NewValidateOrder(publisher).Execute(context.Background(), &events.ValidateOrderRequest{OrderID: order.OrderID, Order: order})

		require.NoError(t, err)
		assert.Empty(t, publisher.published)
	})

	t.Run("publish failure", func(t *testing.T) {
		publisher := &recordingPublisher{err: errors.New("broker down")}
		order := orderSnapshot("customer-1")

		err := NewValidateOrder(publisher).Execute(context.Background(), &events.ValidateOrderRequest{OrderID: order.OrderID, Order: order})

		assert.ErrorContains(t, err, "failed to publish validation result")
	})
}

func TestAllocateOrder_Execute(t *testing.T) {
	t.Run("publishes full allocation", func(t *testing.T) {
		publisher := &recordingPublisher{}
		order := orderSnapshot("customer-1")

		err := NewAllocateOrder(publisher).Execute(context.Background(), &events.AllocateOrderRequest{OrderID: order.OrderID, Order: order})

		require.NoError(t, err)
		require.Len(t, publisher.published, 1)
		assert.Equal(t, events.AllocateOrderCompletedEvent, publisher.published[0].EventType)

		var result events.AllocateOrderResult
		require.NoError(t, publisher.published[0].UnmarshalPayload(&result))
		assert.Equal(t, events.AllocationOutcomeSuccess, result.Outcome)
		assert.Equal(t, []events.LineAllocation{{LineID: "550e8400-e29b-41d4-a716-4466554400a1", AllocatedQty: 2}}, result.LineAllocations)
	})

	t.Run("withholds reply", func(t *testing.T) {
		publisher := &recordingPublisher{}
		order := orderSnapshot("dont-allocate")

		err := NewAllocateOrder(publisher).Execute(context.Background(), &events.AllocateOrderRequest{OrderID: order.OrderID, Order: order})

		require.NoError(t, err)
		assert.Empty(t, publisher.published)
	})

	t.Run("publish failure", func(t *testing.T) {
		publisher := &recordingPublisher{err: errors.New("broker down")}
		order := orderSnapshot("partial-allocation")

		err := NewAllocateOrder(publisher).Execute(context.Background(), &events.AllocateOrderRequest{OrderID: order.OrderID, Order: order})

		assert.ErrorContains(t, err, "failed to publish allocation result")
	})
}
