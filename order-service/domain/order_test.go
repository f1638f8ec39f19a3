package domain

import (
	"testing"

	"github.com/draftea/order-saga/shared/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	tests := []struct {
		name          string
		quantities    []int
		expectedError string
	}{
		{name: "two lines", quantities: []int{3, 5}},
		{name: "no lines", quantities: nil, expectedError: "order must have at least one line"},
		{name: "zero quantity", quantities: []int{2, 0}, expectedError: "line 1: ordered quantity must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := CreateOrder("customer-1", tt.quantities)

			if tt.expectedError != "" {
				assert.ErrorIs(t, err, ErrInvalidOrder)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Nil(t, order)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, StageNew, order.Stage)
			assert.Equal(t, 1, order.Version.Value)
			assert.Equal(t, "customer-1", order.CustomerRef)
			require.Len(t, order.Lines, len(tt.quantities))
			assert.NotEqual(t, order.Lines[0].ID, order.Lines[1].ID)
			for i, line := range order.Lines {
				assert.Equal(t, tt.quantities[i], line.OrderedQty)
				assert.Zero(t, line.AllocatedQty)
			}
		})
	}
}

func TestOrder_NextAttachesOrderID(t *testing.T) {
	order, err := CreateOrder("customer-1", []int{1})
	require.NoError(t, err)

	_, err = order.Next(EventOrderPickedUp)

	var invalid *InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, order.ID, invalid.OrderID)
	assert.Equal(t, StageNew, invalid.Stage)
	assert.Contains(t, err.Error(), order.ID.String())
}

func TestOrder_ApplyAllocations(t *testing.T) {
	order, err := CreateOrder("customer-1", []int{4, 2})
	require.NoError(t, err)

	changed, err := order.ApplyAllocations([]LineAllocation{
		{LineID: order.Lines[0].ID, AllocatedQty: 3},
		{LineID: models.GenerateUUID(), AllocatedQty: 9},
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 3, order.Lines[0].AllocatedQty)
	assert.Zero(t, order.Lines[1].AllocatedQty)

	changed, err = order.ApplyAllocations([]LineAllocation{{LineID: order.Lines[0].ID, AllocatedQty: 3}})
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = order.ApplyAllocations([]LineAllocation{{LineID: order.Lines[1].ID, AllocatedQty: -1}})
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestOrder_CloneIsDeep(t *testing.T) {
	order, err := CreateOrder("customer-1", []int{4})
	require.NoError(t, err)

	clone := order.Clone()
	clone.Lines[0].AllocatedQty = 4
	clone.Stage = StageCancelled

	assert.Zero(t, order.Lines[0].AllocatedQty)
	assert.Equal(t, StageNew, order.Stage)
}

func TestOrder_ToSnapshot(t *testing.T) {
	order, err := CreateOrder("partial-allocation", []int{4})
	require.NoError(t, err)
	order.Lines[0].AllocatedQty = 3

	snapshot := order.ToSnapshot()

	assert.Equal(t, order.ID.String(), snapshot.OrderID)
	assert.Equal(t, "NEW", snapshot.Stage)
	assert.Equal(t, "partial-allocation", snapshot.CustomerRef)
	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, order.Lines[0].ID.String(), snapshot.Lines[0].LineID)
	assert.Equal(t, 4, snapshot.Lines[0].OrderedQty)
	assert.Equal(t, 3, snapshot.Lines[0].AllocatedQty)
}

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cause := errors.New("connection refused")
	persistence := &PersistenceError{OrderID: "order-1", Err: cause}

	assert.ErrorIs(t, persistence, ErrPersistenceFailure)
	assert.ErrorIs(t, persistence, cause)
	assert.ErrorIs(t, errors.Wrap(persistence, "commit"), ErrPersistenceFailure)
	assert.ErrorIs(t, &SynchronizationTimeoutError{OrderID: "order-1", Expected: StageValidated, Attempts: 10}, ErrSynchronizationTimeout)
	assert.NotErrorIs(t, &InvalidTransitionError{}, ErrOrderNotFound)
}
