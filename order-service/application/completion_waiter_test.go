package application

import (
	"context"
	"testing"
	"time"

	"github.com/draftea/order-saga/order-service/domain"
	"github.com/draftea/order-saga/order-service/mocks"
	"github.com/draftea/order-saga/shared/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func orderAt(id models.ID, stage domain.Stage) *domain.Order {
	return &domain.Order{ID: id, Stage: stage, Version: models.Version{Value: 1}}
}

func TestCompletionWaiter_AwaitStage(t *testing.T) {
	orderID := models.ID("550e8400-e29b-41d4-a716-446655440000")

	t.Run("already at stage", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)
		repo.EXPECT().FindByID(mock.Anything, orderID).Return(orderAt(orderID, domain.StageValidated), nil).Once()

		reached, err := NewCompletionWaiter(repo, NewStageBroadcaster()).
			AwaitStage(context.Background(), orderID, domain.StageValidated, 5, time.Hour)

		require.NoError(t, err)
		assert.True(t, reached)
	})

	t.Run("signal resolves the wait before the interval", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)
		broadcaster := NewStageBroadcaster()
		repo.EXPECT().FindByID(mock.Anything, orderID).
			RunAndReturn(func(ctx context.Context, id models.ID) (*domain.Order, error) {
				go broadcaster.Notify(ctx, id, domain.StageValidated)
				return orderAt(id, domain.StageValidationPending), nil
			}).Once()

		start := time.Now()
		reached, err := NewCompletionWaiter(repo, broadcaster).
			AwaitStage(context.Background(), orderID, domain.StageValidated, 5, time.Hour)

		require.NoError(t, err)
		assert.True(t, reached)
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("polling observes the stage", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)
		repo.EXPECT().FindByID(mock.Anything, orderID).Return(nil, nil).Once()
		repo.EXPECT().FindByID(mock.Anything, orderID).Return(orderAt(orderID, domain.StageValidated), nil).Once()

		reached, err := NewCompletionWaiter(repo, nil).
			AwaitStage(context.Background(), orderID, domain.StageValidated, 3, time.Millisecond)

		require.NoError(t, err)
		assert.True(t, reached)
	})

	t.Run("budget exhausted", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)
		repo.EXPECT().FindByID(mock.Anything, orderID).Return(orderAt(orderID, domain.StageValidationPending), nil).Times(3)

		start := time.Now()
		reached, err := NewCompletionWaiter(repo, NewStageBroadcaster()).
			AwaitStage(context.Background(), orderID, domain.StageValidated, 3, 10*time.Millisecond)

		require.NoError(t, err)
		assert.False(t, reached)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond, "interval is enforced between attempts")
	})

	t.Run("cancellation ends the wait", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)
		repo.EXPECT().FindByID(mock.Anything, orderID).Return(orderAt(orderID, domain.StageValidationPending), nil).Once()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		reached, err := NewCompletionWaiter(repo, NewStageBroadcaster()).
			AwaitStage(ctx, orderID, domain.StageValidated, 100, time.Hour)

		assert.False(t, reached)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)
		repo.EXPECT().FindByID(mock.Anything, orderID).Return(nil, errors.New("timeout")).Once()

		reached, err := NewCompletionWaiter(repo, nil).
			AwaitStage(context.Background(), orderID, domain.StageValidated, 3, time.Millisecond)

		assert.False(t, reached)
		assert.Contains(t, err.Error(), "failed to read order while waiting")
	})
}
