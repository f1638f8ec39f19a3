package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/draftea/order-saga/order-service/domain"
	"github.com/draftea/order-saga/shared/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStageNotifier_WakesWaitersOnOtherInstances(t *testing.T) {
	client := newTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	instanceA := NewRedisStageNotifier(client, "order-stages")
	instanceB := NewRedisStageNotifier(client, "order-stages")
	require.NoError(t, instanceB.Start(ctx))
	defer instanceB.Close()

	orderID := models.GenerateUUID()
	signals, unsubscribe := instanceB.Subscribe(orderID)
	defer unsubscribe()

	instanceA.Notify(ctx, orderID, domain.StageValidated)

	select {
	case stage := <-signals:
		assert.Equal(t, domain.StageValidated, stage)
	case <-time.After(2 * time.Second):
		t.Fatal("stage change was not relayed")
	}
}

func TestRedisStageNotifier_LocalSignalIsNotDuplicated(t *testing.T) {
	client := newTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := NewRedisStageNotifier(client, "order-stages")
	require.NoError(t, notifier.Start(ctx))
	defer notifier.Close()

	orderID := models.GenerateUUID()
	signals, unsubscribe := notifier.Subscribe(orderID)
	defer unsubscribe()

	notifier.Notify(ctx, orderID, domain.StageAllocationPending)

	require.Equal(t, domain.StageAllocationPending, <-signals)
	select {
	case stage := <-signals:
		t.Fatalf("unexpected second signal %s", stage)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRedisStageNotifier_NotifyWithoutRedisStillSignalsLocally(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	defer client.Close()

	notifier := NewRedisStageNotifier(client, "order-stages")
	orderID := models.GenerateUUID()
	signals, unsubscribe := notifier.Subscribe(orderID)
	defer unsubscribe()

	notifier.Notify(context.Background(), orderID, domain.StageCancelled)

	assert.Equal(t, domain.StageCancelled, <-signals)
}
