package application

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/draftea/order-saga/order-service/domain"
	"github.com/draftea/order-saga/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderLocks_SerializesSameOrder(t *testing.T) {
	locks := newOrderLocks()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("order-1")
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Zero(t, locks.size(), "released entries are removed")
}

func TestOrderLocks_DifferentOrdersDoNotContend(t *testing.T) {
	locks := newOrderLocks()

	unlockA := locks.Lock("order-a")
	defer unlockA()

	acquired := make(chan struct{})
	go func() {
		unlock := locks.Lock("order-b")
		unlock()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock on another order blocked")
	}
}

func TestStageBroadcaster(t *testing.T) {
	broadcaster := NewStageBroadcaster()
	orderID := models.ID("order-1")

	signals, cancel := broadcaster.Subscribe(orderID)
	other, cancelOther := broadcaster.Subscribe("order-2")
	defer cancelOther()

	broadcaster.Notify(context.Background(), orderID, domain.StageValidated)
	require.Equal(t, domain.StageValidated, <-signals)
	assert.Empty(t, other)

	// a full buffer drops signals instead of blocking the committer
	for i := 0; i < subscriberBuffer+3; i++ {
		broadcaster.Notify(context.Background(), orderID, domain.StageAllocationPending)
	}
	assert.Len(t, signals, subscriberBuffer)

	cancel()
	cancel()
	broadcaster.mu.Lock()
	_, stillSubscribed := broadcaster.subscribers[orderID]
	broadcaster.mu.Unlock()
	assert.False(t, stillSubscribed)
}
