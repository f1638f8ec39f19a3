package application

import (
	"context"
	"sync"

	"github.com/draftea/order-saga/order-service/domain"
	"github.com/draftea/order-saga/shared/models"
)

// StageNotifier signals committed stage changes to waiters
type StageNotifier interface {
	Notify(ctx context.Context, orderID models.ID, stage domain.Stage)
	// Subscribe returns a channel receiving stages committed for orderID and a
	// func releasing the subscription.
	Subscribe(orderID models.ID) (<-chan domain.Stage, func())
}

var _ StageNotifier = (*StageBroadcaster)(nil)

const subscriberBuffer = 4

// StageBroadcaster is the in-process StageNotifier. Sends never block: a
// signal is dropped for a subscriber whose buffer is full, the waiter's
// polling picks the stage up instead.
type StageBroadcaster struct {
	mu          sync.Mutex
	subscribers map[models.ID]map[chan domain.Stage]struct{}
}

// NewStageBroadcaster creates an empty broadcaster
func NewStageBroadcaster() *StageBroadcaster {
	return &StageBroadcaster{subscribers: map[models.ID]map[chan domain.Stage]struct{}{}}
}

// Notify implements StageNotifier
func (b *StageBroadcaster) Notify(_ context.Context, orderID models.ID, stage domain.Stage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subscribers[orderID] {
		select {
		case ch <- stage:
		default:
		}
	}
}

// Subscribe implements StageNotifier
func (b *StageBroadcaster) Subscribe(orderID models.ID) (<-chan domain.Stage, func()) {
	ch := make(chan domain.Stage, subscriberBuffer)

	b.mu.Lock()
	subs, ok := b.subscribers[orderID]
	if !ok {
		subs = map[chan domain.Stage]struct{}{}
		b.subscribers[orderID] = subs
	}
	subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subscribers[orderID], ch)
			if len(b.subscribers[orderID]) == 0 {
				delete(b.subscribers, orderID)
			}
		})
	}
}
