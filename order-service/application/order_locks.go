package application

import (
	"sync"

	"github.com/draftea/order-saga/shared/models"
)

type orderLock struct {
	mu   sync.Mutex
	refs int
}

// orderLocks serializes work per order id. Entries are dropped once no
// goroutine holds or waits on them.
type orderLocks struct {
	mu    sync.Mutex
	locks map[models.ID]*orderLock
}

func newOrderLocks() *orderLocks {
	return &orderLocks{locks: map[models.ID]*orderLock{}}
}

// Lock blocks until id is free and returns the matching unlock func
func (l *orderLocks) Lock(id models.ID) func() {
	l.mu.Lock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &orderLock{}
		l.locks[id] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *orderLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
