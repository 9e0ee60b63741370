package service

import (
	"sync"

	"github.com/budgetly/budgetly-backend/internal/domain"
)

// MemoryUserLocker is an in-process keyed mutex. Entries are dropped once
// no goroutine holds or waits for them.
type MemoryUserLocker struct {
	mu    sync.Mutex
	locks map[int32]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

var _ domain.UserLocker = (*MemoryUserLocker)(nil)

// NewMemoryUserLocker creates a new MemoryUserLocker
func NewMemoryUserLocker() *MemoryUserLocker {
	return &MemoryUserLocker{locks: make(map[int32]*userLock)}
}

// Lock blocks until userID's lock is free. The returned func releases it
// and is safe to call more than once.
func (l *MemoryUserLocker) Lock(userID int32) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[userID]
	if !ok {
		entry = &userLock{}
		l.locks[userID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()

			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.locks, userID)
			}
			l.mu.Unlock()
		})
	}, nil
}

// held returns how many users currently have an entry
func (l *MemoryUserLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
