package usecase

import "sync"

// sessionLocks hands out one mutex per session id. Entries are dropped once
// nobody holds or waits for them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{
		locks: make(map[string]*sessionLock),
	}
}

// lock blocks until id is free and returns the matching unlock.
func (that *sessionLocks) lock(id string) func() {
	that.mu.Lock()
	entry, ok := that.locks[id]
	if !ok {
		entry = &sessionLock{}
		that.locks[id] = entry
	}
	entry.refs++
	that.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		that.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(that.locks, id)
		}
		that.mu.Unlock()
	}
}

func (that *sessionLocks) len() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.locks)
}
