package workshop

import "sync"

// locks.go - Per-item serialization.
//
// Two concurrent mutations against the same work item must not interleave
// their read-modify-write cycles, while operations on different items must
// not block one another. A reference-counted mutex per composite id gives
// exactly that; entries are dropped once the last holder releases, so the
// map does not grow with history.

type itemLocks struct {
	mu    sync.Mutex
	locks map[ItemID]*itemLock
}

type itemLock struct {
	mu   sync.Mutex
	refs int
}

func newItemLocks() *itemLocks {
	return &itemLocks{locks: make(map[ItemID]*itemLock)}
}

// Lock acquires the mutex for id and returns the release function.
func (l *itemLocks) Lock(id ItemID) func() {
	l.mu.Lock()
	e, ok := l.locks[id]
	if !ok {
		e = &itemLock{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
