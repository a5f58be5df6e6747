package settle

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex serializes settlement per wager id while letting independent
// wagers proceed concurrently. Entries are refcounted so the map does not
// grow with the lifetime of the process.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[uuid.UUID]*lockEntry),
	}
}

// Lock blocks until the wager's lock is held and returns the unlock func.
func (km *keyedMutex) Lock(id uuid.UUID) func() {
	km.mu.Lock()

	entry, ok := km.locks[id]
	if !ok {
		entry = &lockEntry{}
		km.locks[id] = entry
	}

	entry.refs++

	km.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		km.mu.Lock()

		entry.refs--
		if entry.refs == 0 {
			delete(km.locks, id)
		}

		km.mu.Unlock()
	}
}
