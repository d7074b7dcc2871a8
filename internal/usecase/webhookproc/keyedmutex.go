package webhookproc

import (
	"sync"
)

// keyedMutex serializes work per key. Events for different meetings proceed
// in parallel; events for the same meeting take turns.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock acquires the mutex for key, creating it on first use
func (km *keyedMutex) Lock(key string) {
	km.mu.Lock()
	lock, ok := km.locks[key]
	if !ok {
		lock = &keyedLock{}
		km.locks[key] = lock
	}
	lock.refs++
	km.mu.Unlock()

	lock.mu.Lock()
}

// Unlock releases the mutex for key, dropping it once unused
func (km *keyedMutex) Unlock(key string) {
	km.mu.Lock()
	lock, ok := km.locks[key]
	if !ok {
		km.mu.Unlock()
		return
	}
	lock.refs--
	if lock.refs == 0 {
		delete(km.locks, key)
	}
	km.mu.Unlock()

	lock.mu.Unlock()
}
