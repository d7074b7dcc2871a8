package cache

import (
	"context"
	"sync"
	"time"
)

// MemorySnapshotStore keeps snapshots in memory with expiration.
// Used in sandbox mode and in tests where Redis is not available.
type MemorySnapshotStore struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]*memoryItem
}

type memoryItem struct {
	value      string
	expireTime time.Time
}

// NewMemorySnapshotStore creates a new in-memory snapshot store. Expired
// entries are pruned on write; no background goroutine is spawned, so
// throwaway stores in tests leak nothing.
func NewMemorySnapshotStore(ttl time.Duration) *MemorySnapshotStore {
	return &MemorySnapshotStore{
		ttl:   ttl,
		items: make(map[string]*memoryItem),
	}
}

// SetSnapshot stores the latest snapshot for a bot, refreshing the TTL
func (ms *MemorySnapshotStore) SetSnapshot(_ context.Context, botID string, text string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.pruneExpired()
	ms.items[botID] = &memoryItem{
		value:      text,
		expireTime: time.Now().Add(ms.ttl),
	}
	return nil
}

// GetSnapshot retrieves the latest snapshot for a bot
func (ms *MemorySnapshotStore) GetSnapshot(_ context.Context, botID string) (string, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, exists := ms.items[botID]
	if !exists {
		return "", false, nil
	}

	if time.Now().After(item.expireTime) {
		return "", false, nil
	}

	return item.value, true, nil
}

// DeleteSnapshot removes the snapshot for a bot
func (ms *MemorySnapshotStore) DeleteSnapshot(_ context.Context, botID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.items, botID)
	return nil
}

// pruneExpired removes expired items. Caller must hold ms.mu.
func (ms *MemorySnapshotStore) pruneExpired() {
	now := time.Now()
	for key, item := range ms.items {
		if now.After(item.expireTime) {
			delete(ms.items, key)
		}
	}
}
