package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/google/uuid"
)

type stateEntry struct {
	orgID     uuid.UUID
	expiresAt time.Time
}

// StateManager issues one-time CSRF state tokens for the connect flow. Each
// token remembers which organization started the flow so the callback can
// attribute the credentials without a session.
type StateManager struct {
	mu         sync.Mutex
	states     map[string]stateEntry
	expiration time.Duration

	now func() time.Time
}

// NewStateManager creates a state manager with the given token lifetime
func NewStateManager(expiration time.Duration) *StateManager {
	return &StateManager{
		states:     make(map[string]stateEntry),
		expiration: expiration,
		now:        time.Now,
	}
}

// Issue generates a random state token bound to the organization
func (sm *StateManager) Issue(orgID uuid.UUID) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	state := base64.URLEncoding.EncodeToString(b)

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.prune()
	sm.states[state] = stateEntry{orgID: orgID, expiresAt: sm.now().Add(sm.expiration)}

	return state, nil
}

// Consume validates a state token and returns the organization that issued
// it. Tokens are single use; a second consume of the same token fails.
func (sm *StateManager) Consume(state string) (uuid.UUID, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	entry, ok := sm.states[state]
	if !ok {
		return uuid.Nil, false
	}
	delete(sm.states, state)

	if sm.now().After(entry.expiresAt) {
		return uuid.Nil, false
	}
	return entry.orgID, true
}

// prune drops expired entries; called with the lock held
func (sm *StateManager) prune() {
	now := sm.now()
	for state, entry := range sm.states {
		if now.After(entry.expiresAt) {
			delete(sm.states, state)
		}
	}
}
