package oauth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateManager_IssueAndConsume(t *testing.T) {
	sm := NewStateManager(15 * time.Minute)
	orgID := uuid.New()

	state, err := sm.Issue(orgID)
	require.NoError(t, err)
	require.NotEmpty(t, state)

	got, ok := sm.Consume(state)
	require.True(t, ok)
	assert.Equal(t, orgID, got)
}

func TestStateManager_TokensAreSingleUse(t *testing.T) {
	sm := NewStateManager(15 * time.Minute)

	state, err := sm.Issue(uuid.New())
	require.NoError(t, err)

	_, ok := sm.Consume(state)
	require.True(t, ok)

	_, ok = sm.Consume(state)
	assert.False(t, ok)
}

func TestStateManager_UnknownTokenRejected(t *testing.T) {
	sm := NewStateManager(15 * time.Minute)

	_, ok := sm.Consume("never-issued")
	assert.False(t, ok)
}

func TestStateManager_ExpiredTokenRejected(t *testing.T) {
	sm := NewStateManager(10 * time.Minute)

	state, err := sm.Issue(uuid.New())
	require.NoError(t, err)

	sm.now = func() time.Time { return time.Now().Add(11 * time.Minute) }

	_, ok := sm.Consume(state)
	assert.False(t, ok)
}

func TestStateManager_DistinctTokensPerFlow(t *testing.T) {
	sm := NewStateManager(15 * time.Minute)

	a, err := sm.Issue(uuid.New())
	require.NoError(t, err)
	b, err := sm.Issue(uuid.New())
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
