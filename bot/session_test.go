package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_KeyedByChatAndUser(t *testing.T) {
	store := NewMemorySessionStore()

	store.Put(1, 10, Session{State: StateAwaitT1Score, MatchID: 5})
	store.Put(1, 11, Session{State: StateAwaitTeamName, TournamentID: 2})

	s, ok := store.Get(1, 10)
	require.True(t, ok)
	assert.Equal(t, StateAwaitT1Score, s.State)
	assert.Equal(t, 5, s.MatchID)

	other, ok := store.Get(1, 11)
	require.True(t, ok)
	assert.Equal(t, StateAwaitTeamName, other.State)

	_, ok = store.Get(2, 10)
	assert.False(t, ok, "same user in another chat has no session")
}

func TestSessionStore_Delete(t *testing.T) {
	store := NewMemorySessionStore()
	store.Put(1, 10, Session{State: StateConfirmResult})
	store.Delete(1, 10)

	_, ok := store.Get(1, 10)
	assert.False(t, ok)
}

func TestSessionStore_ExpiresAbandonedDialogs(t *testing.T) {
	store := NewMemorySessionStore()
	store.Put(1, 10, Session{State: StateAwaitT2Score})

	inner := store.(*memorySessionStore)
	inner.mu.Lock()
	s := inner.sessions[sessionKey{1, 10}]
	s.UpdatedAt = time.Now().Add(-sessionTTL - time.Minute)
	inner.sessions[sessionKey{1, 10}] = s
	inner.mu.Unlock()

	_, ok := store.Get(1, 10)
	assert.False(t, ok)
}
