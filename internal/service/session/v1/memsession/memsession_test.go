package memsession

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenResolveClose(t *testing.T) {
	store := NewStore()
	sessionID := store.Open("user-1")
	require.NotEmpty(t, sessionID)

	userID, ok := store.Resolve(sessionID)
	require.True(t, ok)
	assert.Equal(t, "user-1", userID)

	store.Close(sessionID)
	_, ok = store.Resolve(sessionID)
	assert.False(t, ok)
}

func TestResolveUnknownSession(t *testing.T) {
	store := NewStore()
	_, ok := store.Resolve("not-a-session")
	assert.False(t, ok)
}

func TestOpenProducesDistinctSessions(t *testing.T) {
	store := NewStore()
	first := store.Open("user-1")
	second := store.Open("user-1")
	assert.NotEqual(t, first, second)

	// closing one session does not affect the other
	store.Close(first)
	_, ok := store.Resolve(second)
	assert.True(t, ok)
}

func TestCloseUnknownSessionIsNoOp(t *testing.T) {
	store := NewStore()
	store.Close("not-a-session")
}
