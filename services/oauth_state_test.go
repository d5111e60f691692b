package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOAuthStateRoundtrip(t *testing.T) {
	state := NewOAuthState("user-42")
	require.NotEmpty(t, state)

	userID, ok := ConsumeOAuthState(state)
	assert.True(t, ok)
	assert.Equal(t, "user-42", userID)
}

func TestOAuthStateSingleUse(t *testing.T) {
	state := NewOAuthState("user-42")

	_, ok := ConsumeOAuthState(state)
	require.True(t, ok)

	_, ok = ConsumeOAuthState(state)
	assert.False(t, ok, "a state token can be consumed at most once")
}

func TestOAuthStateUnknownToken(t *testing.T) {
	_, ok := ConsumeOAuthState("never-issued")
	assert.False(t, ok)
}

func TestOAuthStateExpiry(t *testing.T) {
	state := NewOAuthState("user-42")

	oauthStateMu.Lock()
	entry := oauthStates[state]
	entry.createdAt = time.Now().Add(-stateTTL - time.Minute)
	oauthStates[state] = entry
	oauthStateMu.Unlock()

	_, ok := ConsumeOAuthState(state)
	assert.False(t, ok, "expired states are rejected")
}

func TestOAuthStateEvictionOnInsert(t *testing.T) {
	stale := NewOAuthState("stale-user")

	oauthStateMu.Lock()
	entry := oauthStates[stale]
	entry.createdAt = time.Now().Add(-stateTTL - time.Minute)
	oauthStates[stale] = entry
	oauthStateMu.Unlock()

	NewOAuthState("fresh-user")

	oauthStateMu.Lock()
	_, stillThere := oauthStates[stale]
	oauthStateMu.Unlock()

	assert.False(t, stillThere, "stale entries are evicted when a new state is inserted")
}
