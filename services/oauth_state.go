package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// stateTTL bounds how long an OAuth authorization round-trip may take
const stateTTL = 10 * time.Minute

type oauthStateEntry struct {
	userID    string
	createdAt time.Time
}

var (
	oauthStateMu sync.Mutex
	oauthStates  = make(map[string]oauthStateEntry)
)

// NewOAuthState records a random state token for the CSRF check on the OAuth
// callback, bound to the dashboard user who started the flow. Expired entries
// are evicted on each insertion.
func NewOAuthState(userID string) string {
	oauthStateMu.Lock()
	defer oauthStateMu.Unlock()

	cutoff := time.Now().Add(-stateTTL)
	for state, entry := range oauthStates {
		if entry.createdAt.Before(cutoff) {
			delete(oauthStates, state)
		}
	}

	state := uuid.NewString()
	oauthStates[state] = oauthStateEntry{userID: userID, createdAt: time.Now()}
	return state
}

// ConsumeOAuthState validates and removes a state token, returning the user
// who initiated the flow. A state can be consumed at most once.
func ConsumeOAuthState(state string) (string, bool) {
	oauthStateMu.Lock()
	defer oauthStateMu.Unlock()

	entry, ok := oauthStates[state]
	if !ok {
		return "", false
	}
	delete(oauthStates, state)

	if time.Since(entry.createdAt) > stateTTL {
		return "", false
	}
	return entry.userID, true
}
