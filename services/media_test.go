package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insta-metrics/models"
)

func testAccount() *models.Account {
	return &models.Account{
		UserID:         "user-1",
		InstagramID:    "17841400000000001",
		Username:       "testaccount",
		FollowersCount: 1000,
		AccessToken:    "test-token",
	}
}

func writeGraphError(w http.ResponseWriter, code int, message string) {
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"message": message,
			"type":    "OAuthException",
			"code":    code,
		},
	})
}

func writeMediaPage(w http.ResponseWriter, items []models.MediaItem) {
	json.NewEncoder(w).Encode(map[string]interface{}{"data": items})
}

func TestResolveRecentMediaFirstSuccessShortCircuits(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		writeMediaPage(w, []models.MediaItem{{ID: "m1", LikeCount: 5}})
	}))
	defer server.Close()

	oldBase := igGraphBase
	igGraphBase = server.URL
	defer func() { igGraphBase = oldBase }()

	account := testAccount()
	items, endpoint, attempts := ResolveRecentMedia(context.Background(), account, 10)

	require.Len(t, items, 1)
	assert.Equal(t, "m1", items[0].ID)
	assert.Equal(t, fmt.Sprintf("%s/%s/media", server.URL, account.InstagramID), endpoint)
	assert.Empty(t, attempts)
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls), "no combination should be attempted after the first success")
}

func TestResolveRecentMediaFieldSetDegradation(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		// The full field set fails for this token, the safe one works
		if r.URL.Query().Get("fields") == fullMediaFields {
			writeGraphError(w, 100, "media_url is not supported")
			return
		}
		writeMediaPage(w, []models.MediaItem{{ID: "m1"}, {ID: "m2"}})
	}))
	defer server.Close()

	oldBase := igGraphBase
	igGraphBase = server.URL
	defer func() { igGraphBase = oldBase }()

	account := testAccount()
	items, endpoint, attempts := ResolveRecentMedia(context.Background(), account, 10)

	require.Len(t, items, 2)
	assert.Equal(t, fmt.Sprintf("%s/%s/media", server.URL, account.InstagramID), endpoint,
		"the primary endpoint should still win with the degraded field set")
	assert.Empty(t, attempts)
	assert.EqualValues(t, 2, atomic.LoadInt64(&calls))
}

func TestResolveRecentMediaTotalFailure(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		writeGraphError(w, 190, "Invalid OAuth access token")
	}))
	defer server.Close()

	oldBase := igGraphBase
	igGraphBase = server.URL
	defer func() { igGraphBase = oldBase }()

	items, endpoint, attempts := ResolveRecentMedia(context.Background(), testAccount(), 10)

	assert.NotNil(t, items)
	assert.Empty(t, items, "total failure must yield an empty list, not a nil crash or an error")
	assert.Empty(t, endpoint)

	// Two endpoints times two field sets
	require.Len(t, attempts, 4)
	assert.EqualValues(t, 4, atomic.LoadInt64(&calls))
	for _, attempt := range attempts {
		assert.Equal(t, "Invalid OAuth access token", attempt.Message)
		assert.Equal(t, 190, attempt.Code)
		assert.NotEmpty(t, attempt.Endpoint)
		assert.NotEmpty(t, attempt.Fields)
	}
}

func TestResolveRecentMediaEndpointFallback(t *testing.T) {
	account := testAccount()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The numeric-ID endpoint is broken, the /me alias works
		if r.URL.Path == "/"+account.InstagramID+"/media" {
			writeGraphError(w, 100, "Unsupported get request")
			return
		}
		writeMediaPage(w, []models.MediaItem{{ID: "m9"}})
	}))
	defer server.Close()

	oldBase := igGraphBase
	igGraphBase = server.URL
	defer func() { igGraphBase = oldBase }()

	items, endpoint, attempts := ResolveRecentMedia(context.Background(), account, 10)

	require.Len(t, items, 1)
	assert.Equal(t, server.URL+"/me/media", endpoint)
	assert.Empty(t, attempts, "attempt errors are only returned on total failure")
}
