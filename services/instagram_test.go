package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphGetDecodesErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeGraphError(w, 190, "Invalid OAuth access token")
	}))
	defer server.Close()

	var out struct{}
	err := graphGet(context.Background(), server.URL+"/me", url.Values{}, &out)

	require.Error(t, err)
	graphErr, ok := err.(*GraphError)
	require.True(t, ok)
	assert.Equal(t, 190, graphErr.Code)
	assert.Equal(t, "Invalid OAuth access token", graphErr.Message)
	assert.Contains(t, graphErr.Error(), "code 190")
}

func TestFetchProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, profileFields, r.URL.Query().Get("fields"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"user_id":         17841400000000001,
			"username":        "testaccount",
			"account_type":    "MEDIA_CREATOR",
			"followers_count": 1234,
			"follows_count":   56,
			"media_count":     78,
		})
	}))
	defer server.Close()

	oldBase := igGraphBase
	igGraphBase = server.URL
	defer func() { igGraphBase = oldBase }()

	profile, err := FetchProfile(context.Background(), "token")

	require.NoError(t, err)
	assert.Equal(t, "17841400000000001", profile.UserID.String())
	assert.Equal(t, "testaccount", profile.Username)
	assert.Equal(t, 1234, profile.FollowersCount)
}

func TestExchangeLongLivedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/access_token", r.URL.Path)
		assert.Equal(t, "ig_exchange_token", r.URL.Query().Get("grant_type"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "long-lived",
			"expires_in":   5184000,
		})
	}))
	defer server.Close()

	oldBase := igGraphBase
	igGraphBase = server.URL
	defer func() { igGraphBase = oldBase }()

	token, expiresIn, err := ExchangeLongLivedToken(context.Background(), "secret", "short")

	require.NoError(t, err)
	assert.Equal(t, "long-lived", token)
	assert.EqualValues(t, 5184000, expiresIn)
}

func TestExchangeCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "short-lived",
			"user_id":      17841400000000001,
		})
	}))
	defer server.Close()

	oldBase := igOAuthBase
	igOAuthBase = server.URL
	defer func() { igOAuthBase = oldBase }()

	token, userID, err := ExchangeCode(context.Background(), "app", "secret", "https://example.com/cb", "the-code")

	require.NoError(t, err)
	assert.Equal(t, "short-lived", token)
	assert.Equal(t, "17841400000000001", userID)
}

func TestAuthorizeURL(t *testing.T) {
	raw := AuthorizeURL("app-id", "https://example.com/auth/instagram/callback", "state-123")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	query := parsed.Query()
	assert.Equal(t, "app-id", query.Get("client_id"))
	assert.Equal(t, "state-123", query.Get("state"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "0", query.Get("enable_fb_login"))
	assert.Equal(t, igScopes, query.Get("scope"))
}
