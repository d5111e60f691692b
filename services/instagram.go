package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Graph API bases. Package vars so tests can point them at a local server.
// The code exchange endpoint has no version prefix.
var (
	igGraphBase     = "https://graph.instagram.com/v21.0"
	igOAuthBase     = "https://api.instagram.com"
	igAuthorizeBase = "https://www.instagram.com/oauth/authorize"
)

// Scopes for Instagram Business Login
const igScopes = "instagram_business_basic,instagram_business_manage_insights"

// GraphError is the error payload returned by the Instagram Graph API
type GraphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("graph API error (code %d): %s", e.Code, e.Message)
}

// graphGet issues one Graph API GET and decodes the JSON response into out.
// Non-2xx responses are decoded into a GraphError. A hung upstream call is
// bounded by the client timeout and treated as a plain failure.
func graphGet(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	client := &http.Client{
		Timeout: 15 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var errEnvelope struct {
			Error GraphError `json:"error"`
		}
		if err := json.Unmarshal(body, &errEnvelope); err == nil && errEnvelope.Error.Message != "" {
			return &errEnvelope.Error
		}
		return fmt.Errorf("graph API returned status %d: %s", resp.StatusCode, string(body))
	}

	return json.Unmarshal(body, out)
}

// ExchangeCode trades an OAuth authorization code for a short-lived token
func ExchangeCode(ctx context.Context, appID, appSecret, redirectURI, code string) (string, string, error) {
	form := url.Values{}
	form.Set("client_id", appID)
	form.Set("client_secret", appSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", redirectURI)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, "POST",
		igOAuthBase+"/oauth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{
		Timeout: 15 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			ErrorMessage string `json:"error_message"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.ErrorMessage != "" {
			return "", "", fmt.Errorf("token exchange failed: %s", errResp.ErrorMessage)
		}
		return "", "", fmt.Errorf("token exchange failed: status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string      `json:"access_token"`
		UserID      json.Number `json:"user_id"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", "", err
	}

	return tokenResp.AccessToken, tokenResp.UserID.String(), nil
}

// ExchangeLongLivedToken trades a short-lived token for a 60-day one
func ExchangeLongLivedToken(ctx context.Context, appSecret, shortToken string) (string, int64, error) {
	params := url.Values{}
	params.Set("grant_type", "ig_exchange_token")
	params.Set("client_secret", appSecret)
	params.Set("access_token", shortToken)

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := graphGet(ctx, igGraphBase+"/access_token", params, &result); err != nil {
		return "", 0, err
	}

	return result.AccessToken, result.ExpiresIn, nil
}

// RefreshAccessToken extends an unexpired long-lived token for another 60 days
func RefreshAccessToken(ctx context.Context, accessToken string) (string, int64, error) {
	params := url.Values{}
	params.Set("grant_type", "ig_refresh_token")
	params.Set("access_token", accessToken)

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := graphGet(ctx, igGraphBase+"/refresh_access_token", params, &result); err != nil {
		return "", 0, err
	}

	return result.AccessToken, result.ExpiresIn, nil
}

// InstagramProfile is the /me profile payload
type InstagramProfile struct {
	UserID            json.Number `json:"user_id"`
	Username          string      `json:"username"`
	Name              string      `json:"name"`
	AccountType       string      `json:"account_type"`
	ProfilePictureURL string      `json:"profile_picture_url"`
	Biography         string      `json:"biography,omitempty"`
	FollowersCount    int         `json:"followers_count"`
	FollowsCount      int         `json:"follows_count"`
	MediaCount        int         `json:"media_count"`
}

const profileFields = "user_id,username,name,account_type,profile_picture_url,followers_count,follows_count,media_count,biography"

// FetchProfile retrieves the authenticated account's profile
func FetchProfile(ctx context.Context, accessToken string) (*InstagramProfile, error) {
	params := url.Values{}
	params.Set("fields", profileFields)
	params.Set("access_token", accessToken)

	var profile InstagramProfile
	if err := graphGet(ctx, igGraphBase+"/me", params, &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

// AuthorizeURL builds the Instagram Business Login redirect URL
func AuthorizeURL(appID, redirectURI, state string) string {
	params := url.Values{}
	params.Set("enable_fb_login", "0")
	params.Set("force_authentication", "1")
	params.Set("client_id", appID)
	params.Set("redirect_uri", redirectURI)
	params.Set("scope", igScopes)
	params.Set("response_type", "code")
	params.Set("state", state)

	return igAuthorizeBase + "?" + params.Encode()
}
