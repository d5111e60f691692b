package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"insta-metrics/models"
)

// Field-set candidates, most complete first. media_url is intermittently
// unavailable for some media types and token kinds, so the fallback set
// drops it rather than losing the whole listing.
const (
	fullMediaFields = "id,caption,media_type,media_product_type,media_url,thumbnail_url,permalink,timestamp,like_count,comments_count"
	safeMediaFields = "id,caption,media_type,media_product_type,thumbnail_url,permalink,timestamp,like_count,comments_count"
)

type mediaPage struct {
	Data []models.MediaItem `json:"data"`
}

// mediaEndpoints returns the candidate listing endpoints in priority order.
// The numeric-ID endpoint comes first: some Business Login tokens resolve
// the /me alias to the wrong user.
func mediaEndpoints(instagramID string) []string {
	return []string{
		fmt.Sprintf("%s/%s/media", igGraphBase, instagramID),
		igGraphBase + "/me/media",
	}
}

// ResolveRecentMedia tries each (endpoint, field set) combination in order
// and returns the first listing that succeeds, plus the endpoint that served
// it. Combinations are never attempted concurrently; the goal is first
// success, not fastest success. When every combination fails the result is
// an empty list and the collected attempt errors, not a hard error: callers
// must render "no data available now".
func ResolveRecentMedia(ctx context.Context, account *models.Account, limit int) ([]models.MediaItem, string, []models.FetchAttempt) {
	attempts := []models.FetchAttempt{}

	for _, endpoint := range mediaEndpoints(account.InstagramID) {
		for _, fields := range []string{fullMediaFields, safeMediaFields} {
			params := url.Values{}
			params.Set("fields", fields)
			params.Set("limit", strconv.Itoa(limit))
			params.Set("access_token", account.AccessToken)

			var page mediaPage
			err := graphGet(ctx, endpoint, params, &page)
			if err == nil {
				slog.Info("Media listing resolved",
					"endpoint", endpoint,
					"items", len(page.Data),
				)
				return page.Data, endpoint, nil
			}

			attempt := models.FetchAttempt{
				Endpoint: endpoint,
				Fields:   fields,
				Message:  err.Error(),
			}
			if graphErr, ok := err.(*GraphError); ok {
				attempt.Message = graphErr.Message
				attempt.Code = graphErr.Code
			}
			attempts = append(attempts, attempt)

			slog.Warn("Media listing attempt failed",
				"endpoint", endpoint,
				"fields", fields,
				"error", err,
			)
		}
	}

	slog.Error("All media listing attempts failed",
		"instagramID", account.InstagramID,
		"attempts", len(attempts),
	)
	return []models.MediaItem{}, "", attempts
}
