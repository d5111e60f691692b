package services

import (
	"context"

	"insta-metrics/models"
)

const (
	// DefaultMediaLimit is how many recent posts a listing returns by default
	DefaultMediaLimit = 25
	// MaxMediaLimit caps a caller-supplied limit
	MaxMediaLimit = 50
)

// DetailedMediaResult is the shaped response of the detailed media operation
type DetailedMediaResult struct {
	Media          []models.EnrichedMedia `json:"media"`
	FollowersCount int                    `json:"followers_count"`
	FetchedCount   int                    `json:"fetched_count"`
}

// ClampMediaLimit normalizes a caller-supplied limit into [1, MaxMediaLimit]
func ClampMediaLimit(limit int) int {
	if limit <= 0 {
		return DefaultMediaLimit
	}
	if limit > MaxMediaLimit {
		return MaxMediaLimit
	}
	return limit
}

// GetDetailedMedia resolves the account's recent posts, enriches them with
// per-post insights, and kicks off the daily snapshot without waiting for
// it. It never fails: whatever the upstream does, the caller gets a
// well-formed (possibly empty) result.
func GetDetailedMedia(ctx context.Context, account *models.Account, limit int) *DetailedMediaResult {
	limit = ClampMediaLimit(limit)

	items, _, _ := ResolveRecentMedia(ctx, account, limit)
	if len(items) == 0 {
		return &DetailedMediaResult{
			Media:          []models.EnrichedMedia{},
			FollowersCount: account.FollowersCount,
			FetchedCount:   0,
		}
	}

	enriched := EnrichMediaInsights(ctx, items, account.AccessToken, DefaultBatchSize)

	// Snapshot persistence is decoupled from request latency
	go AggregateAndSnapshot(context.Background(), account, enriched)

	return &DetailedMediaResult{
		Media:          enriched,
		FollowersCount: account.FollowersCount,
		FetchedCount:   len(enriched),
	}
}
