package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"insta-metrics/models"
)

// DefaultBatchSize bounds how many insight fetches run at once. Small on
// purpose: the Graph API rate-limits per second and per token.
const DefaultBatchSize = 5

var (
	// Metrics available for every media type
	commonMediaMetrics = []string{"reach", "saves", "likes", "comments", "shares", "total_interactions"}

	// Reels additionally report a play count
	reelMediaMetrics = []string{"reach", "saves", "likes", "comments", "shares", "total_interactions", "views"}

	// Universally safe subset used for the retry when the full set fails
	degradedMediaMetrics = []string{"reach", "likes", "comments", "total_interactions"}
)

type mediaInsightEntry struct {
	Name   string `json:"name"`
	Values []struct {
		Value float64 `json:"value"`
	} `json:"values"`
	TotalValue *struct {
		Value float64 `json:"value"`
	} `json:"total_value"`
}

type mediaInsightPage struct {
	Data []mediaInsightEntry `json:"data"`
}

// metricValue extracts a number from whichever shape the API used for this
// metric/period type: first point-in-time value, else the precomputed total,
// else zero.
func metricValue(entry mediaInsightEntry) float64 {
	if len(entry.Values) > 0 {
		return entry.Values[0].Value
	}
	if entry.TotalValue != nil {
		return entry.TotalValue.Value
	}
	return 0
}

// FetchMediaInsights retrieves the requested metrics for one media item
func FetchMediaInsights(ctx context.Context, mediaID string, metrics []string, accessToken string) (map[string]float64, error) {
	params := url.Values{}
	params.Set("metric", strings.Join(metrics, ","))
	params.Set("access_token", accessToken)

	var page mediaInsightPage
	if err := graphGet(ctx, igGraphBase+"/"+mediaID+"/insights", params, &page); err != nil {
		return nil, err
	}

	insights := make(map[string]float64, len(page.Data))
	for _, entry := range page.Data {
		insights[entry.Name] = metricValue(entry)
	}

	return insights, nil
}

// FetchMediaInsightsRaw retrieves the requested metrics for one media item
// and returns the Graph response body untouched. The proxy endpoint hands
// this straight to the caller, periods, titles and paging included.
func FetchMediaInsightsRaw(ctx context.Context, mediaID string, metrics []string, accessToken string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("metric", strings.Join(metrics, ","))
	params.Set("access_token", accessToken)

	var raw json.RawMessage
	if err := graphGet(ctx, igGraphBase+"/"+mediaID+"/insights", params, &raw); err != nil {
		return nil, err
	}

	return raw, nil
}

// EnrichMediaInsights decorates each media item with its per-post metrics.
// Items are processed in sequential batches of batchSize; within a batch all
// items run concurrently. One item's failure never drops it from the result
// and never aborts its siblings: after a degraded-metric retry also fails,
// the item is emitted with empty insights. Output order follows completion
// order, not input order; the aggregation consumer does not care.
func EnrichMediaInsights(ctx context.Context, items []models.MediaItem, accessToken string, batchSize int) []models.EnrichedMedia {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	enriched := make([]models.EnrichedMedia, 0, len(items))
	var mu sync.Mutex

	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for _, item := range items[start:end] {
			wg.Add(1)
			go func(item models.MediaItem) {
				defer wg.Done()

				result := models.EnrichedMedia{
					MediaItem: item,
					Insights:  map[string]float64{},
				}

				metrics := commonMediaMetrics
				if item.IsReel() {
					metrics = reelMediaMetrics
				}

				insights, err := FetchMediaInsights(ctx, item.ID, metrics, accessToken)
				if err != nil {
					slog.Warn("Media insights failed, retrying with degraded metric set",
						"mediaID", item.ID,
						"error", err,
					)
					insights, err = FetchMediaInsights(ctx, item.ID, degradedMediaMetrics, accessToken)
				}
				if err != nil {
					slog.Warn("Media insights unavailable, keeping item without metrics",
						"mediaID", item.ID,
						"error", err,
					)
				} else {
					result.Insights = insights
				}

				mu.Lock()
				enriched = append(enriched, result)
				mu.Unlock()
			}(item)
		}
		wg.Wait()
	}

	return enriched
}
