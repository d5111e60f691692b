package services

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
)

// Creator accounts do not support follows_and_unfollows or profile_views, so
// the default set sticks to metrics both account types can serve.
const defaultAccountMetrics = "reach,views,accounts_engaged"

// AccountInsight is one account-level insight series. Values stay untyped
// because demographic breakdowns nest objects where counters put numbers.
type AccountInsight struct {
	Name        string                `json:"name"`
	Period      string                `json:"period,omitempty"`
	Title       string                `json:"title,omitempty"`
	Description string                `json:"description,omitempty"`
	ID          string                `json:"id,omitempty"`
	Values      []AccountInsightValue `json:"values,omitempty"`
	TotalValue  interface{}           `json:"total_value,omitempty"`
}

// AccountInsightValue is one point in an insight series
type AccountInsightValue struct {
	Value   interface{} `json:"value"`
	EndTime string      `json:"end_time,omitempty"`
}

type insightPage struct {
	Data []AccountInsight `json:"data"`
}

// AccountInsightsQuery narrows an account insights request
type AccountInsightsQuery struct {
	Metrics string // comma-separated; empty means the Creator-safe default
	Period  string
	Since   string
	Until   string
}

// FetchAccountInsights retrieves account-level insights. If one unsupported
// metric sinks the bulk call, each metric is retried individually and the
// successes are merged; the bulk error surfaces only when every metric fails.
func FetchAccountInsights(ctx context.Context, accessToken string, query AccountInsightsQuery) ([]AccountInsight, error) {
	metrics := query.Metrics
	if metrics == "" {
		metrics = defaultAccountMetrics
	}
	period := query.Period
	if period == "" {
		period = "day"
	}

	params := url.Values{}
	params.Set("metric", metrics)
	params.Set("period", period)
	params.Set("access_token", accessToken)
	if query.Since != "" {
		params.Set("since", query.Since)
	}
	if query.Until != "" {
		params.Set("until", query.Until)
	}

	var page insightPage
	err := graphGet(ctx, igGraphBase+"/me/insights", params, &page)
	if err == nil {
		return page.Data, nil
	}

	slog.Warn("Bulk insights call failed, retrying metrics individually",
		"metrics", metrics,
		"error", err,
	)

	merged := []AccountInsight{}
	for _, metric := range strings.Split(metrics, ",") {
		single := url.Values{}
		for key, vals := range params {
			single[key] = vals
		}
		single.Set("metric", metric)

		var metricPage insightPage
		if innerErr := graphGet(ctx, igGraphBase+"/me/insights", single, &metricPage); innerErr != nil {
			slog.Warn("Metric unavailable for this account", "metric", metric, "error", innerErr)
			continue
		}
		merged = append(merged, metricPage.Data...)
	}

	if len(merged) > 0 {
		return merged, nil
	}

	return nil, err
}

// FetchDemographics retrieves audience demographic breakdowns
func FetchDemographics(ctx context.Context, accessToken string) ([]AccountInsight, error) {
	params := url.Values{}
	params.Set("metric", "engaged_audience_demographics,reached_audience_demographics,follower_demographics")
	params.Set("period", "lifetime")
	params.Set("metric_type", "total_value")
	params.Set("timeframe", "last_30_days")
	params.Set("access_token", accessToken)

	var page insightPage
	if err := graphGet(ctx, igGraphBase+"/me/insights", params, &page); err != nil {
		return nil, err
	}

	return page.Data, nil
}
