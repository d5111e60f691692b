package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAccountInsights(w http.ResponseWriter, names ...string) {
	data := []map[string]interface{}{}
	for _, name := range names {
		data = append(data, map[string]interface{}{
			"name":   name,
			"period": "day",
			"values": []map[string]interface{}{{"value": 123}},
		})
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func TestFetchAccountInsightsBulkSuccess(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		writeAccountInsights(w, strings.Split(r.URL.Query().Get("metric"), ",")...)
	}))
	defer server.Close()

	oldBase := igGraphBase
	igGraphBase = server.URL
	defer func() { igGraphBase = oldBase }()

	insights, err := FetchAccountInsights(context.Background(), "token", AccountInsightsQuery{})

	require.NoError(t, err)
	assert.Len(t, insights, 3, "the Creator-safe default set has three metrics")
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls), "no per-metric retries on bulk success")
}

func TestFetchAccountInsightsPerMetricFallbackMerges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metric := r.URL.Query().Get("metric")
		switch {
		case strings.Contains(metric, ","):
			// One unsupported metric sinks the whole bulk call
			writeGraphError(w, 100, "views is not supported for this account type")
		case metric == "views":
			writeGraphError(w, 100, "views is not supported for this account type")
		default:
			writeAccountInsights(w, metric)
		}
	}))
	defer server.Close()

	oldBase := igGraphBase
	igGraphBase = server.URL
	defer func() { igGraphBase = oldBase }()

	insights, err := FetchAccountInsights(context.Background(), "token", AccountInsightsQuery{})

	require.NoError(t, err, "one bad metric must not sink the merged result")
	require.Len(t, insights, 2)

	names := []string{insights[0].Name, insights[1].Name}
	assert.Contains(t, names, "reach")
	assert.Contains(t, names, "accounts_engaged")
	assert.NotContains(t, names, "views")
}

func TestFetchAccountInsightsAllMetricsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeGraphError(w, 190, "Invalid OAuth access token")
	}))
	defer server.Close()

	oldBase := igGraphBase
	igGraphBase = server.URL
	defer func() { igGraphBase = oldBase }()

	_, err := FetchAccountInsights(context.Background(), "token", AccountInsightsQuery{})

	require.Error(t, err)
	graphErr, ok := err.(*GraphError)
	require.True(t, ok, "the original bulk error surfaces when nothing merges")
	assert.Equal(t, 190, graphErr.Code)
}

func TestFetchAccountInsightsPassesWindow(t *testing.T) {
	var gotSince, gotUntil, gotPeriod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSince = r.URL.Query().Get("since")
		gotUntil = r.URL.Query().Get("until")
		gotPeriod = r.URL.Query().Get("period")
		writeAccountInsights(w, "reach")
	}))
	defer server.Close()

	oldBase := igGraphBase
	igGraphBase = server.URL
	defer func() { igGraphBase = oldBase }()

	_, err := FetchAccountInsights(context.Background(), "token", AccountInsightsQuery{
		Metrics: "reach",
		Period:  "week",
		Since:   "1700000000",
		Until:   "1700600000",
	})

	require.NoError(t, err)
	assert.Equal(t, "1700000000", gotSince)
	assert.Equal(t, "1700600000", gotUntil)
	assert.Equal(t, "week", gotPeriod)
}
