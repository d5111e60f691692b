package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insta-metrics/models"
)

func TestClampMediaLimit(t *testing.T) {
	assert.Equal(t, DefaultMediaLimit, ClampMediaLimit(0))
	assert.Equal(t, DefaultMediaLimit, ClampMediaLimit(-3))
	assert.Equal(t, 10, ClampMediaLimit(10))
	assert.Equal(t, MaxMediaLimit, ClampMediaLimit(500))
}

func TestGetDetailedMediaTotalFailureReturnsWellFormedResult(t *testing.T) {
	var insightCalls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/insights") {
			atomic.AddInt64(&insightCalls, 1)
		}
		writeGraphError(w, 190, "token expired")
	}))
	defer server.Close()

	oldBase := igGraphBase
	igGraphBase = server.URL
	defer func() { igGraphBase = oldBase }()

	snapshotWrites := int64(0)
	oldSave := saveSnapshot
	saveSnapshot = func(ctx context.Context, snapshot models.Snapshot) error {
		atomic.AddInt64(&snapshotWrites, 1)
		return nil
	}
	defer func() { saveSnapshot = oldSave }()

	account := testAccount()
	result := GetDetailedMedia(context.Background(), account, 10)

	require.NotNil(t, result, "the operation never fails, whatever the upstream does")
	assert.NotNil(t, result.Media)
	assert.Empty(t, result.Media)
	assert.Equal(t, 0, result.FetchedCount)
	assert.Equal(t, account.FollowersCount, result.FollowersCount)

	// An empty resolution short-circuits: no enrichment, no snapshot
	assert.EqualValues(t, 0, atomic.LoadInt64(&insightCalls))
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 0, atomic.LoadInt64(&snapshotWrites))
}

func TestGetDetailedMediaEnrichesAndSnapshots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/insights") {
			writeMediaInsights(w, map[string]float64{"reach": 100, "likes": 10})
			return
		}
		writeMediaPage(w, []models.MediaItem{
			{ID: "m1", LikeCount: 10, CommentsCount: 1},
			{ID: "m2", LikeCount: 20, CommentsCount: 2},
		})
	}))
	defer server.Close()

	oldBase := igGraphBase
	igGraphBase = server.URL
	defer func() { igGraphBase = oldBase }()

	saved := make(chan models.Snapshot, 1)
	oldSave := saveSnapshot
	saveSnapshot = func(ctx context.Context, snapshot models.Snapshot) error {
		saved <- snapshot
		return nil
	}
	defer func() { saveSnapshot = oldSave }()

	result := GetDetailedMedia(context.Background(), testAccount(), 10)

	require.Len(t, result.Media, 2)
	assert.Equal(t, 2, result.FetchedCount)
	assert.Equal(t, 1000, result.FollowersCount)
	for _, item := range result.Media {
		assert.Equal(t, 100.0, item.Insights["reach"])
	}

	// The snapshot write is fired off the request path but does happen
	select {
	case snapshot := <-saved:
		assert.Equal(t, 30, snapshot.TotalLikes)
		assert.Equal(t, 3, snapshot.TotalComments)
		assert.InDelta(t, 1.65, snapshot.AvgEngagement, 1e-9)
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot was never persisted")
	}
}
