package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"insta-metrics/models"
)

// snapshotDate formats the calendar-day key for a snapshot row
func snapshotDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// BuildDailySnapshot derives the day's summary statistics from a set of
// enriched items. The engagement rate divides total likes+comments by item
// count and then by follower count; that formula is what downstream
// consumers already expect, so it stays as is. A zero follower count yields
// zero engagement instead of a division error.
func BuildDailySnapshot(account *models.Account, items []models.EnrichedMedia, now time.Time) models.Snapshot {
	totalLikes := 0
	totalComments := 0
	totalReach := 0.0
	for _, item := range items {
		totalLikes += item.LikeCount
		totalComments += item.CommentsCount
		totalReach += item.Insights["reach"]
	}

	count := len(items)
	if count < 1 {
		count = 1
	}

	avgEngagement := 0.0
	if account.FollowersCount > 0 {
		avgEngagement = float64(totalLikes+totalComments) / float64(count) / float64(account.FollowersCount) * 100
	}

	return models.Snapshot{
		AccountID:      account.InstagramID,
		Date:           snapshotDate(now),
		FollowersCount: account.FollowersCount,
		FollowsCount:   account.FollowsCount,
		MediaCount:     account.MediaCount,
		AvgEngagement:  avgEngagement,
		AvgReach:       totalReach / float64(count),
		TotalLikes:     totalLikes,
		TotalComments:  totalComments,
		CapturedAt:     now,
	}
}

// applySnapshotUpdate performs the keyed $set upsert shared by the full
// and partial snapshot writers. Function var so tests can substitute a
// store; there is no storage interface here.
var applySnapshotUpdate = func(ctx context.Context, filter, fields bson.M) error {
	collection := database.Collection("snapshots")

	opts := options.Update().SetUpsert(true)
	_, err := collection.UpdateOne(ctx, filter, bson.M{"$set": fields}, opts)
	return err
}

// upsertDailySnapshot writes one snapshot row keyed by (account, date).
// Repeat writes on the same day overwrite; the latest numbers win.
func upsertDailySnapshot(ctx context.Context, snapshot models.Snapshot) error {
	filter := bson.M{"account_id": snapshot.AccountID, "date": snapshot.Date}
	fields := bson.M{
		"account_id":      snapshot.AccountID,
		"date":            snapshot.Date,
		"followers_count": snapshot.FollowersCount,
		"follows_count":   snapshot.FollowsCount,
		"media_count":     snapshot.MediaCount,
		"avg_engagement":  snapshot.AvgEngagement,
		"avg_reach":       snapshot.AvgReach,
		"total_likes":     snapshot.TotalLikes,
		"total_comments":  snapshot.TotalComments,
		"captured_at":     snapshot.CapturedAt,
	}

	if err := applySnapshotUpdate(ctx, filter, fields); err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	return nil
}

// saveSnapshot is swapped out in tests; there is no storage interface here
var saveSnapshot = upsertDailySnapshot

// AggregateAndSnapshot computes the day's summary from enriched items and
// persists it. Analytics history is best-effort: any failure is logged and
// absorbed, never surfaced to the request that triggered it.
func AggregateAndSnapshot(ctx context.Context, account *models.Account, items []models.EnrichedMedia) {
	snapshot := BuildDailySnapshot(account, items, time.Now())

	if err := saveSnapshot(ctx, snapshot); err != nil {
		slog.Error("Failed to persist daily snapshot",
			"accountID", account.InstagramID,
			"date", snapshot.Date,
			"error", err,
		)
		return
	}

	slog.Info("Daily snapshot saved",
		"accountID", account.InstagramID,
		"date", snapshot.Date,
		"avgEngagement", snapshot.AvgEngagement,
		"avgReach", snapshot.AvgReach,
	)
}

// RecordProfileCounts upserts only the profile counters into today's
// snapshot, leaving averages from an earlier enrichment run intact.
// Best-effort like the full writer.
func RecordProfileCounts(ctx context.Context, instagramID string, followers, follows, media int) {
	now := time.Now()
	filter := bson.M{"account_id": instagramID, "date": snapshotDate(now)}
	fields := bson.M{
		"account_id":      instagramID,
		"date":            snapshotDate(now),
		"followers_count": followers,
		"follows_count":   follows,
		"media_count":     media,
		"captured_at":     now,
	}

	if err := applySnapshotUpdate(ctx, filter, fields); err != nil {
		slog.Error("Failed to record profile counts", "accountID", instagramID, "error", err)
	}
}

// GetSnapshots returns an account's snapshot history, newest first
func GetSnapshots(ctx context.Context, instagramID string, days int) ([]models.Snapshot, error) {
	collection := database.Collection("snapshots")

	filter := bson.M{"account_id": instagramID}
	if days > 0 {
		since := snapshotDate(time.Now().AddDate(0, 0, -days))
		filter["date"] = bson.M{"$gte": since}
	}

	cursor, err := collection.Find(ctx, filter, options.Find().SetSort(bson.M{"date": -1}))
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	snapshots := []models.Snapshot{}
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode snapshots: %w", err)
	}

	return snapshots, nil
}
