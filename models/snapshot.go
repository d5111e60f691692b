package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Snapshot is one aggregated analytics record per account per calendar day.
// Later writes on the same day overwrite the earlier ones.
type Snapshot struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	AccountID string             `bson:"account_id" json:"account_id"`
	Date      string             `bson:"date" json:"date"` // YYYY-MM-DD

	FollowersCount int `bson:"followers_count" json:"followers_count"`
	FollowsCount   int `bson:"follows_count" json:"follows_count"`
	MediaCount     int `bson:"media_count" json:"media_count"`

	AvgEngagement float64 `bson:"avg_engagement" json:"avg_engagement"` // percent
	AvgReach      float64 `bson:"avg_reach" json:"avg_reach"`
	TotalLikes    int     `bson:"total_likes" json:"total_likes"`
	TotalComments int     `bson:"total_comments" json:"total_comments"`

	CapturedAt time.Time `bson:"captured_at" json:"captured_at"`
}
