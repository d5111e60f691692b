package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account represents a connected Instagram Business/Creator account
type Account struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID string             `bson:"user_id" json:"user_id"` // owning dashboard user

	// Instagram identity
	InstagramID string `bson:"instagram_id" json:"id"` // numeric Graph API user ID
	Username    string `bson:"username" json:"username"`
	Name        string `bson:"name" json:"name"`
	AccountType string `bson:"account_type" json:"account_type"` // BUSINESS or MEDIA_CREATOR

	// Profile snapshot from the last refresh
	ProfilePictureURL string `bson:"profile_picture_url,omitempty" json:"profile_picture_url,omitempty"`
	Biography         string `bson:"biography,omitempty" json:"biography,omitempty"`
	FollowersCount    int    `bson:"followers_count" json:"followers_count"`
	FollowsCount      int    `bson:"follows_count" json:"follows_count"`
	MediaCount        int    `bson:"media_count" json:"media_count"`

	// Long-lived access token, sealed at rest. Never serialized to callers.
	AccessToken    string    `bson:"access_token" json:"-"`
	TokenExpiresAt time.Time `bson:"token_expires_at" json:"token_expires_at"`

	ConnectedAt time.Time `bson:"connected_at" json:"connected_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// TokenValid reports whether the stored access token is still usable
func (a *Account) TokenValid() bool {
	return time.Now().Before(a.TokenExpiresAt)
}
