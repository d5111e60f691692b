package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session represents an authenticated dashboard session
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`

	IPAddress string `bson:"ip_address" json:"ip_address"`
	UserAgent string `bson:"user_agent" json:"user_agent"`

	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	LastAccessed time.Time `bson:"last_accessed" json:"last_accessed"`
	ExpiresAt    time.Time `bson:"expires_at" json:"expires_at"`
	IsActive     bool      `bson:"is_active" json:"is_active"`
}
