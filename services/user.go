package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"insta-metrics/models"
)

// CreateUser creates a new dashboard user with a hashed password
func CreateUser(ctx context.Context, email, username, password string) (*models.User, error) {
	collection := database.Collection("users")

	existing := collection.FindOne(ctx, bson.M{"email": email})
	if existing.Err() != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("user already exists with this email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := collection.InsertOne(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("User created", "userID", user.ID.Hex(), "email", email)
	return user, nil
}

// GetUserByEmail looks up a user for login
func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	collection := database.Collection("users")

	var user models.User
	err := collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// UpdateUserLastLogin records a successful login
func UpdateUserLastLogin(ctx context.Context, userID string) error {
	collection := database.Collection("users")

	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}

	_, err = collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"last_login": time.Now(), "updated_at": time.Now()}},
	)
	return err
}

// EnsureBootstrapUser creates the configured admin user if it does not exist
// yet. Lets a fresh deployment log in without a manual Mongo insert.
func EnsureBootstrapUser(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	collection := database.Collection("users")
	count, err := collection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return fmt.Errorf("failed to check bootstrap user: %w", err)
	}
	if count > 0 {
		return nil
	}

	_, err = CreateUser(ctx, email, "admin", password)
	return err
}
