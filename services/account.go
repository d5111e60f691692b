package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"insta-metrics/models"
)

// ErrAccountNotFound is returned when an account reference does not resolve
var ErrAccountNotFound = fmt.Errorf("account not found")

// UpsertAccount saves a connected account, keyed by (user_id, instagram_id).
// Re-connecting the same Instagram account updates the existing record
// instead of duplicating it. The access token is sealed before it is stored.
func UpsertAccount(ctx context.Context, account *models.Account) error {
	collection := database.Collection("accounts")

	sealed, err := SealToken(account.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to seal access token: %w", err)
	}

	now := time.Now()
	filter := bson.M{
		"user_id":      account.UserID,
		"instagram_id": account.InstagramID,
	}
	update := bson.M{
		"$set": bson.M{
			"username":            account.Username,
			"name":                account.Name,
			"account_type":        account.AccountType,
			"profile_picture_url": account.ProfilePictureURL,
			"biography":           account.Biography,
			"followers_count":     account.FollowersCount,
			"follows_count":       account.FollowsCount,
			"media_count":         account.MediaCount,
			"access_token":        sealed,
			"token_expires_at":    account.TokenExpiresAt,
			"updated_at":          now,
		},
		"$setOnInsert": bson.M{
			"user_id":      account.UserID,
			"instagram_id": account.InstagramID,
			"connected_at": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	result, err := collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	if result.UpsertedCount > 0 {
		slog.Info("Instagram account connected",
			"userID", account.UserID,
			"instagramID", account.InstagramID,
			"username", account.Username,
		)
	} else {
		slog.Info("Instagram account reconnected",
			"instagramID", account.InstagramID,
			"username", account.Username,
		)
	}

	return nil
}

// GetAccount loads an account owned by the given user. The access token is
// opened so callers can use it directly against the Graph API.
func GetAccount(ctx context.Context, userID, instagramID string) (*models.Account, error) {
	collection := database.Collection("accounts")

	var account models.Account
	err := collection.FindOne(ctx, bson.M{
		"user_id":      userID,
		"instagram_id": instagramID,
	}).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	token, err := OpenToken(account.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to open stored token: %w", err)
	}
	account.AccessToken = token

	return &account, nil
}

// ListAccounts returns all accounts connected by a user. Tokens stay sealed;
// the JSON encoding never exposes them either way.
func ListAccounts(ctx context.Context, userID string) ([]models.Account, error) {
	collection := database.Collection("accounts")

	cursor, err := collection.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.M{"connected_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer cursor.Close(ctx)

	accounts := []models.Account{}
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}

	return accounts, nil
}

// UpdateAccountProfile persists refreshed profile fields
func UpdateAccountProfile(ctx context.Context, userID, instagramID string, profile *InstagramProfile) error {
	collection := database.Collection("accounts")

	update := bson.M{
		"$set": bson.M{
			"username":            profile.Username,
			"name":                profile.Name,
			"account_type":        profile.AccountType,
			"profile_picture_url": profile.ProfilePictureURL,
			"biography":           profile.Biography,
			"followers_count":     profile.FollowersCount,
			"follows_count":       profile.FollowsCount,
			"media_count":         profile.MediaCount,
			"updated_at":          time.Now(),
		},
	}

	_, err := collection.UpdateOne(ctx, bson.M{
		"user_id":      userID,
		"instagram_id": instagramID,
	}, update)
	if err != nil {
		return fmt.Errorf("failed to update account profile: %w", err)
	}

	return nil
}

// UpdateAccountToken persists a refreshed access token and its expiry
func UpdateAccountToken(ctx context.Context, userID, instagramID, token string, expiresAt time.Time) error {
	collection := database.Collection("accounts")

	sealed, err := SealToken(token)
	if err != nil {
		return fmt.Errorf("failed to seal access token: %w", err)
	}

	_, err = collection.UpdateOne(ctx,
		bson.M{"user_id": userID, "instagram_id": instagramID},
		bson.M{"$set": bson.M{
			"access_token":     sealed,
			"token_expires_at": expiresAt,
			"updated_at":       time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update account token: %w", err)
	}

	return nil
}

// DeleteAccount disconnects an Instagram account. Snapshot history is kept;
// retention is not this service's concern.
func DeleteAccount(ctx context.Context, userID, instagramID string) error {
	collection := database.Collection("accounts")

	result, err := collection.DeleteOne(ctx, bson.M{
		"user_id":      userID,
		"instagram_id": instagramID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrAccountNotFound
	}

	slog.Info("Instagram account disconnected", "userID", userID, "instagramID", instagramID)
	return nil
}

// ExpireAccountTokens marks every stored token for an Instagram user as
// expired. Used when Meta notifies us the user deauthorized the app.
func ExpireAccountTokens(ctx context.Context, instagramID string) error {
	collection := database.Collection("accounts")

	_, err := collection.UpdateMany(ctx,
		bson.M{"instagram_id": instagramID},
		bson.M{"$set": bson.M{
			"token_expires_at": time.Now(),
			"updated_at":       time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to expire account tokens: %w", err)
	}

	return nil
}

// PurgeAccountData removes an Instagram user's accounts and snapshot history.
// Used for Meta data deletion requests.
func PurgeAccountData(ctx context.Context, instagramID string) error {
	if _, err := database.Collection("accounts").DeleteMany(ctx, bson.M{"instagram_id": instagramID}); err != nil {
		return fmt.Errorf("failed to delete accounts: %w", err)
	}
	if _, err := database.Collection("snapshots").DeleteMany(ctx, bson.M{"account_id": instagramID}); err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}

	slog.Info("Account data purged", "instagramID", instagramID)
	return nil
}
