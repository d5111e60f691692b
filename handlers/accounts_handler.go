package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"insta-metrics/models"
	"insta-metrics/services"
)

// requireAccount resolves the :id route param to an account owned by the
// authenticated user. A nil account means the 404 response was already
// written; unknown accounts short-circuit before any Graph API call.
func requireAccount(c *fiber.Ctx) (*models.Account, error) {
	userID, _ := c.Locals("user_id").(string)

	account, err := services.GetAccount(c.Context(), userID, c.Params("id"))
	if err != nil {
		if err == services.ErrAccountNotFound {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Account not found",
			})
		}
		slog.Error("Failed to load account", "error", err, "accountID", c.Params("id"))
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load account",
		})
	}

	return account, nil
}

type accountListEntry struct {
	models.Account
	TokenValid bool `json:"token_valid"`
}

// GetAccounts lists the user's connected accounts without exposing tokens
func GetAccounts(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	accounts, err := services.ListAccounts(c.Context(), userID)
	if err != nil {
		slog.Error("Failed to list accounts", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve accounts",
		})
	}

	entries := make([]accountListEntry, 0, len(accounts))
	for _, account := range accounts {
		entries = append(entries, accountListEntry{
			Account:    account,
			TokenValid: account.TokenValid(),
		})
	}

	return c.JSON(entries)
}

// DisconnectAccount removes a connected account
func DisconnectAccount(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	err := services.DeleteAccount(c.Context(), userID, c.Params("id"))
	if err != nil {
		if err == services.ErrAccountNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Account not found",
			})
		}
		slog.Error("Failed to delete account", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete account",
		})
	}

	return c.JSON(fiber.Map{"ok": true})
}

// RefreshProfile re-fetches the account's profile from the Graph API,
// persists it, and records today's profile counters in the snapshot history
func RefreshProfile(c *fiber.Ctx) error {
	account, err := requireAccount(c)
	if account == nil {
		return err
	}

	profile, err := services.FetchProfile(c.Context(), account.AccessToken)
	if err != nil {
		return graphErrorResponse(c, err)
	}

	if err := services.UpdateAccountProfile(c.Context(), account.UserID, account.InstagramID, profile); err != nil {
		slog.Error("Failed to persist refreshed profile", "error", err)
	}

	// History capture is best-effort and off the request path
	go services.RecordProfileCounts(
		context.Background(), account.InstagramID,
		profile.FollowersCount, profile.FollowsCount, profile.MediaCount,
	)

	return c.JSON(profile)
}

// RefreshAccountToken extends the account's long-lived token
func RefreshAccountToken(c *fiber.Ctx) error {
	account, err := requireAccount(c)
	if account == nil {
		return err
	}

	newToken, expiresIn, err := services.RefreshAccessToken(c.Context(), account.AccessToken)
	if err != nil {
		return graphErrorResponse(c, err)
	}

	expiresAt := time.Now().Add(time.Duration(expiresIn) * time.Second)
	if err := services.UpdateAccountToken(c.Context(), account.UserID, account.InstagramID, newToken, expiresAt); err != nil {
		slog.Error("Failed to persist refreshed token", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save refreshed token",
		})
	}

	return c.JSON(fiber.Map{"ok": true, "expires_in": expiresIn})
}

// graphErrorResponse maps an upstream Graph API failure onto the response
func graphErrorResponse(c *fiber.Ctx, err error) error {
	slog.Error("Instagram API error", "error", err)

	if graphErr, ok := err.(*services.GraphError); ok {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": graphErr.Message,
			"type":  graphErr.Type,
			"code":  graphErr.Code,
		})
	}

	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
		"error": err.Error(),
	})
}
