package handlers

import (
	"log/slog"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"insta-metrics/config"
	"insta-metrics/models"
	"insta-metrics/services"
)

// InstagramLogin starts the Instagram Business Login flow for the current
// dashboard user
func InstagramLogin(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)

		state := services.NewOAuthState(userID)
		authURL := services.AuthorizeURL(cfg.InstagramAppID, cfg.RedirectURI(), state)

		slog.Info("Redirecting to Instagram OAuth", "userID", userID)
		return c.Redirect(authURL, fiber.StatusFound)
	}
}

// InstagramCallback finishes the OAuth flow: state check, code exchange,
// long-lived token exchange, profile fetch, account upsert. Failures land
// back on the dashboard with an error query parameter, the way the frontend
// expects them.
func InstagramCallback(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if errParam := c.Query("error"); errParam != "" {
			desc := c.Query("error_description")
			slog.Error("OAuth error", "error", errParam, "description", desc)
			if desc == "" {
				desc = errParam
			}
			return redirectWithError(c, desc)
		}

		code := c.Query("code")
		if code == "" {
			return redirectWithError(c, "No authorization code received")
		}

		userID, ok := services.ConsumeOAuthState(c.Query("state"))
		if !ok {
			slog.Warn("OAuth callback with unknown or expired state")
			return redirectWithError(c, "Login session expired, please try again")
		}

		ctx := c.Context()

		shortToken, tokenUserID, err := services.ExchangeCode(
			ctx, cfg.InstagramAppID, cfg.InstagramAppSecret, cfg.RedirectURI(), code)
		if err != nil {
			slog.Error("OAuth code exchange failed", "error", err)
			return redirectWithError(c, err.Error())
		}

		longToken, expiresIn, err := services.ExchangeLongLivedToken(ctx, cfg.InstagramAppSecret, shortToken)
		if err != nil {
			slog.Error("Long-lived token exchange failed", "error", err)
			return redirectWithError(c, err.Error())
		}

		profile, err := services.FetchProfile(ctx, longToken)
		if err != nil {
			slog.Error("Profile fetch failed", "error", err)
			return redirectWithError(c, err.Error())
		}

		instagramID := profile.UserID.String()
		if instagramID == "" {
			instagramID = tokenUserID
		}

		account := &models.Account{
			UserID:            userID,
			InstagramID:       instagramID,
			Username:          profile.Username,
			Name:              profile.Name,
			AccountType:       profile.AccountType,
			ProfilePictureURL: profile.ProfilePictureURL,
			Biography:         profile.Biography,
			FollowersCount:    profile.FollowersCount,
			FollowsCount:      profile.FollowsCount,
			MediaCount:        profile.MediaCount,
			AccessToken:       longToken,
			TokenExpiresAt:    time.Now().Add(time.Duration(expiresIn) * time.Second),
		}
		if account.Name == "" {
			account.Name = profile.Username
		}

		if err := services.UpsertAccount(ctx, account); err != nil {
			slog.Error("Failed to save connected account", "error", err)
			return redirectWithError(c, "Failed to save account")
		}

		return c.Redirect("/?connected="+url.QueryEscape(profile.Username), fiber.StatusFound)
	}
}

func redirectWithError(c *fiber.Ctx, message string) error {
	return c.Redirect("/?error="+url.QueryEscape(message), fiber.StatusFound)
}
