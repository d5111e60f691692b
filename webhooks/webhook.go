package webhooks

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"insta-metrics/config"
	"insta-metrics/services"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config) {
	webhook := app.Group("/webhook")

	// Webhook verification endpoint
	webhook.Get("/", verifyWebhook(cfg))

	// Webhook event handler
	webhook.Post("/", handleWebhookEvent())
}

// verifyWebhook handles Meta webhook verification
func verifyWebhook(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mode := c.Query("hub.mode")
		token := c.Query("hub.verify_token")
		challenge := c.Query("hub.challenge")

		if mode == "subscribe" && token == cfg.VerifyToken {
			slog.Info("Webhook verified successfully")
			return c.SendString(challenge)
		}

		slog.Warn("Webhook verification failed", "mode", mode, "token", token)
		return c.SendStatus(fiber.StatusForbidden)
	}
}

// handleWebhookEvent processes incoming webhook events
func handleWebhookEvent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body WebhookEvent
		if err := c.BodyParser(&body); err != nil {
			slog.Error("Failed to parse webhook body", "error", err)
			return c.SendStatus(fiber.StatusBadRequest)
		}

		if body.Object != "instagram" {
			return c.SendStatus(fiber.StatusNotFound)
		}

		// Process webhook asynchronously; Meta only wants a fast ack
		go processWebhookEvent(body)

		return c.SendString("EVENT_RECEIVED")
	}
}

// processWebhookEvent handles the webhook processing in a separate goroutine
func processWebhookEvent(body WebhookEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, entry := range body.Entry {
		for _, change := range entry.Changes {
			slog.Info("Processing webhook change", "instagramID", entry.ID, "field", change.Field)

			switch change.Field {
			case "deauthorize":
				// The user revoked the app; stored tokens are dead
				if err := services.ExpireAccountTokens(ctx, entry.ID); err != nil {
					slog.Error("Failed to expire tokens after deauthorize", "error", err, "instagramID", entry.ID)
				}
			case "data_deletion":
				if err := services.PurgeAccountData(ctx, entry.ID); err != nil {
					slog.Error("Failed to purge account data", "error", err, "instagramID", entry.ID)
				}
			default:
				slog.Info("Ignoring webhook field", "field", change.Field)
			}
		}
	}
}
