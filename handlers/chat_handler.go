package handlers

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"insta-metrics/config"
	"insta-metrics/services"
)

type ChatRequest struct {
	AccountID string `json:"account_id"`
	Message   string `json:"message"`
}

// Chat proxies a question about a connected account to the AI assistant,
// with the account's current metrics as context
func Chat(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ChatRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		if req.AccountID == "" || req.Message == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "account_id and message are required",
			})
		}

		userID, _ := c.Locals("user_id").(string)

		account, err := services.GetAccount(c.Context(), userID, req.AccountID)
		if err != nil {
			if err == services.ErrAccountNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "Account not found",
				})
			}
			slog.Error("Failed to load account for chat", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to load account",
			})
		}

		history, err := services.GetChatHistory(c.Context(), userID, account.InstagramID, 20)
		if err != nil {
			slog.Error("Failed to load chat history", "error", err)
			history = nil
		}

		reply, err := services.GetAssistantReply(
			c.Context(), cfg.AnthropicAPIKey, cfg.ClaudeModel, account, history, req.Message)
		if err != nil {
			slog.Error("Assistant request failed", "error", err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Assistant unavailable",
			})
		}

		if err := services.SaveChatMessage(c.Context(), userID, account.InstagramID, "user", req.Message); err != nil {
			slog.Error("Failed to save chat message", "error", err)
		}
		if err := services.SaveChatMessage(c.Context(), userID, account.InstagramID, "assistant", reply); err != nil {
			slog.Error("Failed to save chat message", "error", err)
		}

		return c.JSON(fiber.Map{"reply": reply})
	}
}

// GetChatHistory returns recent assistant conversation turns for an account
func GetChatHistory(c *fiber.Ctx) error {
	accountID := c.Query("account_id")
	if accountID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "account_id is required",
		})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	userID, _ := c.Locals("user_id").(string)

	messages, err := services.GetChatHistory(c.Context(), userID, accountID, limit)
	if err != nil {
		slog.Error("Failed to load chat history", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve chat history",
		})
	}

	return c.JSON(fiber.Map{
		"total":    len(messages),
		"messages": messages,
	})
}
