package handlers

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"insta-metrics/services"
)

// GetSnapshots returns the account's daily analytics history, newest first
func GetSnapshots(c *fiber.Ctx) error {
	account, err := requireAccount(c)
	if account == nil {
		return err
	}

	days, _ := strconv.Atoi(c.Query("days", "30"))
	if days < 0 {
		days = 30
	}

	snapshots, err := services.GetSnapshots(c.Context(), account.InstagramID, days)
	if err != nil {
		slog.Error("Failed to load snapshots", "error", err, "accountID", account.InstagramID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve snapshots",
		})
	}

	return c.JSON(fiber.Map{
		"total":     len(snapshots),
		"snapshots": snapshots,
	})
}
