package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"insta-metrics/services"
)

// GetMedia lists the account's recent posts. The underlying resolver walks
// an endpoint/field-set cascade; when every combination fails the response
// is an empty but valid listing so the frontend does not crash.
func GetMedia(c *fiber.Ctx) error {
	account, err := requireAccount(c)
	if account == nil {
		return err
	}

	limit, _ := strconv.Atoi(c.Query("limit", "25"))
	limit = services.ClampMediaLimit(limit)

	items, _, _ := services.ResolveRecentMedia(c.Context(), account, limit)

	return c.JSON(fiber.Map{"data": items})
}

// GetDetailedMedia returns recent posts enriched with per-post insight
// metrics, plus context counters
func GetDetailedMedia(c *fiber.Ctx) error {
	account, err := requireAccount(c)
	if account == nil {
		return err
	}

	limit, _ := strconv.Atoi(c.Query("limit", "25"))

	result := services.GetDetailedMedia(c.Context(), account, limit)

	return c.JSON(result)
}

// GetMediaInsights proxies the full metric set for one media item. The
// Graph payload passes through untouched so the insight entries keep the
// same shape as the other passthrough endpoints.
func GetMediaInsights(c *fiber.Ctx) error {
	account, err := requireAccount(c)
	if account == nil {
		return err
	}

	metrics := []string{"reach", "views", "saves", "shares", "likes", "comments", "total_interactions"}
	insights, err := services.FetchMediaInsightsRaw(c.Context(), c.Params("mediaID"), metrics, account.AccessToken)
	if err != nil {
		return graphErrorResponse(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(insights)
}
