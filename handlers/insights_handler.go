package handlers

import (
	"github.com/gofiber/fiber/v2"

	"insta-metrics/services"
)

// GetAccountInsights proxies account-level insights. The metric set defaults
// to what both Business and Creator accounts support; the service retries
// per metric when the bulk call fails.
func GetAccountInsights(c *fiber.Ctx) error {
	account, err := requireAccount(c)
	if account == nil {
		return err
	}

	query := services.AccountInsightsQuery{
		Metrics: c.Query("metric"),
		Period:  c.Query("period", "day"),
		Since:   c.Query("since"),
		Until:   c.Query("until"),
	}

	insights, err := services.FetchAccountInsights(c.Context(), account.AccessToken, query)
	if err != nil {
		return graphErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"data": insights})
}

// GetDemographics proxies audience demographic breakdowns
func GetDemographics(c *fiber.Ctx) error {
	account, err := requireAccount(c)
	if account == nil {
		return err
	}

	demographics, err := services.FetchDemographics(c.Context(), account.AccessToken)
	if err != nil {
		return graphErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"data": demographics})
}
