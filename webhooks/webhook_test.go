package webhooks

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insta-metrics/config"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	RegisterRoutes(app, &config.Config{VerifyToken: "secret-token"})
	return app
}

func TestVerifyWebhookEchoesChallenge(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET",
		"/webhook/?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "12345", string(body))
}

func TestVerifyWebhookRejectsWrongToken(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET",
		"/webhook/?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestWebhookIgnoresOtherObjects(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("POST", "/webhook/", strings.NewReader(`{"object":"page","entry":[]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
