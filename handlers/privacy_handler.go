package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Meta requires a reachable privacy policy URL for app review
const privacyPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Privacy Policy - InstaMetrics</title>
<style>body{font-family:sans-serif;max-width:700px;margin:40px auto;padding:20px;color:#333;line-height:1.6;}</style></head>
<body>
  <h1>Privacy Policy</h1>
  <p>InstaMetrics is a personal analytics tool for Instagram accounts.</p>
  <h2>Data we collect</h2>
  <p>We only access data for Instagram accounts you connect voluntarily: public metrics, posts, and audience data provided by the Instagram API.</p>
  <h2>How we use data</h2>
  <p>Data is used exclusively to show your metrics on the dashboard. We do not share, sell, or transfer your data to third parties.</p>
  <h2>Storage</h2>
  <p>Access tokens are stored encrypted on the server. You can disconnect your account at any time.</p>
  <h2>Contact</h2>
  <p>For any privacy questions, contact the administrator of this instance.</p>
</body></html>`

// Privacy serves the privacy policy page
func Privacy(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.SendString(privacyPage)
}
