package config

import (
	"log/slog"
	"os"
)

type Config struct {
	// MongoDB configuration
	MongoURI     string
	DatabaseName string

	// Instagram app credentials
	InstagramAppID     string
	InstagramAppSecret string

	// Public base URL of this server (OAuth redirect target)
	BaseURL string

	// Webhook configuration
	VerifyToken string

	// Hex-encoded 32-byte key for sealing stored access tokens.
	// Tokens are stored in plaintext when unset.
	TokenEncryptionKey string

	// AI assistant configuration
	AnthropicAPIKey string
	ClaudeModel     string

	// Bootstrap dashboard user (optional)
	AdminEmail    string
	AdminPassword string

	// Server configuration
	Port string
}

func LoadConfig() *Config {
	cfg := &Config{
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName:       getEnv("MONGO_DB_NAME", "insta_metrics"),
		InstagramAppID:     getEnv("INSTAGRAM_APP_ID", ""),
		InstagramAppSecret: getEnv("INSTAGRAM_APP_SECRET", ""),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		VerifyToken:        getEnv("WEBHOOK_VERIFY_TOKEN", "webhook_verify_token"),
		TokenEncryptionKey: getEnv("TOKEN_ENCRYPTION_KEY", ""),
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		ClaudeModel:        getEnv("CLAUDE_MODEL", "claude-3-5-haiku-20241022"),
		AdminEmail:         getEnv("ADMIN_EMAIL", ""),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		Port:               getEnv("PORT", "8080"),
	}

	// Validate required configuration
	if cfg.InstagramAppID == "" || cfg.InstagramAppSecret == "" {
		slog.Warn("INSTAGRAM_APP_ID or INSTAGRAM_APP_SECRET not set, OAuth login will not work")
	}

	return cfg
}

// RedirectURI returns the OAuth callback URL registered with the Instagram app
func (c *Config) RedirectURI() string {
	return c.BaseURL + "/auth/instagram/callback"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
