package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"insta-metrics/config"
	"insta-metrics/handlers"
	"insta-metrics/middleware"
	"insta-metrics/services"
	"insta-metrics/webhooks"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	// Initialize structured logger
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(logHandler))

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := services.InitMongoDB(ctx, cfg.MongoURI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer db.Disconnect(ctx)

	// Initialize services
	services.InitServices(db, cfg.DatabaseName)

	// Token encryption for stored Instagram credentials
	if err := services.InitTokenCipher(cfg.TokenEncryptionKey); err != nil {
		slog.Error("Failed to initialize token cipher", "error", err)
		os.Exit(1)
	}

	// Session indexes and periodic cleanup
	if err := services.CreateSessionIndexes(ctx); err != nil {
		slog.Error("Failed to create session indexes", "error", err)
		// Continue anyway - the app can still work without indexes
	}

	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	services.StartSessionCleanup(cleanupCtx)

	// Bootstrap admin user for fresh deployments
	if err := services.EnsureBootstrapUser(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		slog.Error("Failed to create bootstrap user", "error", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("Request error", "error", err, "status", code)
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:5173, http://localhost:3000",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path}\n",
	}))

	// Meta platform webhook routes
	webhooks.RegisterRoutes(app, cfg)

	// Dashboard authentication
	auth := app.Group("/auth")
	auth.Post("/login", handlers.Login)
	auth.Post("/logout", handlers.Logout)
	auth.Get("/me", middleware.RequireAuth, handlers.GetCurrentUser)

	// Instagram Business Login flow
	auth.Get("/instagram/login", middleware.RequireAuth, handlers.InstagramLogin(cfg))
	auth.Get("/instagram/callback", handlers.InstagramCallback(cfg))

	// Analytics API (protected)
	api := app.Group("/api", middleware.RequireAuth)

	api.Get("/accounts", handlers.GetAccounts)
	api.Delete("/accounts/:id", handlers.DisconnectAccount)
	api.Get("/accounts/:id/profile", handlers.RefreshProfile)
	api.Post("/accounts/:id/refresh-token", handlers.RefreshAccountToken)

	api.Get("/accounts/:id/insights", handlers.GetAccountInsights)
	api.Get("/accounts/:id/demographics", handlers.GetDemographics)

	api.Get("/accounts/:id/media", handlers.GetMedia)
	api.Get("/accounts/:id/media/detailed", handlers.GetDetailedMedia)
	api.Get("/accounts/:id/media/:mediaID/insights", handlers.GetMediaInsights)

	api.Get("/accounts/:id/snapshots", handlers.GetSnapshots)

	// AI analytics assistant
	api.Post("/chat", handlers.Chat(cfg))
	api.Get("/chat/history", handlers.GetChatHistory)

	// Privacy policy page required by Meta
	app.Get("/privacy", handlers.Privacy)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "insta-metrics",
		})
	})

	// Dashboard frontend
	app.Static("/", "./public")

	// Start server
	slog.Info("Server starting", "port", cfg.Port, "callback", cfg.RedirectURI())
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}
