package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"courseplatform/cache"
	"courseplatform/config"
	"courseplatform/controllers"
	"courseplatform/middleware"
	"courseplatform/routes"
	"courseplatform/services"
	"courseplatform/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Redis is a derived cache only; a failed ping is logged, not fatal.
	store := cache.New(cfg.RedisAddr, cfg.RedisPassword)
	if err := store.Ping(context.Background()); err != nil {
		logger.Printf("redis unavailable at startup: %v", err)
	}

	// External collaborators
	media := services.NewMediaService(cfg.MediaBaseURL, cfg.MediaAPIKey)
	mailer := services.NewMailer(cfg.MailAPIKey, cfg.MailSender)
	payments := services.NewPaymentService(cfg.PaymentBaseURL, cfg.PaymentAPIKey, cfg.PaymentWebhookSecret)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal server error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": message,
			})
		},
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.FrontendURL,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, routes.Deps{
		DB:       db,
		Cache:    store,
		Cfg:      cfg,
		Media:    media,
		Mailer:   mailer,
		Payments: payments,
		Logger:   logger,
	})

	// Background cleanup of old read notifications
	controllers.NewNotificationsController(db, logger).StartPurgeLoop(context.Background())

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
