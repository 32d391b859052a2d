package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/aurascan/receipt-scan/internal/config"
	"github.com/aurascan/receipt-scan/internal/database"
	"github.com/aurascan/receipt-scan/internal/handlers"
	"github.com/aurascan/receipt-scan/internal/middleware"
	"github.com/aurascan/receipt-scan/internal/services"
)

func main() {
	// Load .env file if it exists
	godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create demo accounts if they don't exist
	if err := database.EnsureSeedUsers(db, cfg); err != nil {
		log.Printf("Warning: Could not ensure seed users: %v", err)
	}

	// Initialize image storage
	storageService, err := services.NewStorageService(
		cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3Region, cfg.S3UseSSL,
	)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}
	if err := storageService.EnsureBucket(context.Background()); err != nil {
		log.Printf("Warning: Failed to ensure bucket exists: %v", err)
	}

	// Initialize OCR
	ocrService, err := services.NewOCRService()
	if err != nil {
		log.Fatalf("Failed to initialize OCR service: %v", err)
	}
	defer ocrService.Close()

	// The parser is pure and shared by every request
	receiptParser := services.NewReceiptParser()

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    12 * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Create handlers with dependencies
	h := handlers.New(db, cfg)
	receiptHandler := handlers.NewReceiptHandler(db, cfg, storageService, ocrService, receiptParser)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API routes
	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/login", h.Login)
	auth.Get("/verify", middleware.AuthRequired(cfg), h.Verify)
	auth.Get("/me", middleware.AuthRequired(cfg), h.GetCurrentUser)

	// OCR upload route (authenticated)
	api.Post("/ocr", middleware.AuthRequired(cfg), receiptHandler.UploadReceipt)

	// Receipt routes (authenticated)
	receipts := api.Group("/receipts", middleware.AuthRequired(cfg))
	receipts.Get("/", receiptHandler.ListReceipts)
	receipts.Get("/:id", receiptHandler.GetReceipt)
	receipts.Get("/:id/image", receiptHandler.GetReceiptImage)
	receipts.Delete("/:id", receiptHandler.DeleteReceipt)

	// Static files - serve the web/ directory
	app.Static("/", "./web", fiber.Static{
		Index:  "index.html",
		Browse: false,
	})

	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
