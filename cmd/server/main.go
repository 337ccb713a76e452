package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saeid-a/HealthQuestBack/internal/config"
	"github.com/saeid-a/HealthQuestBack/internal/database"
	"github.com/saeid-a/HealthQuestBack/internal/logging"
	"github.com/saeid-a/HealthQuestBack/internal/routes"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	ctx := context.Background()

	// 2. Connect to Database
	var db *pgxpool.Pool
	if cfg.UsesPostgres() {
		db, err = database.ConnectDB(ctx, cfg.DBUrl, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()
	}

	// 3. Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(cors.New())
	if cfg.AccessLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	cleanup, err := routes.RegisterRoutes(ctx, app, cfg, db, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to register routes", zap.Error(err))
	}
	defer cleanup()

	// 4. Start Server
	zapLogger.Info("server starting",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
		zap.String("store_backend", cfg.StoreBackend),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		zapLogger.Error("server stopped", zap.Error(err))
	}
}
