package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"cashflow/internal/cache"
	"cashflow/internal/config"
	"cashflow/internal/database"
	"cashflow/internal/logger"
	"cashflow/internal/router"
)

// @title           Cash Flow API
// @version         1.0
// @description     Cash Flow tracks income and expenses across wallets with role-based user management and configurable branding.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.InitWithFile(appConfig.Env, logger.FileOptions{Path: appConfig.LogFile})
	defer logger.Sync()
	log := logger.Get()

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	// Run migrations
	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	if err := dbManager.RunMigrations(migrationsDir); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	if err := os.MkdirAll(appConfig.StorageDir, 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	appearanceCache, err := cache.New(ctx, appConfig.RedisURL)
	cancel()
	if err != nil {
		log.Warnf("redis unavailable, serving appearance without a cache: %v", err)
		appearanceCache = cache.Nop{}
	}

	engine := router.New(appConfig, router.NewServices(dbManager.DB(), appearanceCache, appConfig.StorageDir))

	log.Infof("Starting Cash Flow server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return engine.Run(":" + appConfig.Port)
}
