package main

import (
	"context"
	"log"
	"os"

	"lcgwalk/internal"
	"lcgwalk/internal/config"
	"lcgwalk/internal/container"
	"lcgwalk/internal/walk"
	"lcgwalk/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	logger := internal.NewDefaultLogger()

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	// Create dependency injection container
	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	if err := appContainer.Init(context.Background()); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	mapper, err := walk.NewMapper(appConfig.Walk.DirectionThreshold)
	if err != nil {
		log.Fatalf("Invalid direction threshold: %v", err)
	}

	server := ui.NewServer(appContainer.SessionRepo, appConfig.Search(),
		ui.WithLogger(logger),
		ui.WithMapper(mapper),
		ui.WithDecimals(appConfig.Report.Decimals),
		ui.WithRequestLimits(appConfig.Server.MaxSampleCount, appConfig.Server.MaxAttempts),
	)

	logger.Info("starting lcgwalk server on port %s", appConfig.Server.Port)
	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		logger.Error("server stopped: %v", err)
		os.Exit(1)
	}
}
