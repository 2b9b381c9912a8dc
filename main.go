package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"statlab/internal"
	"statlab/internal/api"
	"statlab/internal/config"
	"statlab/internal/container"
	"statlab/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))
	internal.DefaultLogger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(ctx, appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	uiConfig := ui.Config{
		Port:            appConfig.Server.Port,
		ShutdownTimeout: appConfig.Server.ShutdownTimeout,
		API:             api.NewRouter(appContainer.APIHandler, appConfig.Server.GinMode),
	}
	server, err := ui.NewApp(uiConfig, ui.Pages{
		Resampling:  appContainer.Resampling,
		Anova:       appContainer.Anova,
		Categorical: appContainer.Categorical,
		Retail:      appContainer.Retail,
		Laptops:     appContainer.Laptops,
		Mowers:      appContainer.Mowers,
		Limiter:     appContainer.Limiter,
	}, appContainer.Settings, logger)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	if err := server.Start(ctx, uiConfig); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
