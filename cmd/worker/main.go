// cmd/worker/main.go
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"payrouter-backend/pkg/container"
	"payrouter-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] No .env file found, using system environment variables")
	}
	logger.Init(getEnvVar("APP_ENV", "development"))

	// Initialize container
	c, err := container.NewContainer()
	if err != nil {
		log.Fatalf("[Container] Failed to initialize: %v", err)
	}
	defer c.Cleanup()

	// Load configuration
	cfg := loadConfig()

	// Initialize handlers
	handlers := initializeHandlers(c, cfg)

	// Setup Asynq server
	srv := setupAsynqServer(cfg, handlers)

	// Setup scheduler
	scheduler := setupScheduler(cfg)

	// Perform health checks and start the health endpoint
	if err := startServices(srv, scheduler, cfg); err != nil {
		log.Fatalf("[Startup] Health check failed: %v", err)
	}

	// Wait for shutdown signal
	waitForShutdown(srv, scheduler)
}

func waitForShutdown(srv *asynqServer, scheduler *asynqScheduler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("[Shutdown] Gracefully stopping...")
	scheduler.Shutdown()
	srv.Shutdown()
	log.Println("[Shutdown] ✓ Stopped")
}
