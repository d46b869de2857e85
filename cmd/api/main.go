// @title QuizForge API
// @version 1.0
// @description Turns uploaded documents into a validated quiz and grades attempts.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:3001
// @BasePath /api
// @schemes http https
package main

import (
	"context"
	"log"
	"os/signal"
	"quiz-forge/internal/config"
	"quiz-forge/internal/logger"
	"quiz-forge/internal/server"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg); err != nil {
		logger.Get().Fatal("Server failed", zap.Error(err))
	}
}
