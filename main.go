// main.go
package main

import (
	"context"
	"log"

	"workspace-hub/cmd"
	"workspace-hub/internal/data/repository"
	"workspace-hub/internal/wire"
	"workspace-hub/pkg/cache"
	"workspace-hub/pkg/database"
	"workspace-hub/pkg/mail"
	"workspace-hub/pkg/oauth"
	"workspace-hub/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Connect to Redis for OAuth state storage
	kv, err := cache.InitRedis(config.Redis, logger)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer kv.Close()

	logger.Info("Redis connected successfully")

	// Mailer: SMTP when configured, log-only otherwise
	var mailer mail.Mailer
	if config.Email.Host != "" {
		mailer = mail.NewSMTPMailer(config.Email, logger)
	} else {
		logger.Warn("SMTP not configured, emails are logged instead of sent")
		mailer = mail.NewLogMailer(logger)
	}

	// OAuth provider registry
	providers := oauth.NewProviders(config.OAuth, logger)

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, providers, kv, mailer, config, logger)

	// Background sweeps for expired OTPs and stale revoked tokens
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	app.Sweeper.Start(sweepCtx)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
