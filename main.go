// @title School LMS API
// @version 1.0
// @description Backend server for the school learning management system.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"school_lms_backend/internal/app"
	"school_lms_backend/internal/config"
	"school_lms_backend/pkg/configwatcher"
	"school_lms_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migration and exit")
	migrate := flag.Bool("migrate", false, "run database migration on startup")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	go configwatcher.WatchConfig("configs/config.yaml", func(updated *config.Config) {
		logger.Log.Info("Config file reloaded",
			zap.String("mode", updated.Server.Mode),
			zap.Int("rate_limit", updated.RateLimit.MaxRequests))
	})

	application.Run()
}
