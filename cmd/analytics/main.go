package main

import (
	"context"
	"log"
	"time"

	"telemetry-service/internal/config"
	"telemetry-service/internal/db"
	"telemetry-service/internal/logging"
)

// One-shot job: recompute the per-device daily summary table from stored
// readings and anomalies. Meant to run from cron.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Close()

	dbConn, err := db.New(cfg.DB.DSN)
	if err != nil {
		logger.Errorf("Failed to connect to database: %v", err)
		log.Fatalf("Database connection failed: %v", err)
	}
	defer dbConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := dbConn.EnsureSchema(ctx); err != nil {
		log.Fatalf("Schema setup failed: %v", err)
	}

	start := time.Now()
	if err := dbConn.RefreshDailySummary(ctx); err != nil {
		logger.Errorf("Summary refresh failed: %v", err)
		log.Fatalf("Summary refresh failed: %v", err)
	}
	if err := dbConn.RefreshDeviceLastSeen(ctx); err != nil {
		logger.Errorf("Device list refresh failed: %v", err)
		log.Fatalf("Device list refresh failed: %v", err)
	}
	logger.Infof("Analytics tables refreshed in %v", time.Since(start))
}
