package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"telemetry-service/internal/api"
	"telemetry-service/internal/config"
	"telemetry-service/internal/db"
	"telemetry-service/internal/ingest"
	"telemetry-service/internal/kafka"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/models"
	"telemetry-service/internal/mqtt"
	"telemetry-service/internal/providers"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Close()

	// Connect to database
	dbConn, err := db.New(cfg.DB.DSN)
	if err != nil {
		logger.Errorf("Failed to connect to database: %v", err)
		log.Fatalf("Database connection failed: %v", err)
	}
	defer dbConn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := dbConn.EnsureSchema(ctx); err != nil {
		log.Fatalf("Schema setup failed: %v", err)
	}

	// Initialize classification service
	svc := ingest.New(dbConn, logger, ingest.Config{
		QueueSize:  cfg.Ingest.QueueSize,
		MaxWorkers: cfg.Ingest.MaxWorkers,
		Telegram: providers.TelegramConfig{
			BotToken:      cfg.Telegram.BotToken,
			ChatID:        cfg.Telegram.ChatID,
			RatePerSecond: cfg.Telegram.RatePerSecond,
		},
	}, cfg.Thresholds)
	var wg sync.WaitGroup
	svc.Start(&wg)

	// Initialize Kafka consumer
	consumer := kafka.NewConsumer(cfg.Kafka, svc, logger)
	consumer.Start(ctx, &wg)
	logger.Infof("Kafka consumer initialized with topic: %s", cfg.Kafka.Topic)

	// MQTT client republishes fault-injection commands from the API
	var publishCmd api.CommandPublisher
	mqttClient, err := mqtt.NewClient(mqtt.Config{
		Broker:   cfg.MQTT.Broker,
		ClientID: fmt.Sprintf("%s-api-%d", cfg.MQTT.ClientIDPrefix, time.Now().Unix()),
		Username: cfg.MQTT.Username,
		Password: cfg.MQTT.Password,
		QoS:      cfg.MQTT.QoS,
	}, logger)
	if err == nil && mqttClient.Connect() == nil {
		defer mqttClient.Disconnect()
		publishCmd = func(deviceID string, cmd models.Command) error {
			payload, err := json.Marshal(cmd)
			if err != nil {
				return fmt.Errorf("failed to marshal command: %w", err)
			}
			return mqttClient.Publish(mqtt.CommandTopic(deviceID), payload)
		}
	} else {
		logger.Warnf("MQTT unavailable, command endpoint disabled")
	}

	// Start API server
	router := api.NewRouter(dbConn, logger, svc, cfg.Thresholds, cfg.API.BasePath, publishCmd)
	server := &http.Server{Addr: cfg.API.Port, Handler: router}
	go func() {
		logger.Infof("Starting API server on %s", cfg.API.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("API server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Infof("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("API shutdown failed: %v", err)
	}
	consumer.Close()
	svc.Stop()
	wg.Wait()
	logger.Infof("Classifier shut down")
}
