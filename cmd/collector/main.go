package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"telemetry-service/internal/config"
	"telemetry-service/internal/db"
	"telemetry-service/internal/kafka"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/models"
	"telemetry-service/internal/mqtt"
	"telemetry-service/internal/utils"
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

	// Kafka producer bridges raw readings to the classifier
	producer := kafka.NewProducer(cfg.Kafka, logger)
	defer producer.Close()

	// Connect to MQTT broker
	client, err := mqtt.NewClient(mqtt.Config{
		Broker:   cfg.MQTT.Broker,
		ClientID: fmt.Sprintf("%s-collector-%d", cfg.MQTT.ClientIDPrefix, time.Now().Unix()),
		Username: cfg.MQTT.Username,
		Password: cfg.MQTT.Password,
		QoS:      cfg.MQTT.QoS,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to build MQTT client: %v", err)
	}
	if err := client.Connect(); err != nil {
		log.Fatalf("MQTT connection failed: %v", err)
	}
	defer client.Disconnect()

	handle := func(topic string, payload []byte) {
		readings, err := models.ParseReadings(topic, payload)
		if err != nil {
			logger.Errorf("Unparseable payload on %s: %v", topic, err)
			return
		}
		now := time.Now().UTC().Format(time.RFC3339Nano)
		for _, r := range readings {
			r.IngestedAt = now
			err := utils.Retry(logger, 3, 500*time.Millisecond, func() error {
				return dbConn.InsertReading(ctx, r)
			})
			if err != nil {
				logger.Errorf("Failed to store reading from %s: %v", r.DeviceID, err)
			}
			if err := producer.WriteReading(ctx, r); err != nil {
				logger.Errorf("Failed to forward reading from %s: %v", r.DeviceID, err)
			}
		}
	}

	if err := client.Subscribe(cfg.MQTT.TelemetryTopic, handle); err != nil {
		log.Fatalf("Telemetry subscription failed: %v", err)
	}

	logger.Infof("Collector started on topic %s", cfg.MQTT.TelemetryTopic)
	<-ctx.Done()
	logger.Infof("Collector shut down")
}
