package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"telemetry-service/internal/config"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/models"
	"telemetry-service/internal/mqtt"
	"telemetry-service/internal/simulator"
)

func main() {
	// Load config
	cfg, err := config.LoadSimulator()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Close()

	// Connect to MQTT broker
	client, err := mqtt.NewClient(mqtt.Config{
		Broker:   cfg.MQTT.Broker,
		ClientID: fmt.Sprintf("%s-sim-%d", cfg.MQTT.ClientIDPrefix, time.Now().Unix()),
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

	// Build the device fleet
	devices := make([]*simulator.Device, 0, len(cfg.Simulator.DeviceIDs))
	for i, id := range cfg.Simulator.DeviceIDs {
		devices = append(devices, simulator.NewDevice(id, cfg.Simulator.BaseRPM, time.Now().UnixNano()+int64(i)))
	}

	drift := simulator.DriftParams{
		Percent:   cfg.Simulator.DriftPercent,
		PeriodSec: cfg.Simulator.DriftPeriodSec,
		JitterRPM: cfg.Simulator.JitterRPM,
	}
	interval := time.Duration(cfg.Simulator.TickIntervalSec * float64(time.Second))

	publish := func(t models.Telemetry) error {
		payload, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to marshal telemetry: %w", err)
		}
		return client.Publish(mqtt.TelemetryTopic(t.DeviceID), payload)
	}

	sched := simulator.NewScheduler(devices, drift, interval, publish, logger)

	// Fault-injection commands arrive on each device's cmd topic.
	for _, d := range devices {
		deviceID := d.ID
		err := client.Subscribe(mqtt.CommandTopic(deviceID), func(topic string, payload []byte) {
			var cmd models.Command
			if err := json.Unmarshal(payload, &cmd); err != nil {
				logger.Errorf("Invalid command on %s: %v", topic, err)
				return
			}
			sched.Queue(deviceID, cmd)
		})
		if err != nil {
			log.Fatalf("Command subscription failed for %s: %v", deviceID, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Infof("Simulator started: %d device(s), tick interval %s", len(devices), interval)
	sched.Run(ctx)
	logger.Infof("Simulator shut down")
}
