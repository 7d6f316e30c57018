package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"telemetry-service/internal/classifier"
)

// Config holds application configuration loaded from environment.
type Config struct {
	MQTT struct {
		Broker         string
		ClientIDPrefix string
		Username       string
		Password       string
		QoS            byte
		TelemetryTopic string // subscription pattern for collector
	}
	Kafka struct {
		Broker  string
		Topic   string
		GroupID string
	}
	DB struct {
		DSN string
	}
	API struct {
		Port     string
		BasePath string
	}
	Ingest struct {
		QueueSize  int
		MaxWorkers int
	}
	Telegram struct {
		BotToken      string
		ChatID        int64
		RatePerSecond int
	}
	Logging struct {
		Dir   string
		Level string
	}
	Simulator  Simulator
	Thresholds classifier.Thresholds
}

// Simulator holds the device fleet and drift tuning for cmd/simulator.
type Simulator struct {
	DeviceIDs       []string
	BaseRPM         float64
	TickIntervalSec float64
	DriftPercent    float64
	DriftPeriodSec  float64
	JitterRPM       float64
}

// Load reads environment variables, applies defaults, and returns a Config.
// DB_DSN is required; use LoadSimulator for the database-less simulator binary.
func Load() (Config, error) {
	cfg, err := LoadSimulator()
	if err != nil {
		return Config{}, err
	}
	if cfg.DB.DSN == "" {
		return Config{}, fmt.Errorf("missing required configurations: [DB_DSN]")
	}
	return cfg, nil
}

// LoadSimulator reads environment variables without requiring a database DSN.
func LoadSimulator() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	// MQTT settings
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientIDPrefix = getEnv("MQTT_CLIENT_ID_PREFIX", "edge-sim")
	cfg.MQTT.Username = os.Getenv("MQTT_USERNAME")
	cfg.MQTT.Password = os.Getenv("MQTT_PASSWORD")
	cfg.MQTT.QoS = byte(getEnvInt("MQTT_QOS", 1))
	cfg.MQTT.TelemetryTopic = getEnv("MQTT_TELEMETRY_TOPIC", "factory/+/telemetry")

	// Kafka settings
	cfg.Kafka.Broker = getEnv("KAFKA_BROKER", "localhost:9092")
	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", "sensor_readings")
	cfg.Kafka.GroupID = getEnv("KAFKA_GROUP_ID", "telemetry-classifier")

	// Database DSN
	cfg.DB.DSN = os.Getenv("DB_DSN")

	// API settings
	cfg.API.Port = getEnv("API_PORT", ":8080")
	cfg.API.BasePath = getEnv("API_BASE_PATH", "/api/v0")

	// Ingest worker settings
	cfg.Ingest.QueueSize = getEnvInt("QUEUE_SIZE", 500)
	cfg.Ingest.MaxWorkers = getEnvInt("MAX_WORKERS", 10)

	// Telegram alerting (optional, disabled without a token)
	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if id, err := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64); err == nil {
		cfg.Telegram.ChatID = id
	}
	cfg.Telegram.RatePerSecond = getEnvInt("TELEGRAM_RATE_LIMIT", 1)

	// Logging
	cfg.Logging.Dir = getEnv("LOG_DIR", "logs")
	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")

	// Simulator fleet
	cfg.Simulator.DeviceIDs = splitList(getEnv("SIM_DEVICES", "EDGE_D001"))
	cfg.Simulator.BaseRPM = getEnvFloat("SIM_BASE_RPM", 1450.0)
	cfg.Simulator.TickIntervalSec = getEnvFloat("SIM_TICK_INTERVAL_SEC", 1.0)
	cfg.Simulator.DriftPercent = getEnvFloat("SIM_DRIFT_PERCENT", 2.0)
	cfg.Simulator.DriftPeriodSec = getEnvFloat("SIM_DRIFT_PERIOD_SEC", 120.0)
	cfg.Simulator.JitterRPM = getEnvFloat("SIM_JITTER_RPM", 5.0)

	cfg.Thresholds = loadThresholds()

	if len(cfg.Simulator.DeviceIDs) == 0 {
		return Config{}, fmt.Errorf("SIM_DEVICES must list at least one device id")
	}
	if cfg.Simulator.TickIntervalSec <= 0 {
		return Config{}, fmt.Errorf("SIM_TICK_INTERVAL_SEC must be positive")
	}

	return cfg, nil
}

// loadThresholds builds the classifier threshold set from environment overrides.
// The set is immutable once returned.
func loadThresholds() classifier.Thresholds {
	t := classifier.DefaultThresholds()
	t.VibRMSHigh = getEnvFloat("VIB_RMS_G_HIGH", t.VibRMSHigh)
	t.HealthScoreLow = getEnvFloat("HEALTH_SCORE_LOW", t.HealthScoreLow)
	t.TempCLow = getEnvFloat("TEMP_C_LOW", t.TempCLow)
	t.TempCHigh = getEnvFloat("TEMP_C_HIGH", t.TempCHigh)
	t.CurrentALow = getEnvFloat("CURRENT_A_LOW", t.CurrentALow)
	t.CurrentAHigh = getEnvFloat("CURRENT_A_HIGH", t.CurrentAHigh)
	t.SoundDBHigh = getEnvFloat("SOUND_DB_HIGH", t.SoundDBHigh)
	t.RMSAmpHigh = getEnvFloat("RMS_AMP_HIGH", t.RMSAmpHigh)
	return t
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
