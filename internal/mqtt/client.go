package mqtt

import (
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"telemetry-service/internal/logging"
)

// Config holds the broker connection settings for one client.
type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// MessageHandler is the callback type for inbound MQTT messages.
type MessageHandler func(topic string, payload []byte)

// Client wraps a paho MQTT connection with logging and sane timeouts.
type Client struct {
	client mqtt.Client
	config Config
	logger *logging.Logger
}

// NewClient builds an MQTT client; call Connect before publishing.
func NewClient(cfg Config, logger *logging.Logger) (*Client, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address cannot be empty")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)

	if cfg.ClientID == "" {
		cfg.ClientID = fmt.Sprintf("telemetry-%d", time.Now().Unix())
	}
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Errorf("MQTT connection lost: %v", err)
	})
	opts.SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
		logger.Infof("Reconnecting to MQTT broker...")
	})

	return &Client{
		client: mqtt.NewClient(opts),
		config: cfg,
		logger: logger,
	}, nil
}

// Connect connects to the broker, failing after a 10s timeout.
func (c *Client) Connect() error {
	token := c.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("connection to MQTT broker timed out")
	}
	if err := token.Error(); err != nil {
		return err
	}
	c.logger.Infof("Connected to MQTT broker %s as %s", c.config.Broker, c.config.ClientID)
	return nil
}

// Publish sends a payload to the given topic at the configured QoS.
func (c *Client) Publish(topic string, payload []byte) error {
	token := c.client.Publish(topic, c.config.QoS, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish to topic %s timed out", topic)
	}
	return token.Error()
}

// Subscribe registers a handler for the given topic filter.
func (c *Client) Subscribe(topic string, handler MessageHandler) error {
	token := c.client.Subscribe(topic, c.config.QoS, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscription to topic %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return err
	}
	c.logger.Infof("Subscribed to topic %s (qos=%d)", topic, c.config.QoS)
	return nil
}

// Disconnect closes the broker connection, allowing in-flight work to drain.
func (c *Client) Disconnect() {
	c.client.Disconnect(250)
	c.logger.Infof("Disconnected from MQTT broker")
}

// TelemetryTopic is the publish topic for one device's readings.
func TelemetryTopic(deviceID string) string {
	return fmt.Sprintf("factory/%s/telemetry", deviceID)
}

// CommandTopic is the fault-injection topic for one device.
func CommandTopic(deviceID string) string {
	return fmt.Sprintf("factory/%s/cmd", deviceID)
}

// DeviceIDFromTopic extracts the device id from a factory/{device}/... topic.
func DeviceIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 3 && parts[0] == "factory" {
		return parts[1]
	}
	return ""
}
