package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"

	"telemetry-service/internal/logging"
	"telemetry-service/internal/models"
)

// Config holds broker and topic settings for the reading stream.
type Config struct {
	Broker  string
	Topic   string
	GroupID string
}

// ReadingSink receives decoded readings from the consumer.
type ReadingSink interface {
	QueueReading(r models.Reading)
}

// Producer writes readings onto the stream, keyed by device id so one
// device's readings stay ordered within a partition.
type Producer struct {
	writer *kafka.Writer
	logger *logging.Logger
}

func NewProducer(cfg Config, logger *logging.Logger) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Broker),
			Topic:    cfg.Topic,
			Balancer: &kafka.LeastBytes{},
		},
		logger: logger,
	}
}

// WriteReading publishes one reading with at-least-once semantics.
func (p *Producer) WriteReading(ctx context.Context, r models.Reading) error {
	value, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(r.DeviceID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to write reading for %s: %w", r.DeviceID, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Consumer reads the stream and feeds decoded readings to a sink.
type Consumer struct {
	reader *kafka.Reader
	sink   ReadingSink
	logger *logging.Logger
}

func NewConsumer(cfg Config, sink ReadingSink, logger *logging.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  []string{cfg.Broker},
			GroupID:  cfg.GroupID,
			Topic:    cfg.Topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		sink:   sink,
		logger: logger,
	}
}

// Start consumes until ctx is cancelled. Malformed messages are logged and
// skipped; they never stop the loop.
func (c *Consumer) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.logger.Infof("Kafka consumer started")
		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					c.logger.Infof("Kafka consumer stopping")
					return
				}
				c.logger.Errorf("Read message failed: %v", err)
				continue
			}

			readings, err := models.ParseReadings("", msg.Value)
			if err != nil {
				c.logger.Errorf("Unmarshal message failed: %v", err)
				continue
			}
			for _, r := range readings {
				c.sink.QueueReading(r)
			}
		}
	}()
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Errorf("Kafka reader close failed: %v", err)
	}
}
