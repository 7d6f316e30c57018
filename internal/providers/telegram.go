package providers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"golang.org/x/time/rate"

	"telemetry-service/internal/classifier"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/models"
	"telemetry-service/internal/utils"
)

// TelegramConfig holds bot credentials for anomaly alerting. A zero token
// disables the provider.
type TelegramConfig struct {
	BotToken      string
	ChatID        int64
	RatePerSecond int
}

// telegramLimiter is the global rate limiter for Telegram messages, shared
// by every ingest worker. Initialized exactly once from the first caller's
// config.
var (
	telegramLimiter     *rate.Limiter
	telegramLimiterOnce sync.Once
)

func initTelegramLimiter(ratePerSecond int) {
	telegramLimiterOnce.Do(func() {
		if ratePerSecond < 1 {
			ratePerSecond = 1
		}
		telegramLimiter = rate.NewLimiter(rate.Limit(float64(ratePerSecond)), ratePerSecond)
	})
}

// SendTelegramAlert pushes an anomaly verdict to the configured chat via the
// go-telegram/bot library.
func SendTelegramAlert(ctx context.Context, r models.Reading, v classifier.Verdict, cfg TelegramConfig, logger *logging.Logger) error {
	initTelegramLimiter(cfg.RatePerSecond)

	if err := telegramLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit exceeded: %w", err)
	}

	if cfg.BotToken == "" {
		return fmt.Errorf("missing bot token in Telegram configuration")
	}
	if cfg.ChatID == 0 {
		return fmt.Errorf("missing chat_id in Telegram configuration")
	}

	// Compose message
	text := fmt.Sprintf(
		"*Anomaly: %s*\n%s\n\n"+
			"*Device:* %s\n"+
			"*Sensor:* %s\n"+
			"*RPM:* %.2f\n"+
			"*Fault state:* %s\n"+
			"*At:* %s",
		v.Category,
		v.Reason,
		r.DeviceID,
		r.SensorType,
		r.RPM,
		r.FaultState,
		r.Timestamp,
	)

	// Retry sending message
	return utils.Retry(logger, 3, time.Second, func() error {
		b, err := bot.New(cfg.BotToken)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram bot: %w", err)
		}

		params := &bot.SendMessageParams{
			ChatID:    cfg.ChatID,
			Text:      text,
			ParseMode: "Markdown",
		}
		if _, err := b.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("failed to send Telegram message to chat_id %d: %w", cfg.ChatID, err)
		}
		return nil
	})
}
