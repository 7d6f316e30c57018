package utils

import (
	"fmt"
	"time"

	"telemetry-service/internal/logging"
)

// Retry runs fn up to maxAttempts times, sleeping delay between failed
// attempts. The returned error wraps the last failure so callers can still
// match it with errors.Is.
func Retry(logger *logging.Logger, maxAttempts int, delay time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		logger.Warnf("Attempt %d/%d failed: %v", attempt, maxAttempts, lastErr)
		if attempt < maxAttempts {
			time.Sleep(delay)
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
