package resilience

import (
	"time"
)

// FromRetryConfig converts config values to a RetryConfig. A positive
// backoff step selects the linear schedule.
func FromRetryConfig(maxAttempts, backoffStepMs int) RetryConfig {
	cfg := DefaultRetryConfig()
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	if backoffStepMs > 0 {
		cfg.Backoff = LinearBackoff(time.Duration(backoffStepMs) * time.Millisecond)
	}
	return cfg
}
