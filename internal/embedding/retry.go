package embedding

import (
	"context"
	"time"
)

// RetryConfig configures exponential backoff for transient embedding failures.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
}

// DefaultRetryConfig returns the default bounded retry policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Multiplier:  2.0,
	}
}

// WithAttempts returns a copy of the config with MaxAttempts set; values below
// one are treated as one attempt (no retry).
func (c RetryConfig) WithAttempts(n int) RetryConfig {
	if n < 1 {
		n = 1
	}
	c.MaxAttempts = n
	return c
}

// EmbedWithRetry embeds text, retrying transient failures per cfg. The last
// error is returned once attempts are exhausted; callers decide whether that
// degrades the chunk or aborts the operation.
func EmbedWithRetry(ctx context.Context, e Embedder, text string, cfg RetryConfig) ([]float32, error) {
	return retryWithBackoff(ctx, cfg, func() ([]float32, error) {
		return e.Embed(ctx, text)
	})
}

// retryWithBackoff executes fn with exponential backoff. Retry stops on
// context cancellation; the last error is returned when attempts run out.
func retryWithBackoff[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var lastErr error
	var zero T
	backoff := cfg.BaseDelay

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if attempt < cfg.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
				backoff = time.Duration(float64(backoff) * cfg.Multiplier)
				if backoff > cfg.MaxDelay {
					backoff = cfg.MaxDelay
				}
			}
		}
	}
	return zero, lastErr
}
