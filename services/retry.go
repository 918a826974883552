package services

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig matches the tutor backend's observed limits: five
// attempts starting at 800ms, doubling each time.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		InitialWait: 800 * time.Millisecond,
		MaxWait:     15 * time.Second,
		Multiplier:  2.0,
	}
}

// retryWithBackoff runs fn until it succeeds, a non-retriable error occurs or
// attempts run out. retriable decides which errors are worth another try.
func retryWithBackoff[T any](ctx context.Context, cfg RetryConfig, retriable func(error) bool, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retriable(err) {
			return zero, err
		}

		// Last attempt: no point sleeping, just return the error.
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		wait := backoffWait(cfg, attempt)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}
	}

	return zero, lastErr
}

func backoffWait(cfg RetryConfig, attempt int) time.Duration {
	wait := float64(cfg.InitialWait) * math.Pow(cfg.Multiplier, float64(attempt))
	if wait > float64(cfg.MaxWait) {
		wait = float64(cfg.MaxWait)
	}

	// ±20% jitter keeps concurrent retries from aligning.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
