package services

import (
	goContext "context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")
var errFatal = errors.New("fatal")

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Microsecond,
		MaxWait:     time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	result, err := retryWithBackoff(goContext.Background(), fastRetryConfig(5), func(err error) bool {
		return errors.Is(err, errTransient)
	}, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errTransient
		}
		return "ok", nil
	})

	require.NoError(t, err)
	require.Equal(t, "ok", result)
	require.Equal(t, 3, calls)
}

func TestRetryStopsOnFatalError(t *testing.T) {
	calls := 0
	_, err := retryWithBackoff(goContext.Background(), fastRetryConfig(5), func(err error) bool {
		return errors.Is(err, errTransient)
	}, func() (string, error) {
		calls++
		return "", errFatal
	})

	require.ErrorIs(t, err, errFatal)
	require.Equal(t, 1, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := retryWithBackoff(goContext.Background(), fastRetryConfig(3), func(err error) bool {
		return true
	}, func() (int, error) {
		calls++
		return 0, errTransient
	})

	require.ErrorIs(t, err, errTransient)
	require.Equal(t, 3, calls)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := goContext.WithCancel(goContext.Background())
	cancel()

	cfg := fastRetryConfig(5)
	cfg.InitialWait = time.Hour

	_, err := retryWithBackoff(ctx, cfg, func(err error) bool { return true }, func() (int, error) {
		return 0, errTransient
	})

	require.ErrorIs(t, err, goContext.Canceled)
}

func TestBackoffWaitBounds(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts: 5,
		InitialWait: 800 * time.Millisecond,
		MaxWait:     15 * time.Second,
		Multiplier:  2.0,
	}

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		wait := backoffWait(cfg, attempt)
		require.GreaterOrEqual(t, wait, time.Duration(0))
		// MaxWait plus the 20% jitter ceiling.
		require.LessOrEqual(t, wait, time.Duration(float64(cfg.MaxWait)*1.2))
	}
}
