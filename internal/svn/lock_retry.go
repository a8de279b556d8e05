// Package svn provides Subversion client operations for svnbridge.
// This file implements retry logic for working-copy lock errors.
package svn

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	bridgeerrors "github.com/mrz1836/svnbridge/internal/errors"
)

// LockRetryConfig configures retry behavior for working-copy lock errors.
type LockRetryConfig struct {
	// MaxAttempts is the maximum number of attempts (default: 5).
	MaxAttempts int
	// InitialDelay is the initial delay between retries (default: 100ms).
	InitialDelay time.Duration
	// MaxDelay is the maximum delay cap (default: 2s).
	MaxDelay time.Duration
	// Multiplier is the delay multiplier per attempt (default: 2.0).
	Multiplier float64
}

// DefaultLockRetryConfig returns the defaults used for mutating commands.
// Another svn process usually releases the working-copy lock within a second.
func DefaultLockRetryConfig() LockRetryConfig {
	return LockRetryConfig{
		MaxAttempts:  5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
	}
}

// isLockError reports whether err means the working copy is locked by
// another process.
func isLockError(err error) bool {
	if errors.Is(err, bridgeerrors.ErrWorkingCopyLocked) {
		return true
	}
	return MatchesLockError(err.Error())
}

// RunWithLockRetry executes an svn operation, retrying with exponential
// backoff while it fails with a working-copy lock error. Other errors are
// returned immediately.
func RunWithLockRetry[R any](
	ctx context.Context,
	config LockRetryConfig,
	logger zerolog.Logger,
	operation func(ctx context.Context) (R, error),
) (R, error) {
	var zero R
	var lastErr error
	delay := config.InitialDelay

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := operation(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !isLockError(err) {
			return zero, err
		}

		logger.Debug().
			Int("attempt", attempt).
			Int("max_attempts", config.MaxAttempts).
			Dur("delay", delay).
			Err(err).
			Msg("working copy locked, retrying")

		// Don't wait after the last attempt
		if attempt >= config.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * config.Multiplier)
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	logger.Warn().
		Int("attempts", config.MaxAttempts).
		Err(lastErr).
		Msg("working copy lock retry exhausted")

	return zero, lastErr
}

// RunWithLockRetryVoid is a convenience wrapper for operations that don't return a value.
func RunWithLockRetryVoid(
	ctx context.Context,
	config LockRetryConfig,
	logger zerolog.Logger,
	operation func(ctx context.Context) error,
) error {
	_, err := RunWithLockRetry(ctx, config, logger, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, operation(ctx)
	})
	return err
}
