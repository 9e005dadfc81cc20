package connector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultMaxRetries is the default number of attempts, the first call
	// included, made against transient connector failures (deadlocks,
	// serialization failures).
	DefaultMaxRetries = 3
	// DefaultBaseBackoff is the base of the exponential backoff between
	// retries.
	DefaultBaseBackoff = 100 * time.Millisecond
)

// ErrRetriesExhausted is returned by WithRetry when every attempt failed
// with a retryable error.
var ErrRetriesExhausted = errors.New("connector call failed after retries")

// RetryConfig configures WithRetry's backoff behavior.
type RetryConfig struct {
	MaxRetries  int
	BaseBackoff time.Duration
}

// DefaultRetryConfig returns the advisor's default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: DefaultMaxRetries, BaseBackoff: DefaultBaseBackoff}
}

// WithRetry runs fn, retrying with exponential backoff when it fails with a
// retryable error (a deadlock or serialization failure surfaced by the
// backing database). Any other error, or context cancellation, returns
// immediately.
func WithRetry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("connector call cancelled before attempt %d: %w", attempt, err)
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		lastErr = err

		backoff := cfg.BaseBackoff * time.Duration(1<<uint(attempt))
		select {
		case <-ctx.Done():
			return fmt.Errorf("connector call cancelled during retry: %w", ctx.Err())
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, cfg.MaxRetries, lastErr)
}

// IsRetryable reports whether err looks like a transient deadlock or
// serialization failure that a retry is likely to resolve.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())

	// PostgreSQL deadlock_detected (40P01) and serialization_failure (40001).
	if strings.Contains(err.Error(), "40P01") || strings.Contains(err.Error(), "40001") {
		return true
	}

	for _, needle := range []string{
		"deadlock detected",
		"deadlock found",
		"could not serialize access",
		"lock wait timeout exceeded",
	} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}
