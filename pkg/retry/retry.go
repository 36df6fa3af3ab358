// Package retry wraps operations with bounded retry and exponential backoff.
// It is the only place in the engine where backoff delay occurs; callers never
// implement their own retry loop.
package retry

import (
	"context"
	"time"
)

// Config defines retry behavior with exponential backoff.
type Config struct {
	// MaxRetries is the number of retries after the initial attempt, so a
	// failing operation runs MaxRetries+1 times in total.
	MaxRetries int
	// InitialDelay is the wait before the first retry; each subsequent wait
	// grows by Multiplier.
	InitialDelay time.Duration
	// MaxDelay caps the wait between retries. Zero means uncapped.
	MaxDelay time.Duration
	// Multiplier scales the delay after every retry.
	Multiplier float64
}

// DefaultConfig returns the defaults used for dataplane calls:
// 3 retries starting at 1s, doubling each time, no jitter.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		Multiplier:   2.0,
	}
}

// Do executes fn, retrying on failure until MaxRetries is exhausted.
// The last error is returned unwrapped. Context cancellation is honored
// during wait periods only; an in-flight fn call runs to completion.
func Do(ctx context.Context, cfg *Config, fn func() error) error {
	_, err := DoWithResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult executes fn and returns its result along with any error,
// retrying failures with the same semantics as Do.
func DoWithResult[T any](ctx context.Context, cfg *Config, fn func() (T, error)) (T, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var result T
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		r, err := fn()
		if err == nil {
			return r, nil
		}

		result = r
		lastErr = err

		if attempt < cfg.MaxRetries {
			select {
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * cfg.Multiplier)
				if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
					delay = cfg.MaxDelay
				}
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}

	return result, lastErr
}
