package studyguide

import (
	"context"
	"errors"
	"time"
)

type retryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

func defaultRetryConfig(maxRetries int) retryConfig {
	return retryConfig{
		MaxRetries: max(maxRetries, 1),
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2,
	}
}

// permanentError stops retryWithBackoff immediately.
type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return permanentError{err: err}
}

// retryWithBackoff calls fn up to cfg.MaxRetries times, sleeping with
// exponential backoff between attempts.
func retryWithBackoff[T any](ctx context.Context, cfg retryConfig, fn func() (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)

	backoff := cfg.BaseDelay

	for attempt := range cfg.MaxRetries {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		var perm permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		if attempt == cfg.MaxRetries-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoff):
			backoff = min(time.Duration(float64(backoff)*cfg.Multiplier), cfg.MaxDelay)
		}
	}

	return zero, lastErr
}
