package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	errs "graphkit/pkg/errors"
	"graphkit/pkg/logger"
)

// Operation is a function that performs an operation that might need retrying
type Operation func(ctx context.Context) error

// Config holds retry configuration
type Config struct {
	// MaxAttempts is the maximum number of attempts (0 means unlimited)
	MaxAttempts int
	Backoff     BackoffStrategy
	// RetryIf determines if an error should be retried
	RetryIf func(error) bool
	// OnRetry is called before each retry attempt
	OnRetry func(attempt int, err error, delay time.Duration)
	Logger  logger.Logger
}

// DefaultConfig returns a retry configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		Backoff:     DefaultExponentialBackoff(),
		RetryIf:     DefaultRetryIf,
		Logger:      logger.NewNopLogger(),
	}
}

// DefaultRetryIf retries transport-level failures only. Validation,
// unsupported and response-content errors are deterministic and never retried.
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *errs.Error
	if errors.As(err, &apiErr) {
		return errs.IsRetryable(apiErr.Type)
	}

	return false
}

// Do executes an operation with retry logic
func Do(ctx context.Context, op Operation, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	retryIf := cfg.RetryIf
	if retryIf == nil {
		retryIf = DefaultRetryIf
	}

	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			if attempt > 1 {
				log.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}

		if !retryIf(err) {
			return err
		}

		// The last attempt's failure is final; no backoff after it.
		if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
			log.WarnWithFields("max retry attempts exceeded", map[string]interface{}{
				"attempts":   attempt,
				"last_error": err.Error(),
			})
			return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, err)
		}

		var delay time.Duration
		if cfg.Backoff != nil {
			if obs, ok := cfg.Backoff.(ErrorObserver); ok {
				obs.Observe(err)
			}
			delay = cfg.Backoff.NextDelay(attempt)
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}

		log.WarnWithFields("retrying operation", map[string]interface{}{
			"attempt":      attempt,
			"error":        err.Error(),
			"delay_ms":     delay.Milliseconds(),
			"max_attempts": cfg.MaxAttempts,
		})

		if err := Wait(ctx, delay); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}
	}
}

// DoWithResult executes an operation that returns a result with retry logic
func DoWithResult[T any](ctx context.Context, op func(ctx context.Context) (T, error), cfg *Config) (T, error) {
	var result T
	err := Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	}, cfg)
	return result, err
}

// ErrorObserver is implemented by backoff strategies that adapt to the
// error that triggered the retry.
type ErrorObserver interface {
	Observe(err error)
}

// BackoffForError picks a backoff strategy by Graph error type, so rate
// limited calls wait longer than plain network hiccups.
func BackoffForError(etb *ErrorTypeBackoff) BackoffStrategy {
	return &errorAwareBackoff{etb: etb, current: etb.DefaultBackoff}
}

type errorAwareBackoff struct {
	etb     *ErrorTypeBackoff
	current BackoffStrategy
}

func (b *errorAwareBackoff) Observe(err error) {
	var apiErr *errs.Error
	if errors.As(err, &apiErr) {
		b.current = b.etb.GetBackoffForError(apiErr.Type)
		return
	}
	b.current = b.etb.DefaultBackoff
}

func (b *errorAwareBackoff) NextDelay(attempt int) time.Duration {
	return b.current.NextDelay(attempt)
}

func (b *errorAwareBackoff) Reset() {
	b.current = b.etb.DefaultBackoff
}

// ForHTTP builds a Config whose backoff follows the type of the last error.
// The returned Config is meant for a single call to Do.
func ForHTTP(maxAttempts int, log logger.Logger) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     BackoffForError(NewErrorTypeBackoff()),
		RetryIf:     DefaultRetryIf,
		Logger:      log,
	}
}
