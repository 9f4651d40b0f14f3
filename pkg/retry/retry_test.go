package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "graphkit/pkg/errors"
)

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.0,
	}

	tests := []struct {
		attempt     int
		expected    time.Duration
		description string
	}{
		{0, 0, "No attempt"},
		{1, 100 * time.Millisecond, "First attempt"},
		{2, 200 * time.Millisecond, "Second attempt"},
		{3, 400 * time.Millisecond, "Third attempt"},
		{5, 1 * time.Second, "Fifth attempt (capped at max)"},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			if delay := backoff.NextDelay(test.attempt); delay != test.expected {
				t.Errorf("Expected delay %v, got %v", test.expected, delay)
			}
		})
	}
}

func TestRetryWithSuccess(t *testing.T) {
	attempts := 0
	op := func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return &errs.Error{Type: errs.ErrorTypeNetwork, Message: "connection reset"}
		}
		return nil
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 5 * time.Millisecond},
	}

	if err := Do(context.Background(), op, cfg); err != nil {
		t.Errorf("Expected success after retries, got error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithMaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	serverErr := &errs.Error{Type: errs.ErrorTypeServerError, Code: 503}
	op := func(ctx context.Context) error {
		attempts++
		return serverErr
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: 5 * time.Millisecond},
	}

	err := Do(context.Background(), op, cfg)
	if !errors.Is(err, serverErr) {
		t.Errorf("Expected wrapped server error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryNeverRetriesTokenWorkflowErrors(t *testing.T) {
	nonRetryable := []*errs.Error{
		errs.NewValidation("code"),
		errs.NewUnsupported("not here"),
		errs.NewResponseContent("cannot extract access token", errors.New("bad json")),
		{Type: errs.ErrorTypeOAuth, Code: 190},
	}

	for _, want := range nonRetryable {
		t.Run(string(want.Type), func(t *testing.T) {
			attempts := 0
			err := Do(context.Background(), func(ctx context.Context) error {
				attempts++
				return want
			}, &Config{MaxAttempts: 5, Backoff: &ConstantBackoff{Delay: time.Millisecond}})

			if err != want {
				t.Errorf("Expected the original error, got: %v", err)
			}
			if attempts != 1 {
				t.Errorf("Expected 1 attempt, got %d", attempts)
			}
		})
	}
}

func TestRetryWithContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	op := func(ctx context.Context) error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return &errs.Error{Type: errs.ErrorTypeNetwork}
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 100 * time.Millisecond},
	}

	err := Do(ctx, op, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected cancellation error, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts before cancellation, got %d", attempts)
	}
}

func TestErrorTypeBackoff(t *testing.T) {
	etb := NewErrorTypeBackoff()

	if etb.GetBackoffForError(errs.ErrorTypeRateLimit) != etb.RateLimitBackoff {
		t.Error("Expected the rate limit strategy for rate limit errors")
	}
	if etb.GetBackoffForError(errs.ErrorTypeNetwork) != etb.NetworkErrorBackoff {
		t.Error("Expected the network strategy for network errors")
	}
	if etb.GetBackoffForError(errs.ErrorTypeOAuth) != etb.DefaultBackoff {
		t.Error("Expected the default strategy for other errors")
	}
}

func TestBackoffForErrorFollowsLastError(t *testing.T) {
	etb := &ErrorTypeBackoff{
		NetworkErrorBackoff: &ConstantBackoff{Delay: 1 * time.Millisecond},
		RateLimitBackoff:    &ConstantBackoff{Delay: 7 * time.Millisecond},
		ServerErrorBackoff:  &ConstantBackoff{Delay: 3 * time.Millisecond},
		DefaultBackoff:      &ConstantBackoff{Delay: 2 * time.Millisecond},
	}
	b := BackoffForError(etb)

	var delays []time.Duration
	attempts := 0
	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     b,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			delays = append(delays, delay)
		},
	}

	_ = Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return &errs.Error{Type: errs.ErrorTypeRateLimit}
		}
		return &errs.Error{Type: errs.ErrorTypeNetwork}
	}, cfg)

	if len(delays) != 2 {
		t.Fatalf("Expected 2 retries, got %d", len(delays))
	}
	if delays[0] != 7*time.Millisecond || delays[1] != 1*time.Millisecond {
		t.Errorf("Expected delays [7ms 1ms], got %v", delays)
	}
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	op := func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 2 {
			return "", &errs.Error{Type: errs.ErrorTypeNetwork}
		}
		return "success", nil
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: 5 * time.Millisecond},
	}

	result, err := DoWithResult(context.Background(), op, cfg)
	if err != nil {
		t.Errorf("Expected success, got error: %v", err)
	}
	if result != "success" {
		t.Errorf("Expected 'success', got '%s'", result)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
}

func TestRetryDoesNotBackOffAfterFinalAttempt(t *testing.T) {
	attempts := 0
	var delays []time.Duration
	netErr := &errs.Error{Type: errs.ErrorTypeNetwork, Message: "connection reset"}
	cfg := &Config{
		MaxAttempts: 2,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		OnRetry: func(attempt int, err error, delay time.Duration) {
			delays = append(delays, delay)
		},
	}

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return netErr
	}, cfg)

	if !errors.Is(err, netErr) {
		t.Errorf("Expected wrapped network error, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
	if len(delays) != 1 {
		t.Errorf("Expected 1 backoff between attempts, got %d", len(delays))
	}
}
