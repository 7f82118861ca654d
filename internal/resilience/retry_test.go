package resilience

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/GriffinCanCode/glimpse/internal/errors"
)

// fastConfig keeps test runtime negligible.
func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		BaseDelay:    time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		JitterFactor: 0.1,
		IsRetryable:  apperrors.IsRetryable,
	}
}

func TestRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetryConfig(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryEventualSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetryConfig(), func() error {
		calls++
		if calls < 3 {
			return apperrors.New(apperrors.Unavailable, "transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryNonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetryConfig(), func() error {
		calls++
		return apperrors.New(apperrors.InvalidArgument, "bad input")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (non-retryable)", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetryConfig(), func() error {
		calls++
		return apperrors.New(apperrors.Timeout, "still down")
	})
	if err == nil {
		t.Fatal("expected final error")
	}
	if calls != 4 { // initial + 3 retries
		t.Errorf("calls = %d, want 4", calls)
	}
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, fastRetryConfig(), func() error {
		return apperrors.New(apperrors.Unavailable, "down")
	})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBackoffDelayBounded(t *testing.T) {
	cfg := fastRetryConfig()
	for attempt := 0; attempt < 10; attempt++ {
		d := backoffDelay(cfg, attempt)
		if d <= 0 {
			t.Errorf("attempt %d: delay %v <= 0", attempt, d)
		}
		// MaxDelay plus maximum jitter headroom.
		limit := time.Duration(float64(cfg.MaxDelay) * (1 + cfg.JitterFactor))
		if d > limit {
			t.Errorf("attempt %d: delay %v exceeds %v", attempt, d, limit)
		}
	}
}
