package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// RetryPolicy bounds the adapter's retry behavior. Delays grow
// exponentially from MinDelay and are capped at MaxDelay.
type RetryPolicy struct {
	MaxAttempts int
	MinDelay    time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy matches the backend call budget: three attempts with
// backoff between 4 and 10 seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		MinDelay:    4 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// minValidLength is the smallest trimmed response accepted as real content.
const minValidLength = 10

// Adapter wraps a Completer with bounded retry and response validation.
// A response is rejected when its trimmed length is under ten characters
// or it contains the substring "error" in any casing. Exhausting all
// attempts yields a *GenerationError; callers define their own fallback.
type Adapter struct {
	completer Completer
	policy    RetryPolicy
	log       zerolog.Logger

	// wait is swappable in tests to avoid real backoff sleeps.
	wait func(ctx context.Context, d time.Duration) error
}

// NewAdapter wraps completer with the given retry policy.
func NewAdapter(completer Completer, policy RetryPolicy, log zerolog.Logger) *Adapter {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Adapter{
		completer: completer,
		policy:    policy,
		log:       log,
		wait:      sleepContext,
	}
}

// Generate calls the backend, retrying invalid or failed responses until
// the policy is exhausted.
func (a *Adapter) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= a.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := a.backoff(attempt - 1)
			a.log.Debug().
				Int("attempt", attempt).
				Dur("delay", delay).
				Err(lastErr).
				Msg("retrying generation")
			if err := a.wait(ctx, delay); err != nil {
				return "", &GenerationError{Attempts: attempt - 1, Err: err}
			}
		}

		text, err := a.completer.Complete(ctx, prompt)
		if err == nil {
			err = validateResponse(text)
			if err == nil {
				return text, nil
			}
		}
		lastErr = err
	}
	return "", &GenerationError{Attempts: a.policy.MaxAttempts, Err: lastErr}
}

// backoff returns the delay before retry n (1-based), doubling from
// MinDelay and capping at MaxDelay.
func (a *Adapter) backoff(n int) time.Duration {
	d := a.policy.MinDelay
	for i := 1; i < n; i++ {
		d *= 2
		if d >= a.policy.MaxDelay {
			return a.policy.MaxDelay
		}
	}
	if d > a.policy.MaxDelay {
		return a.policy.MaxDelay
	}
	return d
}

// validateResponse rejects responses that are too short to be real content
// or that look like an inline error report from the backend.
func validateResponse(text string) error {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minValidLength {
		return fmt.Errorf("backend: response too short (%d chars)", len(trimmed))
	}
	if strings.Contains(strings.ToLower(trimmed), "error") {
		return fmt.Errorf("backend: response contains error marker")
	}
	return nil
}

// sleepContext waits for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
