package github

import (
	"context"
	"fmt"
	"time"
)

// Retry discipline for every remote call: a fixed number of attempts with a
// short fixed sleep in between. The GitHub API occasionally hiccups or rate
// limits; a couple of patient retries clears almost all of it, and anything
// that survives the budget is reported as a terminal RetryError so the
// caller can decide whether to skip the item or abort the run.
const (
	maxAttempts = 3
	retryDelay  = 2 * time.Second
)

// sleepFn is swapped out in tests to avoid real sleeps.
var sleepFn = sleepWithContext

// RetryError is returned after the attempt budget is exhausted.
type RetryError struct {
	Label    string
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("tried %d times to %s: %v", e.Attempts, e.Label, e.Err)
}

func (e *RetryError) Unwrap() error { return e.Err }

// withRetry runs fn up to maxAttempts times, sleeping retryDelay between
// attempts. Each failed attempt logs one line.
func withRetry[T any](ctx context.Context, label string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		fmt.Printf("⚠ Attempt %d/%d to %s failed: %v\n", attempt, maxAttempts, label, err)

		if attempt < maxAttempts {
			if err := sleepFn(ctx, retryDelay); err != nil {
				return zero, err
			}
		}
	}

	fmt.Printf("✗ Exhausted %d attempts to %s.\n", maxAttempts, label)
	return zero, &RetryError{Label: label, Attempts: maxAttempts, Err: lastErr}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
