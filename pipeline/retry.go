// Package pipeline orchestrates the sighting-report run: it schedules
// per-document work under bounded concurrency, drives each document
// through fetch → extract → geocode, isolates failures, and aggregates
// the surviving records into the final dataset.
package pipeline

import (
	"context"
	"time"

	"github.com/fwojciec/skywatch"
)

// DefaultRetryDelays returns the backoff delays for transient failures:
// 1s, 2s, 4s (three retries, four total attempts).
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Retry runs op, retrying transient failures with the given backoff
// delays. Permanent errors return immediately; a transient error that
// survives every retry is returned as-is and treated as permanent by the
// caller.
func Retry(ctx context.Context, delays []time.Duration, op func(context.Context) error) error {
	maxAttempts := len(delays) + 1 // 1 initial + N retries

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !skywatch.IsTransient(err) {
			return err
		}

		// Don't sleep after the last attempt.
		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return skywatch.Errorf(skywatch.ECANCELED, "retry canceled: %v", ctx.Err())
		case <-time.After(delays[attempt]):
		}
	}

	return lastErr
}
