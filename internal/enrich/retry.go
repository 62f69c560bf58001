// Package enrich wraps the external data providers that auto-populate
// record fields: generative text completion, company-data lookup, profile
// enrichment, logo/avatar services, and news search. Every adapter returns
// a partial fragment in canonical-ish shape or an error; callers treat an
// error as "no enrichment data available" and degrade to a no-op merge.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	defaultAttempts = 3
	defaultBackoff  = 500 * time.Millisecond
	defaultTimeout  = 10 * time.Second
)

// statusError marks a provider HTTP failure. 4xx responses are the
// provider rejecting the request; retrying those is pointless.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("provider returned HTTP %d", e.status)
	}
	return fmt.Sprintf("provider returned HTTP %d: %s", e.status, e.body)
}

func (e *statusError) retryable() bool {
	return e.status == 429 || e.status >= 500
}

// withRetry runs fn up to attempts times with exponential backoff,
// stopping early on context cancellation or a non-retryable provider
// rejection.
func withRetry(ctx context.Context, attempts int, base time.Duration, fn func(context.Context) error) error {
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	if base <= 0 {
		base = defaultBackoff
	}

	var lastErr error
	for attempt := range attempts {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			return err
		}

		lastErr = err
		if attempt < attempts-1 {
			backoff := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}
