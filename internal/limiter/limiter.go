// Package limiter throttles calls per identifier (IP, email or user id).
package limiter

import (
	"context"
	"fmt"
	"time"

	"fastfood-be/internal/apperr"
)

// Result is the quota bookkeeping for one call.
type Result struct {
	Success   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// RetryAfter is how long the caller should wait before trying again.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.Success || !r.Reset.After(now) {
		return 0
	}
	return r.Reset.Sub(now)
}

type Limiter interface {
	Limit(ctx context.Context, identifier string) (Result, error)
}

// Policy is a quota of calls per window. Name namespaces the keys so two
// policies never share counters.
type Policy struct {
	Name   string
	Quota  int
	Window time.Duration
}

func (p Policy) validate() error {
	if p.Quota <= 0 || p.Window <= 0 {
		return fmt.Errorf("%w: limiter %q needs a positive quota and window", apperr.ErrValidation, p.Name)
	}
	return nil
}

// LimitedError reports an exhausted quota.
type LimitedError struct {
	Identifier string
	Reset      time.Time
}

func (e *LimitedError) Error() string {
	return fmt.Sprintf("too many attempts for %s, try again at %s", e.Identifier, e.Reset.Format(time.RFC3339))
}

func (e *LimitedError) Unwrap() error { return apperr.ErrRateLimited }

// RetryIn is the wait until the window resets.
func (e *LimitedError) RetryIn(now time.Time) time.Duration { return e.Reset.Sub(now) }
