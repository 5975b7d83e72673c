package limiter

import (
	"context"

	"fastfood-be/internal/breaker"
)

type guarded struct {
	next Limiter
	cb   *breaker.CircuitBreaker
}

// WithBreaker routes calls to a remote limiter backend through cb. While
// the circuit is open Limit returns the breaker's error at once, which
// callers treat like any other backend error.
func WithBreaker(next Limiter, cb *breaker.CircuitBreaker) Limiter {
	return &guarded{next: next, cb: cb}
}

func (g *guarded) Limit(ctx context.Context, identifier string) (Result, error) {
	return breaker.Call(g.cb, func() (Result, error) {
		return g.next.Limit(ctx, identifier)
	})
}
