package events

import (
	"context"

	"fastfood-be/internal/breaker"
)

type guarded struct {
	next Publisher
	cb   *breaker.CircuitBreaker
}

// WithBreaker routes every Publish through cb so a failing broker is cut
// off instead of slowing down each request.
func WithBreaker(next Publisher, cb *breaker.CircuitBreaker) Publisher {
	return &guarded{next: next, cb: cb}
}

func (g *guarded) Publish(ctx context.Context, ev Event) error {
	return g.cb.Execute(func() error {
		return g.next.Publish(ctx, ev)
	})
}

// Emit builds and publishes an event, logging instead of returning errors.
// Used for best-effort notifications that must never fail the operation
// that produced them.
func Emit(ctx context.Context, p Publisher, eventType, key string, payload any) {
	if p == nil {
		return
	}
	ev, err := New(eventType, key, payload)
	if err == nil {
		err = p.Publish(ctx, ev)
	}
	if err != nil {
		logPublishFailure(ctx, eventType, key, err)
	}
}
