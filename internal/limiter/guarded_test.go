package limiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"fastfood-be/internal/apperr"
	"fastfood-be/internal/breaker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestWithBreaker(t *testing.T) {
	ctx := context.Background()
	backend := new(MockLimiter)
	backend.On("Limit", ctx, "ip:1").Return(Result{}, errors.New("redis: connection refused")).Times(2)

	cb := breaker.New(breaker.Settings{Name: "external", FailureThreshold: 2, ResetTimeout: time.Minute})
	l := WithBreaker(backend, cb)

	for i := 0; i < 2; i++ {
		_, err := l.Limit(ctx, "ip:1")
		assert.Error(t, err)
	}
	assert.Equal(t, breaker.StateOpen, cb.State())

	_, err := l.Limit(ctx, "ip:1")
	assert.ErrorIs(t, err, apperr.ErrCircuitOpen)
	backend.AssertNumberOfCalls(t, "Limit", 2)

	// a guard over an open circuit still lets the request through
	g := &Guard{Entry: l, Account: l}
	assert.NoError(t, g.CheckEntry(ctx, "1", ""))
}

func TestWithBreaker_PassesResult(t *testing.T) {
	ctx := context.Background()
	backend := new(MockLimiter)
	want := Result{Success: true, Limit: 5, Remaining: 4}
	backend.On("Limit", ctx, "user:u1").Return(want, nil)

	l := WithBreaker(backend, breaker.New(breaker.Settings{Name: "external", FailureThreshold: 1, ResetTimeout: time.Minute}))
	got, err := l.Limit(ctx, "user:u1")
	assert.NoError(t, err)
	assert.Equal(t, want, got)
	backend.AssertExpectations(t)
	backend.AssertCalled(t, "Limit", mock.Anything, "user:u1")
}
