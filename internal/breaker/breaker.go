// Package breaker implements a consecutive-failure circuit breaker.
//
// A breaker starts closed. After FailureThreshold consecutive failures it
// opens and rejects calls with an *OpenError until ResetTimeout has passed.
// The first call after the cooldown moves it to half-open and runs as the
// only probe: success closes the circuit, failure reopens it and restarts
// the cooldown.
package breaker

import (
	"fmt"
	"sync"
	"time"

	"fastfood-be/internal/apperr"
	"fastfood-be/internal/logger"

	"go.uber.org/zap"
)

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

type Settings struct {
	Name             string
	FailureThreshold int
	ResetTimeout     time.Duration

	// IsFailure decides whether an error returned by the wrapped call counts
	// against the breaker. Nil counts every non-nil error.
	IsFailure func(error) bool
}

// OpenError is returned without invoking the wrapped call while the
// circuit is open or a half-open probe is already in flight.
type OpenError struct {
	Name       string
	RetryAfter time.Duration
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("circuit %q is open, retry after %s", e.Name, e.RetryAfter)
}

func (e *OpenError) Unwrap() error { return apperr.ErrCircuitOpen }

func (e *OpenError) RetryIn(time.Time) time.Duration { return e.RetryAfter }

type Option func(*CircuitBreaker)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(cb *CircuitBreaker) { cb.now = now }
}

type CircuitBreaker struct {
	name      string
	threshold int
	timeout   time.Duration
	isFailure func(error) bool
	now       func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

func New(s Settings, opts ...Option) *CircuitBreaker {
	if s.FailureThreshold <= 0 {
		s.FailureThreshold = 1
	}
	if s.IsFailure == nil {
		s.IsFailure = func(err error) bool { return err != nil }
	}

	cb := &CircuitBreaker{
		name:      s.Name,
		threshold: s.FailureThreshold,
		timeout:   s.ResetTimeout,
		isFailure: s.IsFailure,
		now:       time.Now,
		state:     StateClosed,
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

func (cb *CircuitBreaker) Name() string { return cb.name }

// State reports the current state. An open breaker whose cooldown has
// elapsed still reports open until a call probes it.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the current consecutive failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// Reset forces the breaker closed and clears its counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	prev := cb.state
	cb.state = StateClosed
	cb.failures = 0
	cb.probing = false
	cb.openedAt = time.Time{}
	cb.mu.Unlock()

	logger.L().Info("circuit breaker reset",
		zap.String("breaker", cb.name),
		zap.String("from", string(prev)),
	)
}

// Execute runs fn if the circuit admits it and records the outcome. A
// panic in fn counts as a failure and is re-raised.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}

	defer func() {
		if e := recover(); e != nil {
			cb.record(fmt.Errorf("%w: panic: %v", apperr.ErrInternal, e))
			panic(e)
		}
	}()

	err := fn()
	cb.record(err)
	return err
}

// Call is Execute for functions returning a value.
func Call[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var out T
	err := cb.Execute(func() error {
		var err error
		out, err = fn()
		return err
	})
	return out, err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil
	case StateOpen:
		elapsed := cb.now().Sub(cb.openedAt)
		if elapsed < cb.timeout {
			return &OpenError{Name: cb.name, RetryAfter: cb.timeout - elapsed}
		}
		cb.transition(StateHalfOpen)
		cb.probing = true
		return nil
	default:
		// half-open: only the caller that flipped the state may probe
		if cb.probing {
			return &OpenError{Name: cb.name, RetryAfter: 0}
		}
		cb.probing = true
		return nil
	}
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	failed := err != nil && cb.isFailure(err)

	switch cb.state {
	case StateHalfOpen:
		cb.probing = false
		if failed {
			cb.failures++
			cb.open()
			return
		}
		cb.failures = 0
		cb.transition(StateClosed)
	case StateClosed:
		if !failed {
			cb.failures = 0
			return
		}
		cb.failures++
		if cb.failures >= cb.threshold {
			cb.open()
		}
	default:
		// A Reset raced with an in-flight call; the outcome no longer applies.
	}
}

func (cb *CircuitBreaker) open() {
	cb.openedAt = cb.now()
	cb.transition(StateOpen)
}

// transition must be called with mu held.
func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	cb.state = to

	logger.L().Info("circuit breaker state changed",
		zap.String("breaker", cb.name),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Int("failures", cb.failures),
	)
}
