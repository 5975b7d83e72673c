package breaker

import (
	"fmt"
	"sort"
	"sync"

	"fastfood-be/internal/apperr"
)

// Snapshot is a point-in-time view of one breaker.
type Snapshot struct {
	Name     string `json:"name"`
	State    State  `json:"state"`
	Failures int    `json:"failures"`
}

// Set holds the process's breakers, one per protected dependency.
type Set struct {
	mu       sync.RWMutex
	breakers map[string]*CircuitBreaker
}

func NewSet(breakers ...*CircuitBreaker) *Set {
	s := &Set{breakers: make(map[string]*CircuitBreaker, len(breakers))}
	for _, cb := range breakers {
		s.breakers[cb.Name()] = cb
	}
	return s
}

func (s *Set) Add(cb *CircuitBreaker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breakers[cb.Name()] = cb
}

func (s *Set) Get(name string) (*CircuitBreaker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cb, ok := s.breakers[name]
	return cb, ok
}

// Reset resets the named breaker.
func (s *Set) Reset(name string) error {
	cb, ok := s.Get(name)
	if !ok {
		return fmt.Errorf("%w: breaker %q", apperr.ErrNotFound, name)
	}
	cb.Reset()
	return nil
}

// Snapshot lists every breaker sorted by name.
func (s *Set) Snapshot() []Snapshot {
	s.mu.RLock()
	out := make([]Snapshot, 0, len(s.breakers))
	for _, cb := range s.breakers {
		out = append(out, Snapshot{Name: cb.Name(), State: cb.State(), Failures: cb.Failures()})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
