package limiter

import (
	"context"
	"sync"
	"time"
)

// visitor holds the call times inside the current window and the last
// time the identifier was seen.
type visitor struct {
	hits     []time.Time
	lastSeen time.Time
}

// Memory is a sliding log per identifier: a call is admitted only while
// fewer than Quota calls were admitted during the preceding Window. State
// lives in this process only, so it must not back a multi-instance
// deployment.
type Memory struct {
	policy Policy
	now    func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

type MemoryOption func(*Memory)

// WithMemoryClock replaces time.Now, for tests.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func NewMemory(p Policy, opts ...MemoryOption) (*Memory, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	m := &Memory{
		policy:   p,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Memory) Limit(_ context.Context, identifier string) (Result, error) {
	now := m.now()
	key := m.policy.Name + ":" + identifier

	m.mu.Lock()
	defer m.mu.Unlock()

	v, exists := m.visitors[key]
	if !exists {
		v = &visitor{}
		m.visitors[key] = v
	}
	v.lastSeen = now

	cutoff := now.Add(-m.policy.Window)
	valid := v.hits[:0]
	for _, t := range v.hits {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	v.hits = valid

	res := Result{Limit: m.policy.Quota}
	if len(v.hits) < m.policy.Quota {
		v.hits = append(v.hits, now)
		res.Success = true
	}
	res.Remaining = m.policy.Quota - len(v.hits)
	// The oldest hit leaving the window frees the next slot.
	res.Reset = v.hits[0].Add(m.policy.Window)
	return res, nil
}

// Sweep drops identifiers idle for longer than idle and returns how many
// were removed.
func (m *Memory) Sweep(idle time.Duration) int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, v := range m.visitors {
		if now.Sub(v.lastSeen) > idle {
			delete(m.visitors, key)
			removed++
		}
	}
	return removed
}

// Run sweeps idle identifiers every interval until ctx is done.
func (m *Memory) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(m.policy.Window)
		}
	}
}
