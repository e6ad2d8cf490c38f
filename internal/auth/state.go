package auth

import (
	"context"
	"sync"
	"time"
)

// StateTTL bounds how long a login attempt may take.
const StateTTL = 10 * time.Minute

// StateStore holds login state nonces between /login and /callback.
// Nonces are single use.
type StateStore interface {
	// Save records state for ttl.
	Save(ctx context.Context, state string, ttl time.Duration) error
	// Consume deletes state and reports whether it was present and unexpired.
	Consume(ctx context.Context, state string) (bool, error)
}

// MemoryStateStore is a process-local [StateStore] for single-instance deployments.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
	now    func() time.Time
}

// NewMemoryStateStore creates an empty store. now may be nil.
func NewMemoryStateStore(now func() time.Time) *MemoryStateStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStateStore{states: make(map[string]time.Time), now: now}
}

func (m *MemoryStateStore) Save(_ context.Context, state string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for s, exp := range m.states {
		if !now.Before(exp) {
			delete(m.states, s)
		}
	}
	m.states[state] = now.Add(ttl)
	return nil
}

func (m *MemoryStateStore) Consume(_ context.Context, state string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.states[state]
	if !ok {
		return false, nil
	}
	delete(m.states, state)
	return m.now().Before(exp), nil
}

// Len reports the number of stored nonces, expired or not.
func (m *MemoryStateStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}
