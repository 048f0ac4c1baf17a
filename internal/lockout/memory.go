package lockout

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	state   State
	touched time.Time
}

// MemoryStore keeps records in process. A record that is not locked and has
// not been touched for the idle TTL is forgotten, which also resets its
// escalation level.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	idleTTL time.Duration
	now     func() time.Time
}

func NewMemoryStore(idleTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

func (m *MemoryStore) expired(e memoryEntry, now time.Time) bool {
	if m.idleTTL <= 0 || e.state.Locked(now) {
		return false
	}
	return now.Sub(e.touched) >= m.idleTTL
}

func (m *MemoryStore) Load(_ context.Context, username string) (State, error) {
	m.mu.RLock()
	e, ok := m.entries[username]
	m.mu.RUnlock()

	if !ok || m.expired(e, m.now()) {
		return State{}, nil
	}
	return e.state, nil
}

func (m *MemoryStore) Save(_ context.Context, username string, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[username] = memoryEntry{state: s, touched: m.now()}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, username)
	return nil
}

// Sweep drops idle records and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for username, e := range m.entries {
		if m.expired(e, now) {
			delete(m.entries, username)
			removed++
		}
	}
	return removed
}
