package wizardstore

import (
	"context"
	"sync"
	"time"

	"github.com/constella-app/constella-web/internal/wizard"
)

// sweepEvery is the number of writes between removals of expired sessions
const sweepEvery = 256

type memoryEntry struct {
	state     wizard.State
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Used when no Redis url is configured.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	writes   int
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (wizard.State, bool, error) {
	if err := ctx.Err(); err != nil {
		return wizard.State{}, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.live(id)
	if !ok {
		return wizard.State{}, false, nil
	}
	return entry.state, true, nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, fn UpdateFunc) (wizard.State, error) {
	if err := ctx.Err(); err != nil {
		return wizard.State{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current := wizard.Initial()
	if entry, ok := m.live(id); ok {
		current = entry.state
	}

	next := fn(current)
	m.sessions[id] = memoryEntry{state: next, expiresAt: m.now().Add(m.ttl)}

	m.writes++
	if m.writes%sweepEvery == 0 {
		m.sweep()
	}
	return next, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// Len counts live sessions
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep()
	return len(m.sessions)
}

// live returns the unexpired entry for id, dropping it if it has expired. Callers hold mu.
func (m *MemoryStore) live(id string) (memoryEntry, bool) {
	entry, ok := m.sessions[id]
	if !ok {
		return memoryEntry{}, false
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.sessions, id)
		return memoryEntry{}, false
	}
	return entry, true
}

func (m *MemoryStore) sweep() {
	now := m.now()
	for id, entry := range m.sessions {
		if !now.Before(entry.expiresAt) {
			delete(m.sessions, id)
		}
	}
}
