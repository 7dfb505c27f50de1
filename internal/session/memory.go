package session

import (
	"context"
	"sync"
	"time"

	"github.com/righthome-ai/property-copilot/internal/model"
	"github.com/righthome-ai/property-copilot/pkg/metrics"
)

type memoryEntry struct {
	session   *model.Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Entries expire ttl after their last save.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the session.
func (m *MemoryStore) Get(_ context.Context, id string) (*model.Session, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok || m.expired(e) {
		return nil, ErrNotFound
	}
	return e.session.Clone(), nil
}

// Save replaces the stored snapshot.
func (m *MemoryStore) Save(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[s.ID] = memoryEntry{session: s.Clone(), expiresAt: m.now().Add(m.ttl)}
	return nil
}

// Delete removes a session. Deleting a missing session returns ErrNotFound.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return ErrNotFound
	}
	if m.expired(e) {
		delete(m.entries, id)
		metrics.SessionsActive.Dec()
		return ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

// Count returns the number of unexpired sessions.
func (m *MemoryStore) Count(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.entries {
		if !m.expired(e) {
			n++
		}
	}
	return n, nil
}

// Sweep drops expired entries, takes them off the active-sessions gauge, and reports
// how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, id)
			n++
		}
	}
	metrics.SessionsActive.Sub(float64(n))
	return n
}

// RunSweeper sweeps every interval until ctx is done.
func (m *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *MemoryStore) expired(e memoryEntry) bool {
	return m.ttl > 0 && !m.now().Before(e.expiresAt)
}
