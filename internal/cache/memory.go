package cache

import (
	"sync"
	"time"

	"github.com/Adda-Baaj/cine-khobor/internal/domain"
)

// MemoryStore keeps entries in process memory. Used when no cache path is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     Clock
}

// NewMemory returns an empty in-memory store. A nil clock means time.Now.
func NewMemory(now Clock) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{entries: make(map[string]Entry), now: now}
}

func (m *MemoryStore) Get(key string) (Entry, bool, error) {
	if key == "" {
		return Entry{}, false, ErrEmptyKey
	}

	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return Entry{}, false, nil
	}

	if !e.Fresh(m.now()) {
		m.mu.Lock()
		if cur, still := m.entries[key]; still && !cur.Fresh(m.now()) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (m *MemoryStore) Put(key string, articles []domain.Article, ttl time.Duration) (Entry, error) {
	if key == "" {
		return Entry{}, ErrEmptyKey
	}
	e := newEntry(key, articles, m.now(), ttl)

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return e, nil
}

func (m *MemoryStore) Purge() (int, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for k, e := range m.entries {
		if !e.Fresh(now) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryStore) Close() error { return nil }
