package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
	tags      []string
}

// Memory is an in-process Store. Expired entries are evicted lazily on
// lookup; there is no background sweep. Used when no redis address is
// configured, and in tests.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	byTag   map[string]map[string]struct{}
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		byTag:   make(map[string]map[string]struct{}),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	if m.now().After(e.expiresAt) {
		m.mu.Lock()
		m.removeLocked(key)
		m.mu.Unlock()
		return nil, false, nil
	}

	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeLocked(key)
	m.entries[key] = memoryEntry{
		value:     value,
		expiresAt: m.now().Add(ttl),
		tags:      tags,
	}
	for _, tag := range tags {
		keys, ok := m.byTag[tag]
		if !ok {
			keys = make(map[string]struct{})
			m.byTag[tag] = keys
		}
		keys[key] = struct{}{}
	}
	return nil
}

func (m *Memory) Invalidate(_ context.Context, tags ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tag := range tags {
		for key := range m.byTag[tag] {
			m.removeLocked(key)
		}
		delete(m.byTag, tag)
	}
	return nil
}

// removeLocked drops the entry and its tag registrations. Caller holds mu.
func (m *Memory) removeLocked(key string) {
	e, ok := m.entries[key]
	if !ok {
		return
	}
	delete(m.entries, key)
	for _, tag := range e.tags {
		if keys, ok := m.byTag[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(m.byTag, tag)
			}
		}
	}
}
