// Package cache provides the in-process tier of the two-tier result cache
// and the deterministic key builders shared by both tiers.
package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is a TTL-bounded in-process cache for the most expensive
// computations. It is safe for concurrent use; population is last-writer-wins.
// The clock is injected so expiry is testable.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]entry
	maxEntries int
	now        func() time.Time
}

type entry struct {
	payload   []byte
	createdAt time.Time
	expiresAt time.Time
}

// NewMemory creates an in-process cache holding at most maxEntries entries.
// When the ceiling is exceeded, expired entries are swept first and then the
// oldest half of what remains is evicted.
func NewMemory(maxEntries int, now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		now:        now,
	}
}

// Get retrieves a payload by key. An expired entry is a miss and is removed.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if m.now().After(e.expiresAt) {
		m.mu.Lock()
		// The entry may have been refreshed between the two locks.
		if cur, ok := m.entries[key]; ok && m.now().After(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.payload, true, nil
}

// Set stores a payload under key with the given TTL, evicting as needed.
func (m *Memory) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry{
		payload:   payload,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}

	if len(m.entries) <= m.maxEntries {
		return nil
	}
	m.sweepExpired(now)
	if len(m.entries) > m.maxEntries {
		m.evictOldestHalf()
	}
	return nil
}

// DeleteByPrefix removes every entry whose key starts with prefix.
func (m *Memory) DeleteByPrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(m.entries, key)
		}
	}
	return nil
}

// Len returns the current number of entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) sweepExpired(now time.Time) {
	for key, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, key)
		}
	}
}

func (m *Memory) evictOldestHalf() {
	type keyed struct {
		key       string
		createdAt time.Time
	}
	all := make([]keyed, 0, len(m.entries))
	for key, e := range m.entries {
		all = append(all, keyed{key, e.createdAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].createdAt.Before(all[j].createdAt) })
	for _, k := range all[:len(all)/2] {
		delete(m.entries, k.key)
	}
}
