package valuation

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// Store is a time-boxed key-value cache. An entry is logically absent once
// its age exceeds the TTL. Insertion is last-writer-wins; staleness is
// tolerated by callers, so no compare-and-swap semantics are needed.
type Store[V any] struct {
	ttl      time.Duration
	maxItems int

	mu    sync.RWMutex
	items map[string]entry[V]
}

func NewStore[V any](ttl time.Duration, maxItems int) *Store[V] {
	return &Store[V]{ttl: ttl, maxItems: maxItems, items: make(map[string]entry[V])}
}

// Get returns the value for key when present and fresh.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || s.expired(e, time.Now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put inserts or replaces the value for key, refreshing its TTL.
func (s *Store[V]) Put(key string, value V) {
	now := time.Now()
	s.mu.Lock()
	s.items[key] = entry[V]{value: value, insertedAt: now}
	if s.maxItems > 0 && len(s.items) > s.maxItems {
		s.evictLocked(now)
	}
	s.mu.Unlock()
}

// GetStale returns the value for key even when its TTL has lapsed. The
// fleet fetcher prefers stale data over no data when live acquisition fails.
func (s *Store[V]) GetStale(key string) (V, bool) {
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Delete removes key if present.
func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
}

// Clear removes every entry.
func (s *Store[V]) Clear() {
	s.mu.Lock()
	s.items = make(map[string]entry[V])
	s.mu.Unlock()
}

// Len counts the fresh entries.
func (s *Store[V]) Len() int {
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.items {
		if !s.expired(e, now) {
			n++
		}
	}
	return n
}

func (s *Store[V]) expired(e entry[V], now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.insertedAt) > s.ttl
}

// evictLocked drops expired entries first, then the least recently inserted,
// until the store fits maxItems again. Capacity vastly exceeds the registry
// size in practice, so eviction order is not load-bearing.
func (s *Store[V]) evictLocked(now time.Time) {
	for k, e := range s.items {
		if len(s.items) <= s.maxItems {
			return
		}
		if s.expired(e, now) {
			delete(s.items, k)
		}
	}
	for len(s.items) > s.maxItems {
		oldestKey := ""
		var oldest time.Time
		for k, e := range s.items {
			if oldestKey == "" || e.insertedAt.Before(oldest) {
				oldestKey = k
				oldest = e.insertedAt
			}
		}
		delete(s.items, oldestKey)
	}
}
