package domain

import (
	"sort"
	"sync"
)

// Store is the shared key/value state of a single run.
//
// A Store is passed by reference to every node of the run. The mutex only
// keeps the underlying map memory-safe when goroutines write concurrently;
// it does not order writes, so concurrent writers race with last-writer-wins
// semantics. Use Clone to obtain an isolated copy.
type Store struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewStore creates a store seeded with a shallow copy of initial (which may be nil).
func NewStore(initial map[string]any) *Store {
	s := &Store{data: make(map[string]any, len(initial))}
	for k, v := range initial {
		s.data[k] = v
	}
	return s
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// GetOr returns the value stored under key, or fallback when absent.
func (s *Store) GetOr(key string, fallback any) any {
	if v, ok := s.Get(key); ok {
		return v
	}
	return fallback
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Delete removes key from the store.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Len returns the number of keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Keys returns the stored keys in lexical order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy of the store. Writes to the copy are
// invisible to the original and vice versa; values themselves are shared.
func (s *Store) Clone() *Store {
	return NewStore(s.Snapshot())
}

// Snapshot returns a shallow copy of the stored data as a plain map.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}
