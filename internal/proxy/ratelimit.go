// Package proxy implements the server-side adapter that forwards inbound
// requests to the reference-data backend and normalizes its responses.
package proxy

import (
	"sync"
	"time"
)

// Store is the fixed-window rate limiter owned by the proxy adapter.
// Entries live only for the process lifetime; nothing is persisted.
type Store struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*windowEntry

	now func() time.Time
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// NewStore creates a store allowing limit requests per key per window.
func NewStore(limit int, window time.Duration) *Store {
	return &Store{
		limit:   limit,
		window:  window,
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

// CheckAndIncrement is the store's only mutator. It counts one request
// for key and reports whether it is allowed, how many requests remain in
// the current window, and when the window resets.
func (s *Store) CheckAndIncrement(key string) (allowed bool, remaining int, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || !now.Before(e.resetAt) {
		e = &windowEntry{resetAt: now.Add(s.window)}
		s.entries[key] = e
	}

	if e.count >= s.limit {
		return false, 0, e.resetAt
	}
	e.count++
	return true, s.limit - e.count, e.resetAt
}
