package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store guarded by a RWMutex.
// Expired entries are kept forever unless WithRetention is set.
type MemoryStore[T any] struct {
	mu        sync.RWMutex
	entries   map[string]Entry[T]
	now       func() time.Time
	retention time.Duration
	prune     bool
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{
		entries: make(map[string]Entry[T]),
		now:     time.Now,
	}
}

// WithClock overrides the clock used to stamp entries (tests)
func (s *MemoryStore[T]) WithClock(now func() time.Time) *MemoryStore[T] {
	s.now = now
	return s
}

// WithRetention drops entries expired for longer than d on the next Set.
// d=0 drops entries as soon as they expire (no stale reads).
func (s *MemoryStore[T]) WithRetention(d time.Duration) *MemoryStore[T] {
	s.mu.Lock()
	s.retention = d
	s.prune = true
	s.mu.Unlock()
	return s
}

func (s *MemoryStore[T]) Get(_ context.Context, key string) (Entry[T], bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	return e, ok, nil
}

func (s *MemoryStore[T]) Set(_ context.Context, key string, value T, ttl time.Duration) error {
	now := s.now()
	entry := Entry[T]{Value: value, StoredAt: now, ExpiresAt: now.Add(ttl)}

	s.mu.Lock()
	if s.prune {
		for k, e := range s.entries {
			if !now.Before(e.ExpiresAt.Add(s.retention)) {
				delete(s.entries, k)
			}
		}
	}
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}

func (s *MemoryStore[T]) Clear(_ context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string]Entry[T])
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore[T]) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}
