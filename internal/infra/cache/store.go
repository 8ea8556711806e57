// Package cache provides key/value stores for process-wide caches.
// 만료된 엔트리도 삭제 전까지 보존됨 (stale fallback 용도), 만료 판단은 호출자가 함.
package cache

import (
	"context"
	"time"
)

// Entry is a cached value with its expiry
type Entry[T any] struct {
	Value     T         `json:"value"`
	StoredAt  time.Time `json:"storedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the entry is past its TTL at now
func (e Entry[T]) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store is a typed key/value cache.
// Values are treated as immutable once stored.
type Store[T any] interface {
	// Get returns the entry for key, including expired entries.
	Get(ctx context.Context, key string) (Entry[T], bool, error)
	// Set stores value with the given TTL.
	Set(ctx context.Context, key string, value T, ttl time.Duration) error
	// Delete evicts the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	// Clear evicts every key in the store.
	Clear(ctx context.Context) error
	// Len returns the number of entries (expired included).
	Len(ctx context.Context) (int, error)
}
