package cache

import (
	"encoding/json"
	"time"
)

// Entry represents a single cached value with TTL and access metadata.
// It wraps an opaque JSON payload with the bookkeeping the engine needs for
// expiry and eviction ordering.
type Entry struct {
	// Key is the cache key (category-prefixed SHA256, see GenerateKey).
	Key string `json:"key"`

	// Category selects the TTL/capacity policy the entry was stored under.
	Category Category `json:"category"`

	// Payload is the cached value, opaque to the cache.
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the insertion timestamp.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is CreatedAt plus the category TTL at insertion time.
	ExpiresAt time.Time `json:"expires_at"`

	// LastAccessedAt is updated on every successful read and orders
	// eviction candidates within a category.
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// NewEntry creates an entry stamped at now with the given TTL. The entry
// counts as accessed at creation so a never-read entry still has a defined
// position in the eviction order.
func NewEntry(key string, category Category, payload json.RawMessage, now time.Time, ttl time.Duration) *Entry {
	return &Entry{
		Key:            key,
		Category:       category,
		Payload:        payload,
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
		LastAccessedAt: now,
	}
}

// ExpiredAt reports whether the entry is logically absent at the given time.
// An entry expires exactly at ExpiresAt, not after it.
func (e *Entry) ExpiredAt(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Age returns the duration since the entry was created.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}
