package cache

import (
	"errors"
	"fmt"
	"time"
)

// Common store errors.
var (
	// ErrNotFound is returned by Store.Get and Store.Touch when no entry
	// exists for the key. Stores apply no TTL logic; a present-but-expired
	// entry is still returned.
	ErrNotFound = errors.New("cache entry not found")

	// ErrInvalidKey is returned for an empty cache key.
	ErrInvalidKey = errors.New("cache key cannot be empty")
)

// StorageError wraps an unrecoverable fault from the durable backing.
// Callers must treat it as "cache unavailable" and fall back to a direct
// upstream fetch rather than failing the overall operation.
type StorageError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("cache storage failure during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying storage error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageFailure reports whether err stems from the durable backing rather
// than from normal cache semantics (miss, unknown category).
func IsStorageFailure(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// Store is durable storage for cache entries, addressable by key and
// enumerable by category. Implementations must be safe for concurrent use
// and must never expose a torn write: Put is atomic with respect to readers.
//
// Stores are mechanism only. TTL interpretation, eviction, and accounting
// live in the Engine; nothing outside this package touches a Store directly.
type Store interface {
	// Get returns the entry for key or ErrNotFound.
	Get(key string) (*Entry, error)

	// Put upserts the entry, atomically replacing any existing entry with
	// the same key.
	Put(entry *Entry) error

	// Delete removes the entry for key. Deleting an absent key is a no-op.
	Delete(key string) error

	// Touch sets the entry's last-accessed timestamp. Returns ErrNotFound
	// if the key is absent.
	Touch(key string, at time.Time) error

	// ListByCategory returns the category's entries ordered by last access
	// ascending (oldest access first), ties broken by creation ascending.
	// Expired entries are included; sweeping is the engine's concern.
	ListByCategory(category Category) ([]*Entry, error)

	// CountByCategory returns the number of stored entries in the category,
	// expired entries included.
	CountByCategory(category Category) (int, error)

	// ClearCategory removes every entry in the category and returns how
	// many were removed.
	ClearCategory(category Category) (int, error)

	// ClearAll removes every entry and returns how many were removed.
	ClearAll() (int, error)

	// DeleteExpired removes entries whose expiry is at or before now and
	// returns how many were removed.
	DeleteExpired(now time.Time) (int, error)

	// Close releases the underlying storage.
	Close() error
}
