package cache

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store on an in-process map. It offers no durability
// and exists for tests and for running with `cache.backend: memory`.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}

func copyEntry(e *Entry) *Entry {
	c := *e
	return &c
}

// Get implements Store.
func (s *MemoryStore) Get(key string) (*Entry, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return copyEntry(entry), nil
}

// Put implements Store.
func (s *MemoryStore) Put(entry *Entry) error {
	if entry == nil || entry.Key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.Key] = copyEntry(entry)
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Touch implements Store.
func (s *MemoryStore) Touch(key string, at time.Time) error {
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return ErrNotFound
	}
	entry.LastAccessedAt = at
	return nil
}

// ListByCategory implements Store.
func (s *MemoryStore) ListByCategory(category Category) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []*Entry
	for _, entry := range s.entries {
		if entry.Category == category {
			entries = append(entries, copyEntry(entry))
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].LastAccessedAt.Equal(entries[j].LastAccessedAt) {
			return entries[i].LastAccessedAt.Before(entries[j].LastAccessedAt)
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	return entries, nil
}

// CountByCategory implements Store.
func (s *MemoryStore) CountByCategory(category Category) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, entry := range s.entries {
		if entry.Category == category {
			count++
		}
	}
	return count, nil
}

// ClearCategory implements Store.
func (s *MemoryStore) ClearCategory(category Category) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key, entry := range s.entries {
		if entry.Category == category {
			delete(s.entries, key)
			count++
		}
	}
	return count, nil
}

// ClearAll implements Store.
func (s *MemoryStore) ClearAll() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.entries)
	s.entries = make(map[string]*Entry)
	return count, nil
}

// DeleteExpired implements Store.
func (s *MemoryStore) DeleteExpired(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key, entry := range s.entries {
		if entry.ExpiredAt(now) {
			delete(s.entries, key)
			count++
		}
	}
	return count, nil
}
