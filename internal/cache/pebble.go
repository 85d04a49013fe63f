package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cockroachdb/pebble/v2"
)

// PebbleStore implements Store on a PebbleDB LSM key-value store. It is the
// default durable backend.
//
// Key schema:
//   - entry:<key>            -> Entry JSON
//   - cat:<category>:<key>   -> (empty, category membership index)
type PebbleStore struct {
	db *pebble.DB
}

const (
	pebbleEntryPrefix    = "entry:"
	pebbleCategoryPrefix = "cat:"
)

// NewPebbleStore opens (or creates) a Pebble database at path.
func NewPebbleStore(path string) (*PebbleStore, error) {
	if path == "" {
		return nil, errors.New("cache path cannot be empty")
	}

	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble cache at %s: %w", path, err)
	}

	return &PebbleStore{db: db}, nil
}

// Close closes the database.
func (s *PebbleStore) Close() error {
	return s.db.Close()
}

func pebbleEntryKey(key string) []byte {
	return []byte(pebbleEntryPrefix + key)
}

func pebbleCategoryKey(category Category, key string) []byte {
	return []byte(pebbleCategoryPrefix + string(category) + ":" + key)
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix, for use as an iterator upper bound.
func prefixUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	for i := len(bound) - 1; i >= 0; i-- {
		if bound[i] < 0xff {
			bound[i]++
			return bound[:i+1]
		}
	}
	return nil // prefix is all 0xff, no upper bound
}

// Get implements Store.
func (s *PebbleStore) Get(key string) (*Entry, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	value, closer, err := s.db.Get(pebbleEntryKey(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("pebble get: %w", err)
	}
	defer closer.Close()

	var entry Entry
	if err := json.Unmarshal(value, &entry); err != nil {
		return nil, fmt.Errorf("corrupt cache entry for key %s: %w", key, err)
	}

	return &entry, nil
}

// Put implements Store. The entry row and its category index row are written
// in one batch so readers never observe a half-indexed entry.
func (s *PebbleStore) Put(entry *Entry) error {
	if entry == nil || entry.Key == "" {
		return ErrInvalidKey
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	if err := batch.Set(pebbleEntryKey(entry.Key), data, nil); err != nil {
		return fmt.Errorf("pebble batch set: %w", err)
	}
	if err := batch.Set(pebbleCategoryKey(entry.Category, entry.Key), nil, nil); err != nil {
		return fmt.Errorf("pebble batch set index: %w", err)
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("pebble commit: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *PebbleStore) Delete(key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	entry, err := s.Get(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	if err := batch.Delete(pebbleEntryKey(key), nil); err != nil {
		return fmt.Errorf("pebble batch delete: %w", err)
	}
	if err := batch.Delete(pebbleCategoryKey(entry.Category, key), nil); err != nil {
		return fmt.Errorf("pebble batch delete index: %w", err)
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("pebble commit: %w", err)
	}
	return nil
}

// Touch implements Store.
func (s *PebbleStore) Touch(key string, at time.Time) error {
	entry, err := s.Get(key)
	if err != nil {
		return err
	}

	entry.LastAccessedAt = at

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := s.db.Set(pebbleEntryKey(key), data, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set: %w", err)
	}
	return nil
}

// listCategoryKeys returns the raw cache keys indexed under category.
func (s *PebbleStore) listCategoryKeys(category Category) ([]string, error) {
	prefix := []byte(pebbleCategoryPrefix + string(category) + ":")
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("pebble iterator: %w", err)
	}
	defer iter.Close()

	var keys []string
	for iter.First(); iter.Valid(); iter.Next() {
		keys = append(keys, string(bytes.TrimPrefix(iter.Key(), prefix)))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("pebble iteration: %w", err)
	}
	return keys, nil
}

// ListByCategory implements Store.
func (s *PebbleStore) ListByCategory(category Category) ([]*Entry, error) {
	keys, err := s.listCategoryKeys(category)
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, len(keys))
	for _, key := range keys {
		entry, err := s.Get(key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue // index row without entry, racing delete
			}
			return nil, err
		}
		entries = append(entries, entry)
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
func (s *PebbleStore) CountByCategory(category Category) (int, error) {
	keys, err := s.listCategoryKeys(category)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// ClearCategory implements Store.
func (s *PebbleStore) ClearCategory(category Category) (int, error) {
	keys, err := s.listCategoryKeys(category)
	if err != nil {
		return 0, err
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	for _, key := range keys {
		if err := batch.Delete(pebbleEntryKey(key), nil); err != nil {
			return 0, fmt.Errorf("pebble batch delete: %w", err)
		}
		if err := batch.Delete(pebbleCategoryKey(category, key), nil); err != nil {
			return 0, fmt.Errorf("pebble batch delete index: %w", err)
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return 0, fmt.Errorf("pebble commit: %w", err)
	}
	return len(keys), nil
}

// ClearAll implements Store.
func (s *PebbleStore) ClearAll() (int, error) {
	count := 0
	for _, category := range Categories() {
		n, err := s.CountByCategory(category)
		if err != nil {
			return 0, err
		}
		count += n
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	for _, prefix := range []string{pebbleEntryPrefix, pebbleCategoryPrefix} {
		start := []byte(prefix)
		if err := batch.DeleteRange(start, prefixUpperBound(start), nil); err != nil {
			return 0, fmt.Errorf("pebble delete range: %w", err)
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return 0, fmt.Errorf("pebble commit: %w", err)
	}
	return count, nil
}

// DeleteExpired implements Store.
func (s *PebbleStore) DeleteExpired(now time.Time) (int, error) {
	prefix := []byte(pebbleEntryPrefix)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return 0, fmt.Errorf("pebble iterator: %w", err)
	}

	var stale []*Entry
	for iter.First(); iter.Valid(); iter.Next() {
		var entry Entry
		if err := json.Unmarshal(iter.Value(), &entry); err != nil {
			continue // skip corrupt rows, they are removed by ClearAll only
		}
		if entry.ExpiredAt(now) {
			e := entry
			stale = append(stale, &e)
		}
	}
	iterErr := iter.Error()
	if err := iter.Close(); err != nil {
		return 0, fmt.Errorf("pebble iterator close: %w", err)
	}
	if iterErr != nil {
		return 0, fmt.Errorf("pebble iteration: %w", iterErr)
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	for _, entry := range stale {
		if err := batch.Delete(pebbleEntryKey(entry.Key), nil); err != nil {
			return 0, fmt.Errorf("pebble batch delete: %w", err)
		}
		if err := batch.Delete(pebbleCategoryKey(entry.Category, entry.Key), nil); err != nil {
			return 0, fmt.Errorf("pebble batch delete index: %w", err)
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return 0, fmt.Errorf("pebble commit: %w", err)
	}
	return len(stale), nil
}
