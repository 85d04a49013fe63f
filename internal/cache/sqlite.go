package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// Registers the "sqlite3" database/sql driver.
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store on a single SQLite database file. It exists
// for deployments that want the cache inspectable with standard SQLite
// tooling; PebbleStore is the default.
//
// Timestamps are stored as Unix nanoseconds so ordering and expiry
// comparisons work directly in SQL.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key              TEXT PRIMARY KEY,
	category         TEXT NOT NULL,
	payload          BLOB NOT NULL,
	created_at       INTEGER NOT NULL,
	expires_at       INTEGER NOT NULL,
	last_accessed_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_entries_category ON cache_entries(category);
CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries(expires_at);
`

// NewSQLiteStore opens (or creates) the SQLite cache database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("cache path cannot be empty")
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite cache at %s: %w", path, err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize sqlite cache schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanEntry(scan func(dest ...any) error) (*Entry, error) {
	var (
		entry                            Entry
		payload                          []byte
		createdAt, expiresAt, accessedAt int64
	)
	if err := scan(&entry.Key, &entry.Category, &payload, &createdAt, &expiresAt, &accessedAt); err != nil {
		return nil, err
	}
	entry.Payload = json.RawMessage(payload)
	entry.CreatedAt = time.Unix(0, createdAt)
	entry.ExpiresAt = time.Unix(0, expiresAt)
	entry.LastAccessedAt = time.Unix(0, accessedAt)
	return &entry, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(key string) (*Entry, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	row := s.db.QueryRow(
		`SELECT key, category, payload, created_at, expires_at, last_accessed_at
		 FROM cache_entries WHERE key = ?`, key)

	entry, err := scanEntry(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("sqlite get: %w", err)
	}
	return entry, nil
}

// Put implements Store. INSERT OR REPLACE keeps the upsert atomic.
func (s *SQLiteStore) Put(entry *Entry) error {
	if entry == nil || entry.Key == "" {
		return ErrInvalidKey
	}

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO cache_entries
		 (key, category, payload, created_at, expires_at, last_accessed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Key,
		string(entry.Category),
		[]byte(entry.Payload),
		entry.CreatedAt.UnixNano(),
		entry.ExpiresAt.UnixNano(),
		entry.LastAccessedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite put: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	if _, err := s.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite delete: %w", err)
	}
	return nil
}

// Touch implements Store.
func (s *SQLiteStore) Touch(key string, at time.Time) error {
	if key == "" {
		return ErrInvalidKey
	}

	res, err := s.db.Exec(
		`UPDATE cache_entries SET last_accessed_at = ? WHERE key = ?`,
		at.UnixNano(), key)
	if err != nil {
		return fmt.Errorf("sqlite touch: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite touch: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByCategory implements Store.
func (s *SQLiteStore) ListByCategory(category Category) ([]*Entry, error) {
	rows, err := s.db.Query(
		`SELECT key, category, payload, created_at, expires_at, last_accessed_at
		 FROM cache_entries WHERE category = ?
		 ORDER BY last_accessed_at ASC, created_at ASC`, string(category))
	if err != nil {
		return nil, fmt.Errorf("sqlite list: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite list scan: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite list rows: %w", err)
	}
	return entries, nil
}

// CountByCategory implements Store.
func (s *SQLiteStore) CountByCategory(category Category) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM cache_entries WHERE category = ?`,
		string(category)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite count: %w", err)
	}
	return count, nil
}

// ClearCategory implements Store.
func (s *SQLiteStore) ClearCategory(category Category) (int, error) {
	res, err := s.db.Exec(`DELETE FROM cache_entries WHERE category = ?`, string(category))
	if err != nil {
		return 0, fmt.Errorf("sqlite clear category: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite clear category: %w", err)
	}
	return int(deleted), nil
}

// ClearAll implements Store.
func (s *SQLiteStore) ClearAll() (int, error) {
	res, err := s.db.Exec(`DELETE FROM cache_entries`)
	if err != nil {
		return 0, fmt.Errorf("sqlite clear: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite clear: %w", err)
	}
	return int(deleted), nil
}

// DeleteExpired implements Store.
func (s *SQLiteStore) DeleteExpired(now time.Time) (int, error) {
	res, err := s.db.Exec(`DELETE FROM cache_entries WHERE expires_at <= ?`, now.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("sqlite delete expired: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite delete expired: %w", err)
	}
	return int(deleted), nil
}
