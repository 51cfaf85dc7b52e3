// Package cache persists the path-to-ID and folder-size projections between
// invocations. Entries are independently upserted so a crash can never leave
// a half-written store, and a clear bumps a generation counter that stales
// every size computed before it.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

const busyTimeoutMS = 5000

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS paths (
	path TEXT PRIMARY KEY,
	id   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sizes (
	id         TEXT PRIMARY KEY,
	bytes      INTEGER NOT NULL,
	generation INTEGER NOT NULL
);
INSERT OR IGNORE INTO meta (key, value) VALUES ('generation', 0);
`

// Cache is a durable key-value store for resolved paths and aggregate sizes.
// Reads are safe for concurrent use; concurrent writes to the same key are
// serialized by sqlite with last-writer-wins, which is acceptable because
// values are idempotent recomputations of the same fact.
type Cache struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if necessary) the cache file at path.
func Open(path string) (*Cache, error) {
	return open(fmt.Sprintf("file:%s?_busy_timeout=%d", path, busyTimeoutMS))
}

// OpenMemory opens a throwaway in-memory cache, used by tests.
func OpenMemory() (*Cache, error) {
	return open(":memory:")
}

func open(dsn string) (*Cache, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// LookupPath returns the object ID previously stored for a normalized path.
func (c *Cache) LookupPath(path string) (id string, ok bool, err error) {
	err = c.db.QueryRow(`SELECT id FROM paths WHERE path = ?`, path).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup path %q: %w", path, err)
	}
	return id, true, nil
}

// StorePath records a path-to-ID mapping, overwriting any previous value.
func (c *Cache) StorePath(path, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.db.Exec(`
		INSERT INTO paths (path, id) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET id = excluded.id`, path, id)
	if err != nil {
		return fmt.Errorf("store path %q: %w", path, err)
	}
	return nil
}

// LookupSize returns the aggregate size stored for key, but only if it was
// computed under the current generation.
func (c *Cache) LookupSize(key string) (bytes int64, ok bool, err error) {
	err = c.db.QueryRow(`
		SELECT bytes FROM sizes
		WHERE id = ? AND generation = (SELECT value FROM meta WHERE key = 'generation')`, key).
		Scan(&bytes)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup size %q: %w", key, err)
	}
	return bytes, true, nil
}

// StoreSize records an aggregate size under the current generation,
// overwriting any previous value.
func (c *Cache) StoreSize(key string, bytes int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.db.Exec(`
		INSERT INTO sizes (id, bytes, generation)
		VALUES (?, ?, (SELECT value FROM meta WHERE key = 'generation'))
		ON CONFLICT(id) DO UPDATE SET bytes = excluded.bytes, generation = excluded.generation`,
		key, bytes)
	if err != nil {
		return fmt.Errorf("store size %q: %w", key, err)
	}
	return nil
}

// Generation returns the current cache generation.
func (c *Cache) Generation() (int64, error) {
	var gen int64
	if err := c.db.QueryRow(`SELECT value FROM meta WHERE key = 'generation'`).Scan(&gen); err != nil {
		return 0, fmt.Errorf("read generation: %w", err)
	}
	return gen, nil
}

// Clear drops every entry and bumps the generation in a single transaction.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM paths`); err != nil {
		return fmt.Errorf("clear paths: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM sizes`); err != nil {
		return fmt.Errorf("clear sizes: %w", err)
	}
	if _, err := tx.Exec(`UPDATE meta SET value = value + 1 WHERE key = 'generation'`); err != nil {
		return fmt.Errorf("bump generation: %w", err)
	}
	return tx.Commit()
}
