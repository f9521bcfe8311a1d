// Package buildcache persists emitted IR keyed by source content hash so
// repeated compiles of unchanged files skip the pipeline.
package buildcache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS builds (
	id         TEXT PRIMARY KEY,
	path       TEXT NOT NULL,
	hash       TEXT NOT NULL UNIQUE,
	ir         TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS builds_hash ON builds(hash);
`

// Cache is a sqlite-backed store of build outputs.
type Cache struct {
	db *sql.DB
}

// DefaultDir returns the per-user cache location.
func DefaultDir() string {
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, "forge")
	}
	return ".forge-cache"
}

// Open creates or opens the cache database under dir.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("buildcache: creating %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "builds.db"))
	if err != nil {
		return nil, fmt.Errorf("buildcache: opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("buildcache: initializing schema: %w", err)
	}

	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// HashSource returns the cache key for a source text.
func HashSource(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached IR for a source hash.
func (c *Cache) Get(hash string) (string, bool, error) {
	var irText string
	err := c.db.QueryRow(`SELECT ir FROM builds WHERE hash = ?`, hash).Scan(&irText)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("buildcache: lookup: %w", err)
	}
	return irText, true, nil
}

// Put stores the IR for a source hash, replacing any previous entry.
func (c *Cache) Put(path, hash, irText string) error {
	_, err := c.db.Exec(
		`INSERT INTO builds (id, path, hash, ir, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(hash) DO UPDATE SET path = excluded.path, ir = excluded.ir, created_at = excluded.created_at`,
		uuid.NewString(), path, hash, irText, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("buildcache: store: %w", err)
	}
	return nil
}

// Clear drops every cached build.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec(`DELETE FROM builds`); err != nil {
		return fmt.Errorf("buildcache: clear: %w", err)
	}
	return nil
}

// Stats describes the cache contents.
type Stats struct {
	Entries int
	Oldest  time.Time
	Newest  time.Time
}

func (c *Cache) Stats() (Stats, error) {
	var stats Stats
	err := c.db.QueryRow(`SELECT COUNT(*) FROM builds`).Scan(&stats.Entries)
	if err != nil {
		return stats, fmt.Errorf("buildcache: stats: %w", err)
	}
	if stats.Entries == 0 {
		return stats, nil
	}
	err = c.db.QueryRow(`SELECT created_at FROM builds ORDER BY created_at ASC LIMIT 1`).
		Scan(&stats.Oldest)
	if err != nil {
		return stats, fmt.Errorf("buildcache: stats: %w", err)
	}
	err = c.db.QueryRow(`SELECT created_at FROM builds ORDER BY created_at DESC LIMIT 1`).
		Scan(&stats.Newest)
	if err != nil {
		return stats, fmt.Errorf("buildcache: stats: %w", err)
	}
	return stats, nil
}
