// Package estimate supplies the "estimated total used bytes" denominator
// that progress reporting divides by. The statfs-based figure covers whole
// mounts; for subtree scans a small cache remembers the byte total a
// previous scan of the same root actually observed, which is a much better
// denominator the next time around.
package estimate

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one remembered estimate.
type Entry struct {
	Root       string
	TotalBytes int64
	ScannedAt  time.Time
}

// Cache persists the last observed byte total per scan root. It stores only
// that scalar, never scan results.
type Cache struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS estimates (
    root TEXT PRIMARY KEY,
    total_bytes INTEGER NOT NULL,
    scanned_at INTEGER NOT NULL
);
`

// Open opens (creating if needed) the estimate cache at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening estimate cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing estimate cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// DefaultPath returns the per-user cache location.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "scan-categories", "estimates.db"), nil
}

// Get returns the remembered estimate for root, or ok=false when none
// exists.
func (c *Cache) Get(root string) (Entry, bool, error) {
	var e Entry
	var scannedAt int64
	row := c.db.QueryRow(`SELECT root, total_bytes, scanned_at FROM estimates WHERE root = ?`, root)
	if err := row.Scan(&e.Root, &e.TotalBytes, &scannedAt); err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	e.ScannedAt = time.Unix(scannedAt, 0)
	return e, true, nil
}

// Put stores or replaces the estimate for root.
func (c *Cache) Put(root string, totalBytes int64) error {
	_, err := c.db.Exec(
		`INSERT INTO estimates (root, total_bytes, scanned_at) VALUES (?, ?, ?)
		 ON CONFLICT(root) DO UPDATE SET total_bytes = excluded.total_bytes, scanned_at = excluded.scanned_at`,
		root, totalBytes, time.Now().Unix(),
	)
	return err
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Denominator picks the progress denominator for a scan of root covering
// the given mount roots: a cached previous total when available, otherwise
// the statfs-reported used bytes of the mounts. A nil cache skips straight
// to statfs.
func Denominator(c *Cache, root string, mountRoots []string) int64 {
	if c != nil {
		if e, ok, err := c.Get(root); err == nil && ok && e.TotalBytes > 0 {
			return e.TotalBytes
		}
	}
	return UsedBytesTotal(mountRoots)
}
