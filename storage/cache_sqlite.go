package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCache persists recognitions in <dataDir>/cache.db.
type SQLiteCache struct {
	db *sql.DB
}

func NewSQLiteCache(dataDir string) (*SQLiteCache, error) {
	dbPath := filepath.Join(dataDir, "cache.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	cache := &SQLiteCache{db: db}

	if err := cache.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return cache, nil
}

func (c *SQLiteCache) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS recognitions (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	if _, err := c.db.Exec(schema); err != nil {
		return err
	}

	// hits was added after the first release
	has, err := c.columnExists("recognitions", "hits")
	if err != nil {
		return fmt.Errorf("failed to check for hits column: %w", err)
	}
	if !has {
		if _, err := c.db.Exec(`ALTER TABLE recognitions ADD COLUMN hits INTEGER NOT NULL DEFAULT 0`); err != nil {
			return fmt.Errorf("failed to add hits column: %w", err)
		}
	}
	return nil
}

func (c *SQLiteCache) columnExists(table, column string) (bool, error) {
	rows, err := c.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

func (c *SQLiteCache) Get(key string) (string, bool) {
	var value string
	err := c.db.QueryRow(`SELECT value FROM recognitions WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", false
	}
	_, _ = c.db.Exec(`UPDATE recognitions SET hits = hits + 1 WHERE key = ?`, key)
	return value, true
}

func (c *SQLiteCache) Put(key, value string) error {
	_, err := c.db.Exec(`
		INSERT INTO recognitions (key, value, created_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, created_at = excluded.created_at
	`, key, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to store recognition: %w", err)
	}
	return nil
}

// Hits reports how many times key has been served from the cache.
func (c *SQLiteCache) Hits(key string) (int, error) {
	var hits int
	err := c.db.QueryRow(`SELECT hits FROM recognitions WHERE key = ?`, key).Scan(&hits)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read hits: %w", err)
	}
	return hits, nil
}

func (c *SQLiteCache) Clear() error {
	if _, err := c.db.Exec(`DELETE FROM recognitions`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
