// Package cache provides SQLite-backed caching of fetched task stories.
// The cache is stored in .asana-mailer/stories.db and is keyed by task gid
// with the task's modified_at timestamp as the invalidation fence: Asana
// bumps modified_at whenever a story is added, so an entry whose stored
// timestamp matches the live task is still complete.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/palantir/asana-mailer/internal/asana"
)

// DBFileName is the name of the cache database file.
const DBFileName = "stories.db"

// Cache manages the stories.db SQLite database.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the cache database inside dir.
// It initializes the schema if the database is new.
func Open(dir string) (*Cache, error) {
	dbPath := filepath.Join(dir, DBFileName)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	cache := &Cache{db: db, dbPath: dbPath}

	// Initialize schema
	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return cache, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached stories for a task. The entry only counts as a hit
// when the stored modified_at matches the live task's; any internal error is
// reported as a miss so a broken cache never blocks a run.
func (c *Cache) Get(taskGID, modifiedAt string) ([]asana.Story, bool) {
	var storedModifiedAt string
	var blob []byte
	err := c.db.QueryRow(
		"SELECT modified_at, stories FROM stories WHERE task_gid = ?", taskGID,
	).Scan(&storedModifiedAt, &blob)
	if err != nil {
		return nil, false
	}
	if storedModifiedAt != modifiedAt {
		return nil, false
	}

	var stories []asana.Story
	if err := json.Unmarshal(blob, &stories); err != nil {
		return nil, false
	}
	return stories, true
}

// Put stores the stories for a task, replacing any previous entry.
func (c *Cache) Put(taskGID, modifiedAt string, stories []asana.Story) error {
	blob, err := json.Marshal(stories)
	if err != nil {
		return fmt.Errorf("encode stories: %w", err)
	}

	_, err = c.db.Exec(
		`INSERT INTO stories (task_gid, modified_at, stories, fetched_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(task_gid) DO UPDATE SET
		   modified_at = excluded.modified_at,
		   stories = excluded.stories,
		   fetched_at = excluded.fetched_at`,
		taskGID, modifiedAt, blob, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store stories: %w", err)
	}
	return nil
}

// Clear removes all cached stories.
func (c *Cache) Clear() error {
	_, err := c.db.Exec("DELETE FROM stories")
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.dbPath
}

// Stats returns cache statistics.
type Stats struct {
	StoryCount int64
}

// GetStats returns statistics about the cache contents.
func (c *Cache) GetStats() (*Stats, error) {
	var stats Stats

	err := c.db.QueryRow("SELECT COUNT(*) FROM stories").Scan(&stats.StoryCount)
	if err != nil {
		return nil, fmt.Errorf("count stories: %w", err)
	}

	return &stats, nil
}
