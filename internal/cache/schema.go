package cache

// schemaSQL defines the SQLite schema for the cache database.
// One row per task: the raw story list as JSON, fenced by the task's
// modified_at timestamp at fetch time.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS stories (
    task_gid TEXT PRIMARY KEY,
    modified_at TEXT NOT NULL,
    stories BLOB NOT NULL,
    fetched_at TEXT NOT NULL
);
`

// initSchema creates the database tables if they don't exist.
func (c *Cache) initSchema() error {
	_, err := c.db.Exec(schemaSQL)
	return err
}
