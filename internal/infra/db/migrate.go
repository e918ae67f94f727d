package db

import "database/sql"

// MigrateUp creates the cache_records table and its index when they do not exist.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS cache_records (
    namespace  TEXT        NOT NULL,
    key        TEXT        NOT NULL,
    payload    JSONB       NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (namespace, key)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_cache_records_updated_at ON cache_records(namespace, updated_at)`); err != nil {
		return err
	}

	return nil
}
