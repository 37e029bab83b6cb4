package db

import (
	"database/sql"
)

func init() {
	RegisterMigration(Migration{
		Version:     1,
		Description: "Create sessions table holding serialized todo lists",
		Up:          migration001_sessions,
	})
}

func migration001_sessions(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE sessions (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL,
			last_used_at INTEGER NOT NULL
		);
		CREATE INDEX idx_sessions_expires_at ON sessions(expires_at);
	`)
	return err
}
