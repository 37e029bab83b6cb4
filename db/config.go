package db

import "time"

// Config holds database configuration
type Config struct {
	Path            string
	Driver          string // "sqlite3" (mattn, cgo) or "sqlite" (modernc, pure Go)
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogQueries      bool
}
