package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/xiaoyuanzhu-com/todos/log"
	_ "modernc.org/sqlite"
)

var logger = log.GetLogger("DB")

const (
	driverCGO  = "sqlite3"
	driverPure = "sqlite"
)

// DB is the session backing store
type DB struct {
	conn       *sql.DB
	logQueries bool
}

// Open opens the database, applies pragmas and runs pending migrations
func Open(cfg Config) (*DB, error) {
	if cfg.Driver == "" {
		cfg.Driver = driverCGO
	}

	// Ensure database directory exists
	if err := ensureDatabaseDirectory(cfg.Path); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn, err := buildDSN(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite works best with a single writer
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 1
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 1
	}
	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(maxIdle)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.Info().
		Str("path", cfg.Path).
		Str("driver", cfg.Driver).
		Msg("database initialized")

	return &DB{conn: conn, logQueries: cfg.LogQueries}, nil
}

// buildDSN adds WAL, busy timeout and synchronous pragmas in the syntax
// each driver understands
func buildDSN(driver, path string) (string, error) {
	switch driver {
	case driverCGO:
		return path + "?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", nil
	case driverPure:
		return path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Close closes the database connection
func (d *DB) Close() error {
	if d == nil || d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

// ensureDatabaseDirectory creates the directory for the database file if it doesn't exist
func ensureDatabaseDirectory(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		logger.Info().Str("dir", dir).Msg("created database directory")
	}
	return nil
}

func (d *DB) logQuery(kind string, query string, params ...any) {
	if !d.logQueries {
		return
	}
	logger.Debug().
		Str("kind", kind).
		Str("sql", query).
		Interface("params", params).
		Msg("db query")
}

// NowMs returns the current time as Unix milliseconds
func NowMs() int64 {
	return time.Now().UnixMilli()
}
