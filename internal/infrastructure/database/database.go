package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nerrad567/gray-logic-assistant/internal/infrastructure/config"
)

var (
	// ErrOpenFailed indicates the database could not be opened.
	ErrOpenFailed = errors.New("database: open failed")

	// ErrMigrationFailed indicates a schema migration did not apply cleanly.
	ErrMigrationFailed = errors.New("database: migration failed")
)

// DB wraps the SQLite connection pool.
type DB struct {
	*sql.DB
	path string
}

// Open opens (creating if necessary) the SQLite database at the configured
// path and verifies connectivity.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: creating directory %s: %v", ErrOpenFailed, dir, err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on", cfg.Path, cfg.BusyTimeout*1000)
	if cfg.WALMode {
		dsn += "&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	// SQLite allows one writer; a single connection avoids lock contention
	// between the API and the MQTT subscriber.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrOpenFailed, err)
	}

	return &DB{DB: db, path: cfg.Path}, nil
}

// Path returns the filesystem path of the database file.
func (d *DB) Path() string {
	return d.path
}

// HealthCheck verifies the database is reachable.
func (d *DB) HealthCheck(ctx context.Context) error {
	var one int
	if err := d.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}
	return nil
}
