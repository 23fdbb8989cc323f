package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// MigrationsFS holds the embedded migration files. The migrations package
// registers its embed.FS here from an init function so this package does not
// depend on the repository layout.
var MigrationsFS embed.FS

// MigrationsDir is the directory inside MigrationsFS containing the SQL
// files.
var MigrationsDir = "."

const upSuffix = ".up.sql"

// Migrate applies all pending schema migrations in lexical filename order.
//
// Each migration runs in its own transaction and is recorded in the
// schema_migrations table. Already-applied migrations are skipped, so
// Migrate is safe to call on every startup.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`); err != nil {
		return fmt.Errorf("%w: creating schema_migrations: %v", ErrMigrationFailed, err)
	}

	applied, err := d.appliedVersions(ctx)
	if err != nil {
		return err
	}

	entries, err := fs.ReadDir(MigrationsFS, MigrationsDir)
	if err != nil {
		return fmt.Errorf("%w: reading migrations: %v", ErrMigrationFailed, err)
	}

	var pending []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, upSuffix) {
			continue
		}
		version := strings.TrimSuffix(name, upSuffix)
		if !applied[version] {
			pending = append(pending, name)
		}
	}
	sort.Strings(pending)

	for _, name := range pending {
		if err := d.applyMigration(ctx, name); err != nil {
			return err
		}
	}

	return nil
}

func (d *DB) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := d.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("%w: querying applied versions: %v", ErrMigrationFailed, err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("%w: scanning version: %v", ErrMigrationFailed, err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating versions: %v", ErrMigrationFailed, err)
	}
	return applied, nil
}

func (d *DB) applyMigration(ctx context.Context, name string) error {
	content, err := fs.ReadFile(MigrationsFS, path.Join(MigrationsDir, name))
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrMigrationFailed, name, err)
	}

	version := strings.TrimSuffix(name, upSuffix)

	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction for %s: %v", ErrMigrationFailed, name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("%w: applying %s: %v", ErrMigrationFailed, name, err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("%w: recording %s: %v", ErrMigrationFailed, name, err)
	}

	return tx.Commit()
}
