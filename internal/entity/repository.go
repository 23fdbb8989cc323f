package entity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for entity persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves an entity by its unique identifier.
	// Returns ErrNotFound if the entity does not exist.
	GetByID(ctx context.Context, entityID string) (Snapshot, error)

	// List retrieves all entities.
	List(ctx context.Context) ([]Snapshot, error)

	// ListByDomain retrieves all entities in a specific domain (light, cover, etc.).
	ListByDomain(ctx context.Context, domain string) ([]Snapshot, error)

	// Create inserts a new entity.
	// Returns ErrExists if an entity with the same ID already exists.
	Create(ctx context.Context, snap Snapshot) error

	// Delete removes an entity by ID.
	// Returns ErrNotFound if the entity does not exist.
	Delete(ctx context.Context, entityID string) error

	// UpdateState replaces the state string and attributes of an entity.
	// This is optimised for frequent state changes from the home bus.
	// Returns ErrNotFound if the entity does not exist.
	UpdateState(ctx context.Context, entityID, state string, attributes map[string]any) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository backed by the given database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// entityColumns is the column list shared by all SELECT queries.
const entityColumns = "entity_id, state, attributes, updated_at"

// GetByID retrieves an entity by ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, entityID string) (Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+entityColumns+" FROM entities WHERE entity_id = ?", entityID)

	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("querying entity %q: %w", entityID, err)
	}
	return snap, nil
}

// List retrieves all entities ordered by ID.
func (r *SQLiteRepository) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+entityColumns+" FROM entities ORDER BY entity_id")
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	return collectSnapshots(rows)
}

// ListByDomain retrieves all entities in a domain, ordered by ID.
func (r *SQLiteRepository) ListByDomain(ctx context.Context, domain string) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+entityColumns+" FROM entities WHERE domain = ? ORDER BY entity_id", domain)
	if err != nil {
		return nil, fmt.Errorf("listing entities for domain %q: %w", domain, err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	return collectSnapshots(rows)
}

// Create inserts a new entity.
func (r *SQLiteRepository) Create(ctx context.Context, snap Snapshot) error {
	if !ValidID(snap.EntityID) {
		return fmt.Errorf("%w: %q", ErrInvalidID, snap.EntityID)
	}

	attrs, err := marshalAttributes(snap.Attributes)
	if err != nil {
		return err
	}

	updatedAt := snap.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO entities (entity_id, domain, state, attributes, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		snap.EntityID, snap.Domain(), snap.State, attrs, updatedAt.Format(time.RFC3339Nano))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", ErrExists, snap.EntityID)
		}
		return fmt.Errorf("inserting entity %q: %w", snap.EntityID, err)
	}
	return nil
}

// Delete removes an entity.
func (r *SQLiteRepository) Delete(ctx context.Context, entityID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM entities WHERE entity_id = ?", entityID)
	if err != nil {
		return fmt.Errorf("deleting entity %q: %w", entityID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting entity %q: %w", entityID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateState replaces the state and attributes of an entity.
func (r *SQLiteRepository) UpdateState(ctx context.Context, entityID, state string, attributes map[string]any) error {
	attrs, err := marshalAttributes(attributes)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE entities SET state = ?, attributes = ?, updated_at = ? WHERE entity_id = ?",
		state, attrs, time.Now().UTC().Format(time.RFC3339Nano), entityID)
	if err != nil {
		return fmt.Errorf("updating state of %q: %w", entityID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating state of %q: %w", entityID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// marshalAttributes serialises an attribute map, treating nil as empty.
func marshalAttributes(attributes map[string]any) (string, error) {
	if attributes == nil {
		return "{}", nil
	}
	data, err := json.Marshal(attributes)
	if err != nil {
		return "", fmt.Errorf("marshalling attributes: %w", err)
	}
	return string(data), nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanSnapshot.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSnapshot reads one entity row into a Snapshot.
func scanSnapshot(row rowScanner) (Snapshot, error) {
	var (
		snap      Snapshot
		attrs     string
		updatedAt string
	)
	if err := row.Scan(&snap.EntityID, &snap.State, &attrs, &updatedAt); err != nil {
		return Snapshot{}, err
	}

	if err := json.Unmarshal([]byte(attrs), &snap.Attributes); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshalling attributes of %q: %w", snap.EntityID, err)
	}

	ts, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parsing updated_at of %q: %w", snap.EntityID, err)
	}
	snap.UpdatedAt = ts

	return snap, nil
}

// collectSnapshots drains a result set into a slice.
func collectSnapshots(rows *sql.Rows) ([]Snapshot, error) {
	var snaps []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	return snaps, nil
}

// isUniqueViolation reports whether err is a SQLite unique constraint failure.
// String matching avoids a hard dependency on the driver's error type here.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
