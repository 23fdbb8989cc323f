package entity

import (
	"context"
	"fmt"
	"sync"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// StateListener is notified after an entity's state has been committed.
// The snapshot is a private copy; listeners may retain it.
//
// Listeners run synchronously on the caller's goroutine and should not block.
type StateListener func(snap Snapshot)

// Registry provides entity access with caching and thread safety.
// It wraps a Repository and adds an in-memory cache for fast lookups,
// which matters because every SYNC intent reads the whole table.
//
// The cache is populated on startup via RefreshCache() and kept in sync
// by cache-updating write operations.
//
// All public methods are thread-safe.
type Registry struct {
	repo     Repository
	cache    map[string]Snapshot // Cached snapshots by entity ID
	cacheMu  sync.RWMutex        // Protects cache
	logger   Logger
	listener StateListener
}

// NewRegistry creates a new entity registry.
// The repository is used for persistence; the registry adds caching.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		cache:  make(map[string]Snapshot),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetStateListener registers a callback invoked after every committed state
// change. Used to feed the WebSocket hub and telemetry without coupling the
// registry to either.
func (r *Registry) SetStateListener(listener StateListener) {
	r.listener = listener
}

// RefreshCache reloads all entities from the repository into the cache.
// This should be called on application startup.
func (r *Registry) RefreshCache(ctx context.Context) error {
	snaps, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading entities: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	r.cache = make(map[string]Snapshot, len(snaps))
	for _, s := range snaps {
		r.cache[s.EntityID] = s.DeepCopy()
	}

	r.logger.Info("entity cache refreshed", "count", len(snaps))
	return nil
}

// Get retrieves an entity by ID.
// Returns ErrNotFound if the entity does not exist.
// The returned snapshot is a deep copy; callers can safely modify it.
func (r *Registry) Get(ctx context.Context, entityID string) (Snapshot, error) {
	r.cacheMu.RLock()
	cached, ok := r.cache[entityID]
	r.cacheMu.RUnlock()

	if ok {
		return cached.DeepCopy(), nil
	}

	// Fall back to repository (might be a new entity not yet cached)
	snap, err := r.repo.GetByID(ctx, entityID)
	if err != nil {
		return Snapshot{}, err
	}

	r.cacheMu.Lock()
	r.cache[entityID] = snap.DeepCopy()
	r.cacheMu.Unlock()

	return snap, nil
}

// List retrieves all entities.
// The returned snapshots are deep copies; callers can safely modify them.
func (r *Registry) List(ctx context.Context) ([]Snapshot, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	if len(r.cache) > 0 {
		snaps := make([]Snapshot, 0, len(r.cache))
		for _, s := range r.cache {
			snaps = append(snaps, s.DeepCopy())
		}
		return snaps, nil
	}

	return r.repo.List(ctx)
}

// ListByDomain retrieves all entities in a specific domain.
// The returned snapshots are deep copies; callers can safely modify them.
func (r *Registry) ListByDomain(ctx context.Context, domain string) ([]Snapshot, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	if len(r.cache) > 0 {
		var snaps []Snapshot
		for _, s := range r.cache {
			if s.Domain() == domain {
				snaps = append(snaps, s.DeepCopy())
			}
		}
		return snaps, nil
	}

	return r.repo.ListByDomain(ctx, domain)
}

// Create inserts a new entity and caches it.
// Returns ErrExists if the ID is already taken, ErrInvalidID for bad IDs.
func (r *Registry) Create(ctx context.Context, snap Snapshot) error {
	if !ValidID(snap.EntityID) {
		return fmt.Errorf("%w: %q", ErrInvalidID, snap.EntityID)
	}

	if err := r.repo.Create(ctx, snap); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.cache[snap.EntityID] = snap.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Info("entity created", "entity_id", snap.EntityID, "domain", snap.Domain())
	return nil
}

// Delete removes an entity from the repository and the cache.
// Returns ErrNotFound if the entity does not exist.
func (r *Registry) Delete(ctx context.Context, entityID string) error {
	if err := r.repo.Delete(ctx, entityID); err != nil {
		return err
	}

	r.cacheMu.Lock()
	delete(r.cache, entityID)
	r.cacheMu.Unlock()

	r.logger.Info("entity deleted", "entity_id", entityID)
	return nil
}

// SetState replaces an entity's state string and attributes, persists the
// change, updates the cache, and notifies the state listener.
// Returns ErrNotFound if the entity does not exist.
func (r *Registry) SetState(ctx context.Context, entityID, state string, attributes map[string]any) error {
	if err := r.repo.UpdateState(ctx, entityID, state, attributes); err != nil {
		return err
	}

	// Re-read so the cache carries the repository's updated_at timestamp.
	snap, err := r.repo.GetByID(ctx, entityID)
	if err != nil {
		return fmt.Errorf("re-reading entity %q after state update: %w", entityID, err)
	}

	r.cacheMu.Lock()
	r.cache[entityID] = snap.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Debug("entity state updated", "entity_id", entityID, "state", state)

	if r.listener != nil {
		r.listener(snap.DeepCopy())
	}
	return nil
}

// Count returns the number of cached entities.
func (r *Registry) Count() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}
