// Package entity provides the entity registry for Gray Logic Assistant.
//
// An entity is a single controllable or observable thing in the home,
// identified by "<domain>.<object_id>" (for example "light.kitchen" or
// "cover.garage"). The registry keeps the last known state and attributes
// of every entity so the assistant translator can answer SYNC and QUERY
// intents without touching the home bus.
//
// # Key Types
//
//   - Snapshot: an entity's identity, state string, and attribute map
//   - Repository: persistence interface (SQLite implementation provided)
//   - Registry: cached, thread-safe registry wrapping a Repository
//
// # Usage
//
//	repo := entity.NewSQLiteRepository(db)
//	registry := entity.NewRegistry(repo)
//	registry.SetLogger(log)
//
//	if err := registry.RefreshCache(ctx); err != nil {
//	    return err
//	}
//
//	snap, _ := registry.Get(ctx, "light.kitchen")
//	lights, _ := registry.ListByDomain(ctx, "light")
//
// # Thread Safety
//
// The Registry is safe for concurrent use. All operations are protected by
// a read-write mutex, and returned snapshots are deep copies so callers can
// never mutate the cache.
package entity
