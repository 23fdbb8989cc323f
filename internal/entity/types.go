package entity

import (
	"strings"
	"time"
)

// Snapshot is the last known state of a single entity.
//
// Snapshots are value types: the registry hands out deep copies, and nothing
// in this package mutates a snapshot after it has been returned to a caller.
type Snapshot struct {
	// EntityID is the unique identifier, format "<domain>.<object_id>".
	EntityID string `json:"entity_id"`

	// State is the free-form state string ("on", "off", "playing", ...).
	// Anything other than "off" is treated as on by the translator.
	State string `json:"state"`

	// Attributes holds entity metadata and readings as a JSON map.
	//
	// Examples:
	//   - Light: {"friendly_name": "Kitchen", "brightness": 128, "supported_features": 1}
	//   - Media player: {"volume_level": 0.5, "supported_features": 4}
	Attributes map[string]any `json:"attributes"`

	// UpdatedAt is when the state was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// Domain returns the entity's domain, the part of the ID before the first dot.
// An ID without a dot is its own domain.
func (s Snapshot) Domain() string {
	return DomainOf(s.EntityID)
}

// DomainOf extracts the domain from an entity ID.
func DomainOf(entityID string) string {
	if i := strings.IndexByte(entityID, '.'); i >= 0 {
		return entityID[:i]
	}
	return entityID
}

// ValidID reports whether an entity ID has the "<domain>.<object_id>" shape
// with both parts non-empty.
func ValidID(entityID string) bool {
	i := strings.IndexByte(entityID, '.')
	return i > 0 && i < len(entityID)-1
}

// DeepCopy creates a complete independent copy of the Snapshot.
// The attribute map is cloned recursively so modifications to the copy
// do not affect the original. This is essential for cache isolation.
func (s Snapshot) DeepCopy() Snapshot {
	cpy := s
	cpy.Attributes = deepCopyMap(s.Attributes)
	return cpy
}

// deepCopyMap creates a deep copy of a map[string]any.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

// deepCopyValue recursively copies a value, handling nested maps and slices.
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		// Primitives (string, bool, float64, nil) are safe to copy by value
		return v
	}
}
