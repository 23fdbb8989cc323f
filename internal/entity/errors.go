package entity

import "errors"

// Domain errors for the entity package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, entity.ErrNotFound) {
//	    // handle missing entity
//	}
var (
	// ErrNotFound is returned when an entity ID does not exist.
	ErrNotFound = errors.New("entity: not found")

	// ErrExists is returned when creating an entity whose ID already exists.
	ErrExists = errors.New("entity: already exists")

	// ErrInvalidID is returned when an entity ID is not "<domain>.<object_id>".
	ErrInvalidID = errors.New("entity: invalid id")
)
