package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-assistant/internal/entity"
)

// createEntityRequest is the request body for POST /entities.
type createEntityRequest struct {
	EntityID   string         `json:"entity_id"`
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// setStateRequest is the request body for PUT /entities/{id}/state.
type setStateRequest struct {
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// handleListEntities returns all registered entities, optionally filtered
// by the ?domain= query parameter.
func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	var (
		snapshots []entity.Snapshot
		err       error
	)

	if domain := r.URL.Query().Get("domain"); domain != "" {
		snapshots, err = s.registry.ListByDomain(r.Context(), domain)
	} else {
		snapshots, err = s.registry.List(r.Context())
	}
	if err != nil {
		s.logger.Error("listing entities failed", "error", err)
		writeInternalError(w, "failed to list entities")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entities": snapshots,
		"count":    len(snapshots),
	})
}

// handleGetEntity returns a single entity by ID.
func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "id")

	snap, err := s.registry.Get(r.Context(), entityID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			writeNotFound(w, "entity not found: "+entityID)
			return
		}
		s.logger.Error("entity lookup failed", "entity_id", entityID, "error", err)
		writeInternalError(w, "entity lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// handleCreateEntity registers a new entity.
func (s *Server) handleCreateEntity(w http.ResponseWriter, r *http.Request) {
	var req createEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	snap := entity.Snapshot{
		EntityID:   req.EntityID,
		State:      req.State,
		Attributes: req.Attributes,
	}

	if err := s.registry.Create(r.Context(), snap); err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidID):
			writeBadRequest(w, "invalid entity_id: must be domain.object_id")
		case errors.Is(err, entity.ErrExists):
			writeConflict(w, "entity already exists: "+req.EntityID)
		default:
			s.logger.Error("creating entity failed", "entity_id", req.EntityID, "error", err)
			writeInternalError(w, "failed to create entity")
		}
		return
	}

	created, err := s.registry.Get(r.Context(), req.EntityID)
	if err != nil {
		s.logger.Error("reading back created entity failed", "entity_id", req.EntityID, "error", err)
		writeInternalError(w, "failed to read created entity")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// handleDeleteEntity removes an entity from the registry.
func (s *Server) handleDeleteEntity(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "id")

	if err := s.registry.Delete(r.Context(), entityID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			writeNotFound(w, "entity not found: "+entityID)
			return
		}
		s.logger.Error("deleting entity failed", "entity_id", entityID, "error", err)
		writeInternalError(w, "failed to delete entity")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleSetEntityState updates an entity's state and attributes directly.
//
// This is the manual override path for dashboards and testing; normal state
// flow arrives over MQTT from the bridges.
func (s *Server) handleSetEntityState(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "id")

	var req setStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.State == "" {
		writeBadRequest(w, "state is required")
		return
	}

	if err := s.registry.SetState(r.Context(), entityID, req.State, req.Attributes); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			writeNotFound(w, "entity not found: "+entityID)
			return
		}
		s.logger.Error("setting entity state failed", "entity_id", entityID, "error", err)
		writeInternalError(w, "failed to set entity state")
		return
	}

	updated, err := s.registry.Get(r.Context(), entityID)
	if err != nil {
		s.logger.Error("reading back updated entity failed", "entity_id", entityID, "error", err)
		writeInternalError(w, "failed to read updated entity")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}
