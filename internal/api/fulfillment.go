package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gray-logic-assistant/internal/assistant"
	"github.com/nerrad567/gray-logic-assistant/internal/entity"
)

// Smart-home fulfillment intents.
const (
	IntentSync    = "action.devices.SYNC"
	IntentQuery   = "action.devices.QUERY"
	IntentExecute = "action.devices.EXECUTE"
)

// Execution status codes returned in EXECUTE responses.
const (
	statusSuccess = "SUCCESS"
	statusError   = "ERROR"

	errorCodeDeviceNotFound = "deviceNotFound"
)

// intentRequest is the envelope of a fulfillment request.
type intentRequest struct {
	RequestID string        `json:"requestId"`
	Inputs    []intentInput `json:"inputs"`
}

// intentInput is a single intent inside a fulfillment request.
type intentInput struct {
	Intent  string          `json:"intent"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// deviceRef identifies a device by its entity ID.
type deviceRef struct {
	ID string `json:"id"`
}

// queryPayload is the payload of a QUERY intent.
type queryPayload struct {
	Devices []deviceRef `json:"devices"`
}

// executePayload is the payload of an EXECUTE intent.
type executePayload struct {
	Commands []executeCommand `json:"commands"`
}

// executeCommand pairs target devices with the executions to apply.
type executeCommand struct {
	Devices   []deviceRef        `json:"devices"`
	Execution []executeExecution `json:"execution"`
}

// executeExecution is one command with its parameters.
type executeExecution struct {
	Command string         `json:"command"`
	Params  map[string]any `json:"params"`
}

// executeResult is one entry in an EXECUTE response.
type executeResult struct {
	IDs       []string `json:"ids"`
	Status    string   `json:"status"`
	ErrorCode string   `json:"errorCode,omitempty"`
}

// makeResponse wraps an intent payload in the fulfillment envelope.
func makeResponse(requestID string, payload any) map[string]any {
	return map[string]any{
		"requestId": requestID,
		"payload":   payload,
	}
}

// handleFulfillment is the smart-home webhook endpoint.
//
// Each request carries exactly one intent in practice; the first input is
// processed and the rest ignored, matching platform behaviour.
func (s *Server) handleFulfillment(w http.ResponseWriter, r *http.Request) {
	var req intentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if len(req.Inputs) == 0 {
		writeBadRequest(w, "request has no inputs")
		return
	}

	input := req.Inputs[0]
	switch input.Intent {
	case IntentSync:
		s.handleSync(w, r, req.RequestID)
	case IntentQuery:
		s.handleQuery(w, r, req.RequestID, input.Payload)
	case IntentExecute:
		s.handleExecute(w, r, req.RequestID, input.Payload)
	default:
		writeBadRequest(w, "unsupported intent: "+input.Intent)
	}
}

// handleSync builds the device catalogue for a SYNC intent.
//
// Entities whose domain has no capability mapping are silently skipped;
// they simply do not exist as far as the assistant is concerned.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request, requestID string) {
	snapshots, err := s.registry.List(r.Context())
	if err != nil {
		s.logger.Error("sync: listing entities failed", "error", err)
		writeInternalError(w, "failed to list entities")
		return
	}

	devices := make([]*assistant.Device, 0, len(snapshots))
	for _, snap := range snapshots {
		if device := s.translator.BuildDevice(snap); device != nil {
			devices = append(devices, device)
		}
	}

	s.logger.Info("sync served",
		"entities", len(snapshots),
		"devices", len(devices),
	)

	writeJSON(w, http.StatusOK, makeResponse(requestID, map[string]any{
		"agentUserId": s.agentCfg.UserID,
		"devices":     devices,
	}))
}

// handleQuery reports current state for the requested devices.
//
// Unknown entity IDs are omitted from the response rather than failing the
// whole query; a warning records the mismatch for operators.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request, requestID string, payload json.RawMessage) {
	var query queryPayload
	if err := json.Unmarshal(payload, &query); err != nil {
		writeBadRequest(w, "invalid QUERY payload")
		return
	}

	results := make(map[string]assistant.QueryResult, len(query.Devices))
	for _, ref := range query.Devices {
		snap, err := s.registry.Get(r.Context(), ref.ID)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				s.logger.Warn("query for unknown entity", "entity_id", ref.ID)
				continue
			}
			s.logger.Error("query: entity lookup failed", "entity_id", ref.ID, "error", err)
			writeInternalError(w, "entity lookup failed")
			return
		}
		results[ref.ID] = s.translator.QueryDevice(snap)
	}

	writeJSON(w, http.StatusOK, makeResponse(requestID, map[string]any{
		"devices": results,
	}))
}

// handleExecute resolves and dispatches commands from an EXECUTE intent.
//
// Every target device of every execution is resolved to a service call and
// published to the bus. Local state is not updated optimistically: the
// bridge confirms execution by publishing the new state back.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request, requestID string, payload json.RawMessage) {
	var exec executePayload
	if err := json.Unmarshal(payload, &exec); err != nil {
		writeBadRequest(w, "invalid EXECUTE payload")
		return
	}

	var succeeded []string
	var failed []executeResult

	for _, command := range exec.Commands {
		for _, ref := range command.Devices {
			snap, err := s.registry.Get(r.Context(), ref.ID)
			if err != nil {
				failed = append(failed, executeResult{
					IDs:       []string{ref.ID},
					Status:    statusError,
					ErrorCode: errorCodeDeviceNotFound,
				})
				continue
			}

			ok := true
			for _, execution := range command.Execution {
				inv := s.translator.ResolveCommand(snap.EntityID, execution.Command, execution.Params)
				if err := s.executor.Execute(r.Context(), inv); err != nil {
					s.logger.Error("execute: dispatch failed",
						"entity_id", ref.ID,
						"command", execution.Command,
						"error", err,
					)
					ok = false
					break
				}
			}

			if ok {
				succeeded = append(succeeded, ref.ID)
			} else {
				failed = append(failed, executeResult{
					IDs:    []string{ref.ID},
					Status: statusError,
				})
			}
		}
	}

	results := failed
	if len(succeeded) > 0 {
		results = append([]executeResult{{IDs: succeeded, Status: statusSuccess}}, failed...)
	}
	if results == nil {
		results = []executeResult{}
	}

	writeJSON(w, http.StatusOK, makeResponse(requestID, map[string]any{
		"commands": results,
	}))
}
