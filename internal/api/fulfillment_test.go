package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nerrad567/gray-logic-assistant/internal/entity"
)

// seedEntity inserts an entity directly through the registry.
func seedEntity(t *testing.T, registry *entity.Registry, entityID, state string, attributes map[string]any) {
	t.Helper()
	err := registry.Create(context.Background(), entity.Snapshot{
		EntityID:   entityID,
		State:      state,
		Attributes: attributes,
	})
	if err != nil {
		t.Fatalf("seeding %s: %v", entityID, err)
	}
}

// fulfill posts a fulfillment request and returns the decoded response.
func fulfill(t *testing.T, router http.Handler, body string) (int, map[string]any) {
	t.Helper()

	req := authedRequest(t, router, http.MethodPost, "/api/v1/assistant/fulfillment", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response: %v; body: %s", err, w.Body.String())
		}
	}
	return w.Code, resp
}

func TestFulfillment_Sync(t *testing.T) {
	srv, registry, _ := testServer(t)
	router := srv.buildRouter()

	seedEntity(t, registry, "light.kitchen", "on", map[string]any{
		"friendly_name":      "Kitchen Light",
		"supported_features": 1,
	})
	seedEntity(t, registry, "switch.fan", "off", map[string]any{
		"friendly_name": "Ceiling Fan",
	})
	// Sensors have no capability mapping and must be skipped.
	seedEntity(t, registry, "sensor.temp", "21.5", nil)

	code, resp := fulfill(t, router, `{
		"requestId": "req-1",
		"inputs": [{"intent": "action.devices.SYNC"}]
	}`)

	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if resp["requestId"] != "req-1" {
		t.Errorf("requestId = %v", resp["requestId"])
	}

	payload := resp["payload"].(map[string]any)
	if payload["agentUserId"] != "home-test" {
		t.Errorf("agentUserId = %v", payload["agentUserId"])
	}

	devices := payload["devices"].([]any)
	if len(devices) != 2 {
		t.Fatalf("devices = %d, want 2 (sensor skipped)", len(devices))
	}

	byID := make(map[string]map[string]any, len(devices))
	for _, d := range devices {
		dev := d.(map[string]any)
		byID[dev["id"].(string)] = dev
	}

	light, ok := byID["light.kitchen"]
	if !ok {
		t.Fatal("light.kitchen missing from SYNC")
	}
	if light["type"] != "action.devices.types.LIGHT" {
		t.Errorf("light type = %v", light["type"])
	}
	traits := light["traits"].([]any)
	if len(traits) != 2 || traits[0] != "action.devices.traits.OnOff" || traits[1] != "action.devices.traits.Brightness" {
		t.Errorf("light traits = %v", traits)
	}
	name := light["name"].(map[string]any)
	if name["name"] != "Kitchen Light" {
		t.Errorf("light name = %v", name["name"])
	}

	if byID["switch.fan"]["type"] != "action.devices.types.SWITCH" {
		t.Errorf("switch type = %v", byID["switch.fan"]["type"])
	}
}

func TestFulfillment_Query(t *testing.T) {
	srv, registry, _ := testServer(t)
	router := srv.buildRouter()

	seedEntity(t, registry, "light.kitchen", "on", map[string]any{"brightness": 128})
	seedEntity(t, registry, "switch.fan", "off", nil)

	code, resp := fulfill(t, router, `{
		"requestId": "req-2",
		"inputs": [{
			"intent": "action.devices.QUERY",
			"payload": {"devices": [
				{"id": "light.kitchen"},
				{"id": "switch.fan"},
				{"id": "light.ghost"}
			]}
		}]
	}`)

	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}

	devices := resp["payload"].(map[string]any)["devices"].(map[string]any)
	if len(devices) != 2 {
		t.Fatalf("devices = %d, want 2 (unknown id omitted)", len(devices))
	}
	if _, present := devices["light.ghost"]; present {
		t.Error("unknown entity should be omitted from QUERY response")
	}

	light := devices["light.kitchen"].(map[string]any)
	if light["on"] != true {
		t.Errorf("light on = %v", light["on"])
	}
	if light["online"] != true {
		t.Errorf("light online = %v", light["online"])
	}
	if light["brightness"] != float64(50) {
		t.Errorf("light brightness = %v, want 50", light["brightness"])
	}

	fan := devices["switch.fan"].(map[string]any)
	if fan["on"] != false {
		t.Errorf("fan on = %v", fan["on"])
	}
	if fan["brightness"] != float64(0) {
		t.Errorf("fan brightness = %v, want 0", fan["brightness"])
	}
}

func TestFulfillment_Execute(t *testing.T) {
	t.Run("on/off command dispatches turn_on", func(t *testing.T) {
		srv, registry, exec := testServer(t)
		router := srv.buildRouter()
		seedEntity(t, registry, "light.kitchen", "off", nil)

		code, resp := fulfill(t, router, `{
			"requestId": "req-3",
			"inputs": [{
				"intent": "action.devices.EXECUTE",
				"payload": {"commands": [{
					"devices": [{"id": "light.kitchen"}],
					"execution": [{"command": "action.devices.commands.OnOff", "params": {"on": true}}]
				}]}
			}]
		}`)

		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}

		if exec.count() != 1 {
			t.Fatalf("invocations = %d, want 1", exec.count())
		}
		inv := exec.invocations[0]
		if inv.Service != "turn_on" {
			t.Errorf("service = %q, want turn_on", inv.Service)
		}
		if inv.EntityID() != "light.kitchen" {
			t.Errorf("entity_id = %q", inv.EntityID())
		}

		commands := resp["payload"].(map[string]any)["commands"].([]any)
		first := commands[0].(map[string]any)
		if first["status"] != "SUCCESS" {
			t.Errorf("status = %v", first["status"])
		}
		ids := first["ids"].([]any)
		if len(ids) != 1 || ids[0] != "light.kitchen" {
			t.Errorf("ids = %v", ids)
		}
	})

	t.Run("brightness command carries scaled value", func(t *testing.T) {
		srv, registry, exec := testServer(t)
		router := srv.buildRouter()
		seedEntity(t, registry, "light.kitchen", "on", nil)

		code, _ := fulfill(t, router, `{
			"requestId": "req-4",
			"inputs": [{
				"intent": "action.devices.EXECUTE",
				"payload": {"commands": [{
					"devices": [{"id": "light.kitchen"}],
					"execution": [{"command": "action.devices.commands.BrightnessAbsolute", "params": {"brightness": 50}}]
				}]}
			}]
		}`)

		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if exec.count() != 1 {
			t.Fatalf("invocations = %d", exec.count())
		}
		inv := exec.invocations[0]
		if inv.Service != "turn_on" {
			t.Errorf("service = %q", inv.Service)
		}
		if inv.Data["brightness"] != 128 {
			t.Errorf("brightness = %v, want 128", inv.Data["brightness"])
		}
	})

	t.Run("unknown device reports deviceNotFound", func(t *testing.T) {
		srv, _, exec := testServer(t)
		router := srv.buildRouter()

		code, resp := fulfill(t, router, `{
			"requestId": "req-5",
			"inputs": [{
				"intent": "action.devices.EXECUTE",
				"payload": {"commands": [{
					"devices": [{"id": "light.ghost"}],
					"execution": [{"command": "action.devices.commands.OnOff", "params": {"on": true}}]
				}]}
			}]
		}`)

		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if exec.count() != 0 {
			t.Error("nothing should be dispatched for unknown devices")
		}

		commands := resp["payload"].(map[string]any)["commands"].([]any)
		first := commands[0].(map[string]any)
		if first["status"] != "ERROR" {
			t.Errorf("status = %v", first["status"])
		}
		if first["errorCode"] != "deviceNotFound" {
			t.Errorf("errorCode = %v", first["errorCode"])
		}
	})

	t.Run("dispatch failure reports error status", func(t *testing.T) {
		srv, registry, exec := testServer(t)
		router := srv.buildRouter()
		seedEntity(t, registry, "light.kitchen", "off", nil)
		exec.err = errors.New("broker unavailable")

		code, resp := fulfill(t, router, `{
			"requestId": "req-6",
			"inputs": [{
				"intent": "action.devices.EXECUTE",
				"payload": {"commands": [{
					"devices": [{"id": "light.kitchen"}],
					"execution": [{"command": "action.devices.commands.OnOff", "params": {"on": true}}]
				}]}
			}]
		}`)

		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		commands := resp["payload"].(map[string]any)["commands"].([]any)
		first := commands[0].(map[string]any)
		if first["status"] != "ERROR" {
			t.Errorf("status = %v", first["status"])
		}
	})
}

func TestFulfillment_BadRequests(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	t.Run("empty inputs", func(t *testing.T) {
		code, _ := fulfill(t, router, `{"requestId": "r", "inputs": []}`)
		if code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", code, http.StatusBadRequest)
		}
	})

	t.Run("unknown intent", func(t *testing.T) {
		code, _ := fulfill(t, router, `{"requestId": "r", "inputs": [{"intent": "action.devices.DISCONNECT"}]}`)
		if code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", code, http.StatusBadRequest)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		code, _ := fulfill(t, router, `{not json`)
		if code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", code, http.StatusBadRequest)
		}
	})
}
