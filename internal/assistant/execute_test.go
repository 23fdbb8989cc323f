package assistant

import (
	"reflect"
	"testing"
)

func TestResolveCommand(t *testing.T) {
	tr := New()

	tests := []struct {
		name     string
		entityID string
		command  string
		params   map[string]any
		want     Invocation
	}{
		{
			name:     "cover opens on on",
			entityID: "cover.garage",
			command:  CommandOnOff,
			params:   map[string]any{"on": true},
			want: Invocation{
				Service: ServiceOpenCover,
				Data:    map[string]any{"entity_id": "cover.garage"},
			},
		},
		{
			name:     "cover closes on off",
			entityID: "cover.garage",
			command:  CommandOnOff,
			params:   map[string]any{"on": false},
			want: Invocation{
				Service: ServiceCloseCover,
				Data:    map[string]any{"entity_id": "cover.garage"},
			},
		},
		{
			name:     "cover brightness sets position",
			entityID: "cover.blind",
			command:  CommandBrightness,
			params:   map[string]any{"brightness": float64(75)},
			want: Invocation{
				Service: ServiceSetCoverPosition,
				Data:    map[string]any{"entity_id": "cover.blind", "position": float64(75)},
			},
		},
		{
			name:     "cover brightness defaults position to zero",
			entityID: "cover.blind",
			command:  CommandBrightness,
			params:   map[string]any{},
			want: Invocation{
				Service: ServiceSetCoverPosition,
				Data:    map[string]any{"entity_id": "cover.blind", "position": float64(0)},
			},
		},
		{
			name:     "media player brightness sets volume",
			entityID: "media_player.lounge",
			command:  CommandBrightness,
			params:   map[string]any{"brightness": float64(50)},
			want: Invocation{
				Service: ServiceVolumeSet,
				Data:    map[string]any{"entity_id": "media_player.lounge", "volume": 0.5},
			},
		},
		{
			name:     "media player brightness defaults volume to zero",
			entityID: "media_player.lounge",
			command:  CommandBrightness,
			params:   map[string]any{},
			want: Invocation{
				Service: ServiceVolumeSet,
				Data:    map[string]any{"entity_id": "media_player.lounge", "volume": 0.0},
			},
		},
		{
			name:     "generic brightness scales to 0-255",
			entityID: "light.kitchen",
			command:  CommandBrightness,
			params:   map[string]any{"brightness": float64(50)},
			want: Invocation{
				Service: ServiceTurnOn,
				// round(50/100*255) = 128
				Data: map[string]any{"entity_id": "light.kitchen", "brightness": 128},
			},
		},
		{
			name:     "generic brightness without the parameter yields a null argument",
			entityID: "light.kitchen",
			command:  CommandBrightness,
			params:   map[string]any{},
			want: Invocation{
				Service: ServiceTurnOn,
				Data:    map[string]any{"entity_id": "light.kitchen", "brightness": nil},
			},
		},
		{
			name:     "on-off with on true turns on",
			entityID: "switch.heater",
			command:  CommandOnOff,
			params:   map[string]any{"on": true},
			want: Invocation{
				Service: ServiceTurnOn,
				Data:    map[string]any{"entity_id": "switch.heater"},
			},
		},
		{
			name:     "on-off without the on key turns off",
			entityID: "switch.x",
			command:  CommandOnOff,
			params:   map[string]any{},
			want: Invocation{
				Service: ServiceTurnOff,
				Data:    map[string]any{"entity_id": "switch.x"},
			},
		},
		{
			name:     "non-bool on value turns off",
			entityID: "switch.heater",
			command:  CommandOnOff,
			params:   map[string]any{"on": "yes"},
			want: Invocation{
				Service: ServiceTurnOff,
				Data:    map[string]any{"entity_id": "switch.heater"},
			},
		},
		{
			name:     "unrecognised command turns off",
			entityID: "light.kitchen",
			command:  "action.devices.commands.ColorAbsolute",
			params:   map[string]any{},
			want: Invocation{
				Service: ServiceTurnOff,
				Data:    map[string]any{"entity_id": "light.kitchen"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.ResolveCommand(tt.entityID, tt.command, tt.params)
			if got.Service != tt.want.Service {
				t.Errorf("Service = %q, want %q", got.Service, tt.want.Service)
			}
			if !reflect.DeepEqual(got.Data, tt.want.Data) {
				t.Errorf("Data = %#v, want %#v", got.Data, tt.want.Data)
			}
		})
	}

	t.Run("data always carries the entity id", func(t *testing.T) {
		inv := tr.ResolveCommand("fan.ceiling", "no.such.command", nil)
		if inv.EntityID() != "fan.ceiling" {
			t.Errorf("EntityID() = %q, want %q", inv.EntityID(), "fan.ceiling")
		}
	})

	t.Run("params are not mutated", func(t *testing.T) {
		params := map[string]any{"brightness": float64(50)}
		tr.ResolveCommand("light.kitchen", CommandBrightness, params)
		if len(params) != 1 {
			t.Errorf("params mutated: %#v", params)
		}
	})

	t.Run("identical input yields identical output", func(t *testing.T) {
		params := map[string]any{"on": true}
		first := tr.ResolveCommand("cover.garage", CommandOnOff, params)
		second := tr.ResolveCommand("cover.garage", CommandOnOff, params)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("ResolveCommand not deterministic: %+v vs %+v", first, second)
		}
	})
}
