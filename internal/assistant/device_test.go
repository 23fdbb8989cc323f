package assistant

import (
	"reflect"
	"sync"
	"testing"

	"github.com/nerrad567/gray-logic-assistant/internal/entity"
)

// recordingLogger captures warnings for assertions.
type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, msg)
}

func (l *recordingLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warnings)
}

func snapshot(entityID, state string, attributes map[string]any) entity.Snapshot {
	return entity.Snapshot{EntityID: entityID, State: state, Attributes: attributes}
}

func TestBuildDevice(t *testing.T) {
	tr := New()

	t.Run("maps every supported domain", func(t *testing.T) {
		tests := []struct {
			entityID   string
			wantType   string
			wantTraits []string
		}{
			{"group.movie_night", "action.devices.types.SCENE", []string{"action.devices.traits.ActivateScene"}},
			{"switch.heater", "action.devices.types.SWITCH", []string{"action.devices.traits.OnOff"}},
			{"fan.ceiling", "action.devices.types.SWITCH", []string{"action.devices.traits.OnOff"}},
			{"light.kitchen", "action.devices.types.LIGHT", []string{"action.devices.traits.OnOff"}},
			{"cover.garage", "action.devices.types.LIGHT", []string{"action.devices.traits.OnOff"}},
			{"media_player.lounge", "action.devices.types.LIGHT", []string{"action.devices.traits.OnOff"}},
		}

		for _, tt := range tests {
			d := tr.BuildDevice(snapshot(tt.entityID, "on", nil))
			if d == nil {
				t.Fatalf("BuildDevice(%s) = nil, want device", tt.entityID)
			}
			if d.ID != tt.entityID {
				t.Errorf("BuildDevice(%s).ID = %q, want %q", tt.entityID, d.ID, tt.entityID)
			}
			if d.Type != tt.wantType {
				t.Errorf("BuildDevice(%s).Type = %q, want %q", tt.entityID, d.Type, tt.wantType)
			}
			if !reflect.DeepEqual(d.Traits, tt.wantTraits) {
				t.Errorf("BuildDevice(%s).Traits = %v, want %v", tt.entityID, d.Traits, tt.wantTraits)
			}
			if d.WillReportState {
				t.Errorf("BuildDevice(%s).WillReportState = true, want false", tt.entityID)
			}
		}
	})

	t.Run("unsupported domain returns nil", func(t *testing.T) {
		if d := tr.BuildDevice(snapshot("sensor.outside_temp", "21.5", nil)); d != nil {
			t.Errorf("BuildDevice(sensor) = %+v, want nil", d)
		}
	})

	t.Run("feature traits follow the bitmask", func(t *testing.T) {
		tests := []struct {
			name       string
			entityID   string
			features   int
			wantTraits []string
		}{
			{
				name:       "dimmable light",
				entityID:   "light.kitchen",
				features:   FeatureLightBrightness,
				wantTraits: []string{"action.devices.traits.OnOff", "action.devices.traits.Brightness"},
			},
			{
				name:     "full colour light",
				entityID: "light.hall",
				features: FeatureLightBrightness | FeatureLightColorTemp | FeatureLightRGBColor,
				wantTraits: []string{
					"action.devices.traits.OnOff",
					"action.devices.traits.Brightness",
					"action.devices.traits.ColorSpectrum",
					"action.devices.traits.ColorTemperature",
				},
			},
			{
				name:       "positionable cover",
				entityID:   "cover.blind",
				features:   FeatureCoverSetPosition,
				wantTraits: []string{"action.devices.traits.OnOff", "action.devices.traits.Brightness"},
			},
			{
				name:       "media player with volume",
				entityID:   "media_player.lounge",
				features:   FeatureMediaVolumeSet,
				wantTraits: []string{"action.devices.traits.OnOff", "action.devices.traits.Brightness"},
			},
			{
				name:       "unrelated bits are ignored",
				entityID:   "light.kitchen",
				features:   64,
				wantTraits: []string{"action.devices.traits.OnOff"},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				d := tr.BuildDevice(snapshot(tt.entityID, "on", map[string]any{
					AttrSupportedFeatures: float64(tt.features),
				}))
				if d == nil {
					t.Fatal("BuildDevice() = nil, want device")
				}
				if !reflect.DeepEqual(d.Traits, tt.wantTraits) {
					t.Errorf("Traits = %v, want %v", d.Traits, tt.wantTraits)
				}
			})
		}
	})

	t.Run("trait inclusion is monotonic in the bitmask", func(t *testing.T) {
		base := tr.BuildDevice(snapshot("light.kitchen", "on", map[string]any{
			AttrSupportedFeatures: float64(FeatureLightBrightness),
		}))
		more := tr.BuildDevice(snapshot("light.kitchen", "on", map[string]any{
			AttrSupportedFeatures: float64(FeatureLightBrightness | FeatureLightColorTemp),
		}))

		have := make(map[string]bool, len(more.Traits))
		for _, trait := range more.Traits {
			have[trait] = true
		}
		for _, trait := range base.Traits {
			if !have[trait] {
				t.Errorf("enabling an extra feature bit removed trait %q", trait)
			}
		}
	})

	t.Run("assistant name wins over friendly name", func(t *testing.T) {
		d := tr.BuildDevice(snapshot("light.kitchen", "on", map[string]any{
			AttrAssistantName: "Cooking Lights",
			AttrFriendlyName:  "Kitchen Light",
		}))
		if d.Name.Name != "Cooking Lights" {
			t.Errorf("Name = %q, want %q", d.Name.Name, "Cooking Lights")
		}
	})

	t.Run("falls back to friendly name", func(t *testing.T) {
		d := tr.BuildDevice(snapshot("light.kitchen", "on", map[string]any{
			AttrFriendlyName: "Kitchen Light",
		}))
		if d.Name.Name != "Kitchen Light" {
			t.Errorf("Name = %q, want %q", d.Name.Name, "Kitchen Light")
		}
	})

	t.Run("no name attributes leaves name empty", func(t *testing.T) {
		d := tr.BuildDevice(snapshot("light.kitchen", "on", nil))
		if d.Name.Name != "" {
			t.Errorf("Name = %q, want empty (never derived from the entity ID)", d.Name.Name)
		}
	})

	t.Run("aliases become nicknames", func(t *testing.T) {
		d := tr.BuildDevice(snapshot("light.kitchen", "on", map[string]any{
			AttrAliases: []any{"cooker light", "worktop light"},
		}))
		want := []string{"cooker light", "worktop light"}
		if !reflect.DeepEqual(d.Name.Nicknames, want) {
			t.Errorf("Nicknames = %v, want %v", d.Name.Nicknames, want)
		}
	})

	t.Run("malformed aliases are dropped with a warning", func(t *testing.T) {
		log := &recordingLogger{}
		warned := New()
		warned.SetLogger(log)

		d := warned.BuildDevice(snapshot("light.kitchen", "on", map[string]any{
			AttrAliases: "not a list",
		}))
		if d == nil {
			t.Fatal("BuildDevice() = nil, malformed aliases must not fail the build")
		}
		if d.Name.Nicknames != nil {
			t.Errorf("Nicknames = %v, want nil", d.Name.Nicknames)
		}
		if log.count() != 1 {
			t.Errorf("warning count = %d, want 1", log.count())
		}
	})

	t.Run("absent aliases do not warn", func(t *testing.T) {
		log := &recordingLogger{}
		quiet := New()
		quiet.SetLogger(log)

		quiet.BuildDevice(snapshot("light.kitchen", "on", nil))
		if log.count() != 0 {
			t.Errorf("warning count = %d, want 0", log.count())
		}
	})

	t.Run("identical input yields identical output", func(t *testing.T) {
		snap := snapshot("light.kitchen", "on", map[string]any{
			AttrFriendlyName:      "Kitchen",
			AttrSupportedFeatures: float64(FeatureLightBrightness),
		})
		first := tr.BuildDevice(snap)
		second := tr.BuildDevice(snap)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("BuildDevice not deterministic: %+v vs %+v", first, second)
		}
	})
}
