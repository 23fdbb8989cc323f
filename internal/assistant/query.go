package assistant

import (
	"math"

	"github.com/nerrad567/gray-logic-assistant/internal/entity"
)

// Brightness scaling bounds.
const (
	brightnessMax = 255
	percentMax    = 100
)

// QueryDevice converts an entity snapshot into the normalized on/online/
// brightness state for a QUERY response.
//
// This never fails: unsupported domains and missing attributes produce a
// best-effort result. Any state other than "off" counts as on, including
// "unknown" and "unavailable".
func (t *Translator) QueryDevice(e entity.Snapshot) QueryResult {
	on := e.State != StateOff

	// 0-255 brightness attribute; a missing or null value falls back to
	// full-on/full-off.
	brightness, ok := floatValue(e.Attributes, AttrBrightness)
	if !ok {
		brightness = defaultBrightness(on)
	}

	// Media players report volume (0.0-1.0) instead of brightness; scale it
	// onto the same 0-255 range, clamped at full volume.
	if e.Domain() == DomainMediaPlayer {
		level, ok := floatValue(e.Attributes, AttrVolumeLevel)
		if !ok {
			level = 0.0
			if on {
				level = 1.0
			}
		}
		brightness = math.Round(math.Min(1.0, level) * brightnessMax)
	}

	return QueryResult{
		On:     on,
		Online: true,
		// Truncate, don't round: 128/255 is 50%, not 51%.
		Brightness: int(percentMax * brightness / brightnessMax),
	}
}

// defaultBrightness is the brightness assumed for entities that don't report
// one: full brightness when on, zero when off.
func defaultBrightness(on bool) float64 {
	if on {
		return brightnessMax
	}
	return 0
}
