package assistant

import (
	"math"

	"github.com/nerrad567/gray-logic-assistant/internal/entity"
)

// ResolveCommand converts an incoming assistant command into the service
// invocation to dispatch on the home bus.
//
// The function is total: unknown commands fall through to turn_off rather
// than producing an error, and the returned data map always carries the
// entity ID. The branch order matters: domain-specific Brightness handling
// must win over the generic Brightness branch.
func (t *Translator) ResolveCommand(entityID, command string, params map[string]any) Invocation {
	domain := entity.DomainOf(entityID)
	data := map[string]any{AttrEntityID: entityID}

	// Volume on media players arrives as a brightness percentage.
	if domain == DomainMediaPlayer && command == CommandBrightness {
		brightness, _ := floatValue(params, ParamBrightness)
		data["volume"] = brightness / percentMax
		return Invocation{Service: ServiceVolumeSet, Data: data}
	}

	// Cover position likewise rides on the Brightness command, and cover
	// on/off maps to open/close rather than power.
	if domain == DomainCover && command == CommandBrightness {
		position, _ := floatValue(params, ParamBrightness)
		data["position"] = position
		return Invocation{Service: ServiceSetCoverPosition, Data: data}
	}
	if domain == DomainCover && command == CommandOnOff {
		if params[ParamOn] == true {
			return Invocation{Service: ServiceOpenCover, Data: data}
		}
		return Invocation{Service: ServiceCloseCover, Data: data}
	}

	if command == CommandBrightness {
		// No default here: the caller must supply brightness on this
		// branch, and a violation surfaces as a null argument for the
		// dispatcher to reject rather than a guessed value.
		if brightness, ok := floatValue(params, ParamBrightness); ok {
			data[AttrBrightness] = int(math.Round(brightness / percentMax * brightnessMax))
		} else {
			data[AttrBrightness] = nil
		}
		return Invocation{Service: ServiceTurnOn, Data: data}
	}

	if command == CommandOnOff && params[ParamOn] == true {
		return Invocation{Service: ServiceTurnOn, Data: data}
	}

	// Anything unrecognised, and OnOff without on=true, turns the entity off.
	return Invocation{Service: ServiceTurnOff, Data: data}
}
