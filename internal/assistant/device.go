package assistant

import "github.com/nerrad567/gray-logic-assistant/internal/entity"

// BuildDevice converts an entity snapshot into an Actions device descriptor
// for a SYNC response.
//
// Returns nil when the entity's domain is not in the capability map; the
// caller filters such entities out silently. A nil result is not an error.
//
// Display name resolution prefers the assistant-specific name attribute over
// the generic friendly name; when neither is set the name is left empty
// rather than derived from the entity ID. A malformed aliases attribute is
// dropped with a warning; it never fails the build.
func (t *Translator) BuildDevice(e entity.Snapshot) *Device {
	cap, ok := capabilityMap[e.Domain()]
	if !ok {
		return nil
	}

	d := &Device{
		ID:     e.EntityID,
		Type:   PrefixTypes + cap.deviceType,
		Traits: []string{PrefixTraits + cap.baseTrait},
	}

	if name, ok := stringValue(e.Attributes, AttrAssistantName); ok && name != "" {
		d.Name.Name = name
	} else if name, ok := stringValue(e.Attributes, AttrFriendlyName); ok {
		d.Name.Name = name
	}

	if raw, present := e.Attributes[AttrAliases]; present {
		if aliases, ok := stringList(raw); ok {
			d.Name.Nicknames = aliases
		} else {
			t.logger.Warn("aliases attribute must be a list of strings",
				"entity_id", e.EntityID,
			)
		}
	}

	supported := intValue(e.Attributes, AttrSupportedFeatures)
	for _, ft := range cap.featureTraits {
		if ft.feature&supported != 0 {
			d.Traits = append(d.Traits, PrefixTraits+ft.trait)
		}
	}

	return d
}
