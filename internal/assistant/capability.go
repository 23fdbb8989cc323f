package assistant

// Prefixes and command names from the Google Smart Home Actions API.
const (
	// PrefixTypes is prepended to every device type in a SYNC response.
	PrefixTypes = "action.devices.types."

	// PrefixTraits is prepended to every trait in a SYNC response.
	PrefixTraits = "action.devices.traits."

	// CommandOnOff is the Actions on/off command.
	CommandOnOff = "action.devices.commands.OnOff"

	// CommandBrightness is the Actions absolute-brightness command.
	// Also carries cover position and media volume (see capabilityMap).
	CommandBrightness = "action.devices.commands.BrightnessAbsolute"
)

// Entity domains the translator can expose.
const (
	DomainGroup       = "group"
	DomainSwitch      = "switch"
	DomainFan         = "fan"
	DomainLight       = "light"
	DomainCover       = "cover"
	DomainMediaPlayer = "media_player"
)

// StateOff is the canonical off sentinel. Every other state string,
// including "unknown" and "unavailable", counts as on.
const StateOff = "off"

// Attribute keys read from entity snapshots.
const (
	AttrEntityID          = "entity_id"
	AttrFriendlyName      = "friendly_name"
	AttrAssistantName     = "google_assistant_name"
	AttrAliases           = "aliases"
	AttrSupportedFeatures = "supported_features"
	AttrBrightness        = "brightness"
	AttrVolumeLevel       = "volume_level"
)

// Parameter keys in incoming command params.
const (
	ParamOn         = "on"
	ParamBrightness = "brightness"
)

// Services the resolver can dispatch to the home bus.
const (
	ServiceTurnOn           = "turn_on"
	ServiceTurnOff          = "turn_off"
	ServiceVolumeSet        = "volume_set"
	ServiceSetCoverPosition = "set_cover_position"
	ServiceOpenCover        = "open_cover"
	ServiceCloseCover       = "close_cover"
)

// Feature bitmask values carried in the supported_features attribute.
const (
	FeatureLightBrightness  = 1
	FeatureLightColorTemp   = 2
	FeatureLightRGBColor    = 16
	FeatureCoverSetPosition = 4
	FeatureMediaVolumeSet   = 4
)

// featureTrait gates an optional trait behind a supported_features bit.
type featureTrait struct {
	feature int64
	trait   string
}

// capability describes how one entity domain maps onto the Actions API:
// the device type, the trait every entity of the domain carries, and the
// traits gated by feature bits. featureTraits order is the order traits
// appear in SYNC responses.
type capability struct {
	deviceType    string
	baseTrait     string
	featureTraits []featureTrait
}

// capabilityMap is the single source of truth for which domains are exposed
// and how. Adding a domain means adding an entry here; no other code changes.
//
// Covers and media players are deliberately exposed as LIGHT so position and
// volume can be driven through the Brightness trait.
var capabilityMap = map[string]capability{
	DomainGroup:  {deviceType: "SCENE", baseTrait: "ActivateScene"},
	DomainSwitch: {deviceType: "SWITCH", baseTrait: "OnOff"},
	DomainFan:    {deviceType: "SWITCH", baseTrait: "OnOff"},
	DomainLight: {
		deviceType: "LIGHT",
		baseTrait:  "OnOff",
		featureTraits: []featureTrait{
			{FeatureLightBrightness, "Brightness"},
			{FeatureLightRGBColor, "ColorSpectrum"},
			{FeatureLightColorTemp, "ColorTemperature"},
		},
	},
	DomainCover: {
		deviceType: "LIGHT",
		baseTrait:  "OnOff",
		featureTraits: []featureTrait{
			{FeatureCoverSetPosition, "Brightness"},
		},
	},
	DomainMediaPlayer: {
		deviceType: "LIGHT",
		baseTrait:  "OnOff",
		featureTraits: []featureTrait{
			{FeatureMediaVolumeSet, "Brightness"},
		},
	},
}

// SupportedDomains returns the domains present in the capability map,
// in no particular order.
func SupportedDomains() []string {
	domains := make([]string, 0, len(capabilityMap))
	for d := range capabilityMap {
		domains = append(domains, d)
	}
	return domains
}

// Supported reports whether entities of the given domain can be exposed.
func Supported(domain string) bool {
	_, ok := capabilityMap[domain]
	return ok
}
