package mqtt

import "fmt"

// Topic prefixes for the assistant MQTT namespace.
//
// Service calls flow out to bridges, entity states flow back in:
//
//	assistant/service/{service}          commands, published by this service
//	assistant/entity/{entity_id}/state   state updates, published by bridges
//	assistant/system/status              online/offline status (retained)
const (
	// TopicPrefix is the base for all assistant topics.
	TopicPrefix = "assistant"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "assistant/system"
)

// Topics provides builders for assistant MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// ServiceCall returns the topic for a resolved service call.
//
// Example: assistant/service/turn_on
func (Topics) ServiceCall(service string) string {
	return fmt.Sprintf("%s/service/%s", TopicPrefix, service)
}

// EntityState returns the state topic for a specific entity.
//
// Example: assistant/entity/light.kitchen/state
func (Topics) EntityState(entityID string) string {
	return fmt.Sprintf("%s/entity/%s/state", TopicPrefix, entityID)
}

// SystemStatus returns the system status topic.
//
// Example: assistant/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllEntityStates returns a pattern matching all entity state updates.
//
// Pattern: assistant/entity/+/state
func (Topics) AllEntityStates() string {
	return fmt.Sprintf("%s/entity/+/state", TopicPrefix)
}

// AllServiceCalls returns a pattern matching all service call topics.
//
// Pattern: assistant/service/+
func (Topics) AllServiceCalls() string {
	return fmt.Sprintf("%s/service/+", TopicPrefix)
}
