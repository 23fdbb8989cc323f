// Package dispatch publishes resolved service calls onto the MQTT bus.
//
// The assistant layer turns protocol commands into service invocations;
// dispatch is the thin seam that carries them to the device bridges and
// records an audit point for each. It deliberately does not update local
// entity state: bridges confirm execution by publishing the new state back
// on the entity state topics.
package dispatch
