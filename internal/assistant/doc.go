// Package assistant translates between the entity registry and the Google
// Smart Home Actions API.
//
// The translator performs three pure transformations:
//
//   - BuildDevice: entity snapshot -> discovery descriptor (SYNC)
//   - QueryDevice: entity snapshot -> on/online/brightness state (QUERY)
//   - ResolveCommand: assistant command -> home-bus service invocation (EXECUTE)
//
// The mapping between entity domains and Actions device types/traits lives in
// a single immutable table (capabilityMap). Domains without an entry are not
// exposed to the assistant; that is a normal outcome, not an error. The
// Actions API has no native concepts for cover position or media volume, so
// both ride on the Brightness trait with domain-specific handling on the
// query and execute paths.
//
// All three operations are stateless and safe for concurrent use; none of
// them returns an error, mirroring the fire-and-forget contract of the
// fulfillment dispatcher.
package assistant
