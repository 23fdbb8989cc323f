// Package config loads and validates the Gray Logic Assistant configuration.
//
// Configuration comes from three layers, later layers overriding earlier:
//
//  1. Hardcoded defaults
//  2. The YAML configuration file
//  3. ASSISTANT_* environment variables (secrets belong here)
//
// A loaded Config is immutable by convention; components receive the
// sections they need by value.
package config
