// Package config loads, normalizes, and validates the TOML configuration
// for the cadenza pipeline.
package config
