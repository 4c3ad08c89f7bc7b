// Package config loads, normalizes, and validates Kiln's TOML configuration.
package config
