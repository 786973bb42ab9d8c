// Package config loads, normalizes, and validates the TOML configuration
// shared by the daemon and CLI. Components receive the parts of the
// resulting Config they need at construction time; nothing reads ambient
// environment state after startup.
package config
