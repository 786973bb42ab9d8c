// Package notifications delivers download lifecycle events via ntfy.
//
// The default implementation publishes to the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled, so callers never guard their notification calls.
package notifications
