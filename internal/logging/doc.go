// Package logging wires log/slog for the daemon and CLI. It provides a
// console handler for interactive use, a JSON handler for machine
// consumption, and small attr helpers shared by every component.
package logging
