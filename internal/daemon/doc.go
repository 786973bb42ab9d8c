// Package daemon wires the download services together and exposes them over
// HTTP. It owns the single-instance file lock, the background reaper, and
// the API server lifecycle.
package daemon
