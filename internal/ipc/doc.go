// Package ipc implements the control channel between the CLI and the
// daemon: JSON-RPC over a Unix domain socket. The server side wraps the
// daemon's operations; the client side is consumed by the CLI commands.
package ipc
