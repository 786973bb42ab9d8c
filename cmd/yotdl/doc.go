// Package main hosts the yotdl CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into IPC calls
// against the daemon: submitting and cancelling downloads, listing tracked
// jobs and library files, streaming live events, and configuration
// scaffolding. It centralizes configuration resolution and socket discovery
// so subcommands can focus on user experience instead of wiring.
package main
