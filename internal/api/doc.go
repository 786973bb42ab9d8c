// Package api defines wire-format types and converters for the IPC and HTTP
// API layer. It translates internal registry models into transport-friendly
// DTOs that web and CLI consumers can render without coupling to internal
// types.
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers. Internal
// enums are exposed as lowercase strings and timestamps use RFC3339 with
// milliseconds.
package api
