// Package services defines the shared error taxonomy used across the
// download orchestrator. Errors are tagged with sentinel markers so the
// facade and transport layers can classify failures without string
// matching.
package services
