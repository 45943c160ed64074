// Package api defines wire-format types and converters for the HTTP API and
// the CLI's JSON output. It translates catalog models into transport-friendly
// DTOs so consumers never couple to internal types.
//
// # Key Types
//
// Episode: transport representation of an episode with its optimization
// status, storage disk and remote production.
//
// Podcast: a show and its visibility.
//
// ServiceStatus: daemon liveness, dispatcher load, catalog status counts and
// the most recent credit check.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. catalog.Status is exposed as a lowercase
// string ("unset" when no optimization ran). Timestamps use RFC3339 with
// milliseconds.
package api
