// Package services defines shared utilities consumed by the optimization
// workflow, the webhook handler and the HTTP layer.
//
// Key responsibilities:
//   - Context helpers that stamp episode IDs, Auphonic production IDs and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper, and Kind, which reduces
//     any error to a classification (configuration, validation, not_found,
//     remote, internal) that callers translate into responses.
package services
