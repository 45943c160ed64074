// Package daemon coordinates the long-running podopt process.
//
// It wires configuration, the catalog, the Auphonic client, the optimization
// dispatcher, the credit checker and the HTTP API into a single lifecycle
// with flock-based locking to prevent multiple instances.
//
// Keep orchestration logic here: optimization steps live in optimize and
// webhook while the daemon focuses on startup, shutdown and wiring.
package daemon
