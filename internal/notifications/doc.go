// Package notifications delivers episode status events via pluggable notifiers.
//
// The ntfy implementation publishes to the topic configured in config.toml
// and degrades to a no-op when notifications are disabled. Hub fans events
// out to in-process subscribers, which back the per-episode SSE stream.
// Fanout combines both so the workflow emits each transition exactly once.
package notifications
