// Package logging assembles the structured slog loggers used across podopt.
//
// It owns the console and JSON handlers, level and output plumbing, and the
// context helpers that tag log lines with episode IDs, Auphonic production
// IDs and request correlation IDs. NewNop provides a silent logger for tests
// and wiring code that cannot fail.
package logging
