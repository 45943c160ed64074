// Package webhook applies Auphonic completion callbacks: it marks failed
// productions, stores the optimized audio of successful ones next to the
// original and retires both the superseded file and the remote production.
package webhook
