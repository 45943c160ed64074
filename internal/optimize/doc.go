// Package optimize drives Auphonic optimizations for catalog episodes.
//
// The Orchestrator runs the create, upload, configure and start sequence for
// one episode and records the STARTED status only once the remote job is
// running. The Dispatcher executes orchestrations on a bounded worker pool so
// HTTP triggers return immediately, and the QuotaChecker warns when the
// account's remaining credits fall below the configured threshold.
package optimize
