// Command podopt runs the podcast audio optimization service and offers
// operator commands for the catalog, Auphonic credits and diagnostics.
//
// "podopt serve" starts the HTTP API with the optimization workers. The
// remaining commands open the catalog directly and do not need a running
// daemon.
package main
