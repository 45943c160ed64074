// Package testsupport holds shared test fixtures: temp configs, an opened
// catalog with seeded episodes, a fake Auphonic API and a recording notifier.
package testsupport
