// Package config loads, normalizes, and validates podopt configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AUPHONIC_TOKEN. A .env file in the working directory is loaded before those
// fallbacks are consulted. The Config type centralizes every knob the server
// and CLI need, so storage roots, Auphonic credentials, and the default
// optimization bundle are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
