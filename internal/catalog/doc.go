// Package catalog persists podcasts and episodes in SQLite.
//
// Episodes carry the two fields the optimization workflow owns, the Auphonic
// production ID and the processing status, plus the audio file path relative
// to the podcast's storage disk. Getters return nil, nil for missing rows;
// mutations on a missing episode return an error wrapping
// services.ErrNotFound. Episodes are never deleted here.
//
// Schema changes bump schemaVersion in schema.go.
package catalog
