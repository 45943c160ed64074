// Package storage provides the private and public disks that hold episode
// audio. Paths are relative to a disk root and may not escape it.
package storage
