package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"podopt/internal/config"
	"podopt/internal/services"
)

// Disk stores episode audio under paths relative to its root.
type Disk interface {
	Name() string
	Open(relPath string) (io.ReadCloser, error)
	Put(relPath string, r io.Reader) (PutResult, error)
	Delete(relPath string) error
	Exists(relPath string) (bool, error)
}

// PutResult describes a stored file.
type PutResult struct {
	Path   string
	Size   int64
	SHA256 string
}

// LocalDisk is a Disk on the local filesystem.
type LocalDisk struct {
	name string
	root string
}

// NewLocalDisk creates a disk rooted at root.
func NewLocalDisk(name, root string) *LocalDisk {
	return &LocalDisk{name: name, root: filepath.Clean(root)}
}

func (d *LocalDisk) Name() string { return d.name }

// Root returns the absolute directory backing the disk.
func (d *LocalDisk) Root() string { return d.root }

// Resolve maps a relative path onto the disk, rejecting paths that escape the root.
func (d *LocalDisk) Resolve(relPath string) (string, error) {
	trimmed := strings.TrimSpace(relPath)
	if trimmed == "" {
		return "", services.Wrap(services.ErrValidation, "storage", d.name, "empty path", nil)
	}
	clean := filepath.Clean(filepath.FromSlash(strings.TrimLeft(trimmed, "/")))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", services.Wrap(services.ErrValidation, "storage", d.name, fmt.Sprintf("path %q escapes disk root", relPath), nil)
	}
	return filepath.Join(d.root, clean), nil
}

func (d *LocalDisk) Open(relPath string) (io.ReadCloser, error) {
	abs, err := d.Resolve(relPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, services.Wrap(services.ErrNotFound, "storage", d.name, fmt.Sprintf("%s does not exist", relPath), err)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", abs, err)
	}
	return f, nil
}

// Put writes r to a temp file beside the target, syncs it and renames it
// into place so readers never observe a partial file.
func (d *LocalDisk) Put(relPath string, r io.Reader) (PutResult, error) {
	abs, err := d.Resolve(relPath)
	if err != nil {
		return PutResult{}, err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return PutResult{}, fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(abs), "."+filepath.Base(abs)+".*.part")
	if err != nil {
		return PutResult{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hasher), r)
	if err != nil {
		tmp.Close()
		cleanup()
		return PutResult{}, fmt.Errorf("copy data: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return PutResult{}, fmt.Errorf("sync destination: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return PutResult{}, fmt.Errorf("close destination: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return PutResult{}, fmt.Errorf("chmod destination: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		cleanup()
		return PutResult{}, fmt.Errorf("rename into place: %w", err)
	}
	return PutResult{
		Path:   filepath.ToSlash(strings.TrimPrefix(abs, d.root+string(filepath.Separator))),
		Size:   written,
		SHA256: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// Delete removes a file. Deleting a missing file is not an error.
func (d *LocalDisk) Delete(relPath string) error {
	abs, err := d.Resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", abs, err)
	}
	return nil
}

func (d *LocalDisk) Exists(relPath string) (bool, error) {
	abs, err := d.Resolve(relPath)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(abs)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", abs, err)
	}
	return !info.IsDir(), nil
}

// Disks holds the private and public disks.
type Disks struct {
	Private Disk
	Public  Disk
}

// NewDisks builds the local disks configured under [paths].
func NewDisks(cfg *config.Config) Disks {
	return Disks{
		Private: NewLocalDisk("private", cfg.Paths.PrivateDir),
		Public:  NewLocalDisk("public", cfg.Paths.PublicDir),
	}
}

// For returns the disk of a private or public show.
func (d Disks) For(privateShow bool) Disk {
	if privateShow {
		return d.Private
	}
	return d.Public
}

// OptimizedPath derives "<dir>/<stem>-optimized.<format>" from the source path.
func OptimizedPath(source, format string) string {
	source = filepath.ToSlash(source)
	dir, base := "", source
	if idx := strings.LastIndex(source, "/"); idx >= 0 {
		dir, base = source[:idx+1], source[idx+1:]
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	format = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
	return dir + stem + "-optimized." + format
}
