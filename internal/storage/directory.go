package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/iconvault/iconvault/internal/errors"
)

// Directory is the directory-handle storage backend: a workspace root with
// icons/ and data/ subdirectories. The workspace is user-chosen; access is
// re-verified each time the backend is opened, since permissions on the
// tree can change between sessions.
type Directory struct {
	root   string
	logger *slog.Logger
}

// NewDirectory opens a workspace directory, creating the area subdirectories
// if needed and probing for write access before first use.
func NewDirectory(root string, logger *slog.Logger) (*Directory, error) {
	if root == "" {
		return nil, errors.Validation("workspace directory must not be empty")
	}
	logger = ensureLogger(logger)

	for _, area := range Areas() {
		dir := filepath.Join(root, string(area))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Storagef("create %s directory", area).WithCause(err)
		}
	}

	d := &Directory{root: root, logger: logger}
	if err := d.verifyAccess(); err != nil {
		return nil, err
	}

	logger.Info("workspace opened", "path", root)
	return d, nil
}

// verifyAccess probes the workspace with a throwaway write, mirroring the
// permission re-check a returning session must perform.
func (d *Directory) verifyAccess() error {
	probe := filepath.Join(d.root, string(AreaData), ".iconvault-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return errors.Storage("workspace is not writable").WithCause(err)
	}
	if err := os.Remove(probe); err != nil {
		return errors.Storage("workspace probe cleanup failed").WithCause(err)
	}
	return nil
}

// Root returns the workspace root path.
func (d *Directory) Root() string {
	return d.root
}

// AreaPath returns the absolute path of an area directory.
func (d *Directory) AreaPath(area Area) string {
	return filepath.Join(d.root, string(area))
}

// Save writes content to {root}/{area}/{name}. The write is staged to a
// temporary file in the same directory and renamed into place, so a reader
// never observes a partially written file.
func (d *Directory) Save(ctx context.Context, area Area, name string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkName(area, name); err != nil {
		return err
	}

	dir := filepath.Join(d.root, string(area))
	tmp, err := os.CreateTemp(dir, ".iconvault-*.tmp")
	if err == nil {
		_, err = tmp.Write(content)
		if closeErr := tmp.Close(); err == nil {
			err = closeErr
		}
		if err == nil {
			err = os.Rename(tmp.Name(), filepath.Join(dir, name))
		}
		if err != nil {
			os.Remove(tmp.Name())
		}
	}
	if err != nil {
		d.logger.Error("file write failed", "area", area, "name", name, "error", err)
		return errors.Storagef("write %s/%s", area, name).WithCause(err)
	}
	return nil
}

// Read returns the file content, or (nil, nil) when the file does not exist.
func (d *Directory) Read(ctx context.Context, area Area, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkName(area, name); err != nil {
		return nil, err
	}

	path := filepath.Join(d.root, string(area), name)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		d.logger.Error("file read failed", "area", area, "name", name, "error", err)
		return nil, errors.Storagef("read %s/%s", area, name).WithCause(err)
	}
	return content, nil
}

// Locate returns the absolute path of the stored file, or "" when absent.
func (d *Directory) Locate(ctx context.Context, area Area, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkName(area, name); err != nil {
		return "", err
	}

	path := filepath.Join(d.root, string(area), name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	} else if err != nil {
		return "", errors.Storagef("stat %s/%s", area, name).WithCause(err)
	}
	return path, nil
}

// Delete removes the file. Absent files are not an error.
func (d *Directory) Delete(ctx context.Context, area Area, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkName(area, name); err != nil {
		return err
	}

	path := filepath.Join(d.root, string(area), name)
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		d.logger.Error("file delete failed", "area", area, "name", name, "error", err)
		return errors.Storagef("delete %s/%s", area, name).WithCause(err)
	}
	return nil
}

// List returns the names of regular files in the area directory.
func (d *Directory) List(ctx context.Context, area Area) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !area.Valid() {
		return nil, errors.Validationf("invalid storage area %q", area)
	}

	entries, err := os.ReadDir(filepath.Join(d.root, string(area)))
	if err != nil {
		return nil, errors.Storagef("list %s", area).WithCause(err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Close is a no-op for the directory backend.
func (d *Directory) Close() error {
	return nil
}
