// Package storage provides the file storage backend for icon content and
// collection documents. Two interchangeable implementations exist: a
// user-chosen directory tree (Directory) and an embedded Badger key-value
// store (KeyValue). The backend is selected once at startup; callers only
// see the Backend interface.
package storage

import (
	"context"
	"log/slog"
	"strings"

	"github.com/iconvault/iconvault/internal/errors"
)

// Area is a logical storage partition.
type Area string

// Storage areas. Icon SVG files live under AreaIcons; collection documents
// (icons.json, categories.json) live under AreaData.
const (
	AreaIcons Area = "icons"
	AreaData  Area = "data"
)

// Areas lists all valid areas in a stable order.
func Areas() []Area {
	return []Area{AreaIcons, AreaData}
}

// Valid reports whether the area is recognized.
func (a Area) Valid() bool {
	return a == AreaIcons || a == AreaData
}

// Backend is the uniform file operation surface over a physical substrate.
//
// Read and Locate return zero values (nil bytes, empty locator) without an
// error when the named resource does not exist. Every other failure is
// returned as an error; nothing is silently downgraded.
type Backend interface {
	// Save writes content under name in the given area, overwriting any
	// previous content.
	Save(ctx context.Context, area Area, name string, content []byte) error
	// Read returns the stored content, or (nil, nil) when absent.
	Read(ctx context.Context, area Area, name string) ([]byte, error)
	// Locate returns an addressable location (a filesystem path) for the
	// stored content when the substrate has one, or "" when it does not.
	Locate(ctx context.Context, area Area, name string) (string, error)
	// Delete removes the named resource. Deleting an absent resource is not
	// an error.
	Delete(ctx context.Context, area Area, name string) error
	// List returns the names of all resources in the area.
	List(ctx context.Context, area Area) ([]string, error)
	// Close releases the underlying substrate.
	Close() error
}

// checkName rejects empty names and names that could escape the area.
func checkName(area Area, name string) error {
	if !area.Valid() {
		return errors.Validationf("invalid storage area %q", area)
	}
	if name == "" {
		return errors.Validation("file name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return errors.Validationf("invalid file name %q", name)
	}
	return nil
}

// ensureLogger returns a usable logger, discarding output when none is given.
func ensureLogger(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return log
}
