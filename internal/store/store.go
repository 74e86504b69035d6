// Package store provides the entity stores for icons and categories. Each
// store owns an in-memory collection loaded from a single JSON document in
// the data area and persisted back as a whole on every mutation.
package store

import (
	"context"
	"log/slog"

	"github.com/iconvault/iconvault/internal/storage"
)

// Store bundles the entity stores over one storage backend.
type Store struct {
	backend storage.Backend
	logger  *slog.Logger

	Icons      *IconStore
	Categories *CategoryStore
}

// New creates a Store over the given backend. Call Initialize before use.
func New(backend storage.Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		backend:    backend,
		logger:     logger,
		Icons:      NewIconStore(backend, logger),
		Categories: NewCategoryStore(backend, logger),
	}
}

// Initialize loads both collections. Idempotent; an absent or corrupt
// document resets that collection to its defaults rather than failing.
func (s *Store) Initialize(ctx context.Context) error {
	if err := s.Categories.Initialize(ctx); err != nil {
		return err
	}
	return s.Icons.Initialize(ctx)
}

// Reload discards the in-memory collections and loads them again from the
// backend. Used after a restore or an out-of-band workspace edit.
func (s *Store) Reload(ctx context.Context) error {
	if err := s.Categories.Reload(ctx); err != nil {
		return err
	}
	return s.Icons.Reload(ctx)
}

// Close releases the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
