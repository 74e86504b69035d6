package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/iconvault/iconvault/internal/storage"
)

// collection owns the in-memory item slice for one entity type and its
// persistence as a single JSON document in the data area. Every mutation
// rewrites the whole document.
//
// The browser original relied on a single-threaded runtime for mutual
// exclusion; here a mutex serializes writers per collection. Readers get
// defensive copies, never the live slice.
type collection[T any] struct {
	backend storage.Backend
	logger  *slog.Logger
	docName string

	encode   func(items []T, updated time.Time) ([]byte, error)
	decode   func(data []byte) ([]T, error)
	defaults func() []T
	clone    func(T) T

	mu     sync.Mutex
	items  []T
	loaded bool
}

// load reads the document and populates items. Idempotent. An absent or
// unparsable document falls back to the default items and persists them
// immediately: corruption never blocks startup, it resets this collection.
func (c *collection[T]) load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return nil
	}
	return c.loadLocked(ctx)
}

// reload forces a fresh read of the document.
func (c *collection[T]) reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx)
}

func (c *collection[T]) loadLocked(ctx context.Context) error {
	data, err := c.backend.Read(ctx, storage.AreaData, c.docName)
	if err != nil {
		return err
	}

	if data == nil {
		c.items = c.defaults()
		c.loaded = true
		return c.persistLocked(ctx)
	}

	items, err := c.decode(data)
	if err != nil {
		c.logger.Warn("collection document unparsable, resetting to defaults",
			"document", c.docName, "error", err)
		c.items = c.defaults()
		c.loaded = true
		return c.persistLocked(ctx)
	}

	c.items = items
	c.loaded = true
	return nil
}

// persistLocked rewrites the whole document. Callers must hold mu.
func (c *collection[T]) persistLocked(ctx context.Context) error {
	data, err := c.encode(c.items, time.Now())
	if err != nil {
		return err
	}
	return c.backend.Save(ctx, storage.AreaData, c.docName, data)
}

// snapshot returns a deep copy of the items.
func (c *collection[T]) snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]T, len(c.items))
	for i, item := range c.items {
		out[i] = c.clone(item)
	}
	return out
}

// find returns a copy of the first item matching pred and whether one exists.
func (c *collection[T]) find(pred func(*T) bool) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if pred(&c.items[i]) {
			return c.clone(c.items[i]), true
		}
	}
	var zero T
	return zero, false
}
