// Package importer implements bulk icon import with duplicate-name
// reconciliation. A batch is staged first, partitioning candidates into clean
// and conflicting by case-insensitive name collision; every conflict must be
// resolved (rename, replace, or skip) before the batch can be finalized.
package importer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/iconvault/iconvault/internal/errors"
	"github.com/iconvault/iconvault/internal/normalize"
	"github.com/iconvault/iconvault/internal/store"
)

// Candidate is one (metadata, SVG content) pair offered to a batch.
type Candidate struct {
	Name        string
	Description string
	Categories  []string
	Tags        []string
	SVG         []byte
}

// Resolution states for a conflicting candidate.
type Resolution string

const (
	Unresolved Resolution = "unresolved"
	Rename     Resolution = "rename"
	Replace    Resolution = "replace"
	Skip       Resolution = "skip"
)

// Conflict describes a candidate whose name collides with an existing icon.
type Conflict struct {
	Candidate    Candidate
	ExistingID   string
	ExistingName string

	resolution Resolution
	newName    string
	applied    bool
	createdID  string
}

// Resolution returns the current resolution state.
func (c *Conflict) Resolution() Resolution { return c.resolution }

// Reconciler stages import batches against the icon store.
type Reconciler struct {
	store  *store.Store
	logger *slog.Logger
}

// New creates a reconciler.
func New(st *store.Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reconciler{store: st, logger: logger}
}

// Batch is a staged import awaiting conflict resolution and finalization.
type Batch struct {
	ID string

	mu        sync.Mutex
	store     *store.Store
	logger    *slog.Logger
	clean     []cleanItem
	conflicts []*Conflict
	report    *Report
}

type cleanItem struct {
	candidate Candidate
	applied   bool
	iconID    string
}

// Report summarizes a finalized batch.
type Report struct {
	BatchID  string
	Added    []string // icon IDs created
	Replaced []string // existing icon IDs whose content was overwritten
	Skipped  int
}

// Stage partitions the candidates into clean and conflicting items. A
// candidate conflicts when its name collides, case-insensitively, with an
// existing icon. Staging performs no writes.
func (r *Reconciler) Stage(ctx context.Context, candidates []Candidate) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	existing := make(map[string]*struct{ id, name string })
	for _, icon := range r.store.Icons.GetAll() {
		existing[normalize.Name(icon.Name)] = &struct{ id, name string }{icon.ID, icon.Name}
	}

	batch := &Batch{
		ID:     uuid.New().String(),
		store:  r.store,
		logger: r.logger,
	}
	for _, c := range candidates {
		if hit, ok := existing[normalize.Name(c.Name)]; ok {
			batch.conflicts = append(batch.conflicts, &Conflict{
				Candidate:    c,
				ExistingID:   hit.id,
				ExistingName: hit.name,
				resolution:   Unresolved,
			})
			continue
		}
		batch.clean = append(batch.clean, cleanItem{candidate: c})
	}

	r.logger.Info("import batch staged",
		"batch_id", batch.ID,
		"clean", len(batch.clean),
		"conflicts", len(batch.conflicts),
	)
	return batch, nil
}

// Conflicts returns the batch's conflicts in staging order. The returned
// pointers are live; resolutions made through Resolve* are visible in them.
func (b *Batch) Conflicts() []*Conflict {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Conflict(nil), b.conflicts...)
}

// Pending returns the number of conflicts still unresolved.
func (b *Batch) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pendingLocked()
}

func (b *Batch) pendingLocked() int {
	n := 0
	for _, c := range b.conflicts {
		if c.resolution == Unresolved {
			n++
		}
	}
	return n
}

// ResolveRename resolves conflict i by importing under a new name. The new
// name is re-checked against existing icons and every other name staged in
// this batch; a second collision is rejected and the conflict stays pending.
func (b *Batch) ResolveRename(i int, newName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, err := b.conflictLocked(i)
	if err != nil {
		return err
	}
	if newName == "" {
		return errors.Validation("new name must not be empty")
	}

	key := normalize.Name(newName)
	for _, icon := range b.store.Icons.GetAll() {
		if normalize.Name(icon.Name) == key {
			return errors.Conflictf("name %q still collides with icon %s", newName, icon.ID)
		}
	}
	for _, item := range b.clean {
		if normalize.Name(item.candidate.Name) == key {
			return errors.Conflictf("name %q collides with another item in this batch", newName)
		}
	}
	for j, other := range b.conflicts {
		if j != i && other.resolution == Rename && normalize.Name(other.newName) == key {
			return errors.Conflictf("name %q collides with another rename in this batch", newName)
		}
	}

	c.resolution = Rename
	c.newName = newName
	return nil
}

// ResolveReplace resolves conflict i by overwriting the existing icon's SVG
// content at finalize. The existing icon keeps its ID, name, and metadata;
// the candidate's own metadata is discarded.
func (b *Batch) ResolveReplace(i int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, err := b.conflictLocked(i)
	if err != nil {
		return err
	}
	c.resolution = Replace
	return nil
}

// ResolveSkip drops conflict i from the batch.
func (b *Batch) ResolveSkip(i int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, err := b.conflictLocked(i)
	if err != nil {
		return err
	}
	c.resolution = Skip
	return nil
}

func (b *Batch) conflictLocked(i int) (*Conflict, error) {
	if i < 0 || i >= len(b.conflicts) {
		return nil, errors.NotFoundf("no conflict at index %d", i)
	}
	if b.report != nil {
		return nil, errors.Conflict("batch already finalized")
	}
	return b.conflicts[i], nil
}

// Finalize applies the batch: clean items are added, renames are added under
// their new names, replacements overwrite content in place, skips are
// dropped. It rejects while any conflict is unresolved. Writes proceed
// item-by-item with no rollback; a failed Finalize may be retried and will
// not re-apply items that already succeeded.
func (b *Batch) Finalize(ctx context.Context) (*Report, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.report != nil {
		return b.report, nil
	}
	if n := b.pendingLocked(); n > 0 {
		return nil, errors.Conflictf("%d unresolved conflicts remain", n)
	}

	report := &Report{BatchID: b.ID}

	for i := range b.clean {
		item := &b.clean[i]
		if !item.applied {
			iconID, err := b.addLocked(ctx, item.candidate, item.candidate.Name)
			if err != nil {
				return nil, err
			}
			item.applied = true
			item.iconID = iconID
		}
		report.Added = append(report.Added, item.iconID)
	}

	for _, c := range b.conflicts {
		switch c.resolution {
		case Rename:
			if !c.applied {
				iconID, err := b.addLocked(ctx, c.Candidate, c.newName)
				if err != nil {
					return nil, err
				}
				c.applied = true
				c.createdID = iconID
			}
			report.Added = append(report.Added, c.createdID)
		case Replace:
			if !c.applied {
				if err := b.store.Icons.ReplaceSVG(ctx, c.ExistingID, c.Candidate.SVG); err != nil {
					return nil, err
				}
				c.applied = true
			}
			report.Replaced = append(report.Replaced, c.ExistingID)
		case Skip:
			report.Skipped++
		}
	}

	b.report = report
	b.logger.Info("import batch finalized",
		"batch_id", b.ID,
		"added", len(report.Added),
		"replaced", len(report.Replaced),
		"skipped", report.Skipped,
	)
	return report, nil
}

func (b *Batch) addLocked(ctx context.Context, c Candidate, name string) (string, error) {
	return b.store.Icons.Add(ctx, store.NewIcon{
		Name:        name,
		Description: c.Description,
		Categories:  c.Categories,
		Tags:        normalize.Tags(c.Tags),
	}, c.SVG)
}
