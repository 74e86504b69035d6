package importer_test

import (
	"context"
	"testing"

	"github.com/iconvault/iconvault/internal/errors"
	"github.com/iconvault/iconvault/internal/importer"
	"github.com/iconvault/iconvault/internal/storage"
	"github.com/iconvault/iconvault/internal/store"
	"github.com/stretchr/testify/require"
)

const sampleSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><path d="M5 12h14"/></svg>`
const replacementSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16"><path d="M0 0h16"/></svg>`

func setup(t *testing.T) (*importer.Reconciler, *store.Store) {
	t.Helper()

	backend, err := storage.NewDirectory(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	st := store.New(backend, nil)
	require.NoError(t, st.Initialize(context.Background()))
	return importer.New(st, nil), st
}

func candidate(name string) importer.Candidate {
	return importer.Candidate{Name: name, SVG: []byte(sampleSVG)}
}

func TestStage_PartitionsByNormalizedName(t *testing.T) {
	r, st := setup(t)
	ctx := context.Background()

	existingID, err := st.Icons.Add(ctx, store.NewIcon{Name: "Home"}, []byte(sampleSVG))
	require.NoError(t, err)

	batch, err := r.Stage(ctx, []importer.Candidate{
		candidate("Settings"),
		candidate("HOME"),   // case-insensitive collision
		candidate(" home "), // whitespace-folded collision
	})
	require.NoError(t, err)

	conflicts := batch.Conflicts()
	require.Len(t, conflicts, 2)
	require.Equal(t, existingID, conflicts[0].ExistingID)
	require.Equal(t, "Home", conflicts[0].ExistingName)
	require.Equal(t, 2, batch.Pending())
}

func TestFinalize_RejectsWhileUnresolved(t *testing.T) {
	r, st := setup(t)
	ctx := context.Background()

	_, err := st.Icons.Add(ctx, store.NewIcon{Name: "Home"}, []byte(sampleSVG))
	require.NoError(t, err)

	batch, err := r.Stage(ctx, []importer.Candidate{candidate("Settings"), candidate("home")})
	require.NoError(t, err)

	_, err = batch.Finalize(ctx)
	require.ErrorIs(t, err, errors.ErrConflict)

	// No writes happen before the batch is fully resolved.
	require.Len(t, st.Icons.GetAll(), 1)
}

func TestResolveRename_RechecksCollisions(t *testing.T) {
	r, st := setup(t)
	ctx := context.Background()

	_, err := st.Icons.Add(ctx, store.NewIcon{Name: "Home"}, []byte(sampleSVG))
	require.NoError(t, err)
	_, err = st.Icons.Add(ctx, store.NewIcon{Name: "Settings"}, []byte(sampleSVG))
	require.NoError(t, err)

	batch, err := r.Stage(ctx, []importer.Candidate{candidate("Gear"), candidate("home")})
	require.NoError(t, err)
	require.Equal(t, 1, batch.Pending())

	// Renaming onto another existing icon is still a collision.
	require.ErrorIs(t, batch.ResolveRename(0, "SETTINGS"), errors.ErrConflict)
	// Renaming onto a clean item staged in this batch is too.
	require.ErrorIs(t, batch.ResolveRename(0, "gear"), errors.ErrConflict)
	require.Equal(t, 1, batch.Pending())

	require.NoError(t, batch.ResolveRename(0, "Hearth"))
	require.Equal(t, 0, batch.Pending())

	report, err := batch.Finalize(ctx)
	require.NoError(t, err)
	require.Len(t, report.Added, 2) // Gear + Hearth

	require.Len(t, st.Icons.Search("hearth", ""), 1)
}

func TestResolveReplace_KeepsMetadataOverwritesContent(t *testing.T) {
	r, st := setup(t)
	ctx := context.Background()

	existingID, err := st.Icons.Add(ctx, store.NewIcon{
		Name: "Home",
		Tags: []string{"house"},
	}, []byte(sampleSVG))
	require.NoError(t, err)

	batch, err := r.Stage(ctx, []importer.Candidate{{
		Name:        "home",
		Description: "discarded metadata",
		SVG:         []byte(replacementSVG),
	}})
	require.NoError(t, err)
	require.NoError(t, batch.ResolveReplace(0))

	report, err := batch.Finalize(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{existingID}, report.Replaced)
	require.Empty(t, report.Added)

	icon, err := st.Icons.GetByID(existingID)
	require.NoError(t, err)
	require.Equal(t, "Home", icon.Name)
	require.Equal(t, []string{"house"}, icon.Tags)
	require.Empty(t, icon.Description, "candidate metadata is discarded")

	content, err := st.Icons.SVG(ctx, existingID)
	require.NoError(t, err)
	require.Equal(t, []byte(replacementSVG), content)
}

func TestResolveSkip_DropsItem(t *testing.T) {
	r, st := setup(t)
	ctx := context.Background()

	_, err := st.Icons.Add(ctx, store.NewIcon{Name: "Home"}, []byte(sampleSVG))
	require.NoError(t, err)

	batch, err := r.Stage(ctx, []importer.Candidate{candidate("home")})
	require.NoError(t, err)
	require.NoError(t, batch.ResolveSkip(0))

	report, err := batch.Finalize(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Skipped)
	require.Len(t, st.Icons.GetAll(), 1)
}

// faultBackend fails icon-content writes after a set number of successes, to
// drive a partial Finalize.
type faultBackend struct {
	storage.Backend
	allowed int
}

func (f *faultBackend) Save(ctx context.Context, area storage.Area, name string, content []byte) error {
	if area == storage.AreaIcons {
		if f.allowed <= 0 {
			return errors.Storagef("injected failure writing %s/%s", area, name)
		}
		f.allowed--
	}
	return f.Backend.Save(ctx, area, name, content)
}

func TestFinalize_RetryDoesNotReapply(t *testing.T) {
	inner, err := storage.NewDirectory(t.TempDir(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	fault := &faultBackend{Backend: inner, allowed: 1}
	st := store.New(fault, nil)
	require.NoError(t, st.Initialize(ctx))
	r := importer.New(st, nil)

	batch, err := r.Stage(ctx, []importer.Candidate{candidate("First"), candidate("Second")})
	require.NoError(t, err)

	// First attempt: one content write succeeds, the second fails.
	_, err = batch.Finalize(ctx)
	require.ErrorIs(t, err, errors.ErrStorage)
	require.Len(t, st.Icons.GetAll(), 1)

	// Retry with the backend healthy again: only the failed item is applied.
	fault.allowed = 10
	report, err := batch.Finalize(ctx)
	require.NoError(t, err)
	require.Len(t, report.Added, 2)
	require.Len(t, st.Icons.GetAll(), 2, "already-applied item must not be duplicated")

	// Finalize after success is idempotent.
	again, err := batch.Finalize(ctx)
	require.NoError(t, err)
	require.Equal(t, report, again)
}
