package backup_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/iconvault/iconvault/internal/backup"
	"github.com/iconvault/iconvault/internal/errors"
	"github.com/iconvault/iconvault/internal/storage"
	"github.com/iconvault/iconvault/internal/store"
	"github.com/stretchr/testify/require"
)

const sampleSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><path d="M5 12h14"/></svg>`

func setup(t *testing.T) (*backup.Service, *store.Store, storage.Backend, string) {
	t.Helper()

	backend, err := storage.NewDirectory(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	st := store.New(backend, nil)
	require.NoError(t, st.Initialize(context.Background()))

	backupDir := t.TempDir()
	return backup.New(st, backend, backupDir, "test", nil), st, backend, backupDir
}

func TestCreate_WritesArchiveWithManifest(t *testing.T) {
	svc, st, _, backupDir := setup(t)
	ctx := context.Background()

	_, err := st.Icons.Add(ctx, store.NewIcon{Name: "Home"}, []byte(sampleSVG))
	require.NoError(t, err)

	result, err := svc.Create(ctx, backup.Options{})
	require.NoError(t, err)
	require.NotEmpty(t, result.Checksum)
	require.Equal(t, 1, result.Counts.Icons)
	// One SVG file plus both collection documents.
	require.Equal(t, 3, result.Counts.Files)
	require.Equal(t, backupDir, filepath.Dir(result.Path))

	manifest, err := backup.ReadManifest(result.Path)
	require.NoError(t, err)
	require.Equal(t, backup.FormatVersion, manifest.Version)
	require.Equal(t, "test", manifest.AppVersion)
	require.Equal(t, result.Counts, manifest.Counts)

	// No temp file left behind.
	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRestore_RoundTrip(t *testing.T) {
	svc, st, _, _ := setup(t)
	ctx := context.Background()

	iconID, err := st.Icons.Add(ctx, store.NewIcon{Name: "Home", Tags: []string{"house"}}, []byte(sampleSVG))
	require.NoError(t, err)
	catID, err := st.Categories.Add(ctx, store.NewCategory{Name: "Shapes"})
	require.NoError(t, err)

	result, err := svc.Create(ctx, backup.Options{})
	require.NoError(t, err)

	// Fresh store on an empty backend; restore into it.
	backend2, err := storage.NewDirectory(t.TempDir(), nil)
	require.NoError(t, err)
	st2 := store.New(backend2, nil)
	require.NoError(t, st2.Initialize(ctx))
	svc2 := backup.New(st2, backend2, t.TempDir(), "test", nil)

	require.NoError(t, svc2.Restore(ctx, result.Path))

	icon, err := st2.Icons.GetByID(iconID)
	require.NoError(t, err)
	require.Equal(t, "Home", icon.Name)
	require.Equal(t, []string{"house"}, icon.Tags)

	content, err := st2.Icons.SVG(ctx, iconID)
	require.NoError(t, err)
	require.Equal(t, []byte(sampleSVG), content)

	_, err = st2.Categories.GetByID(catID)
	require.NoError(t, err)
}

func TestRestore_OverwritesSameNamedFiles(t *testing.T) {
	svc, st, backend, _ := setup(t)
	ctx := context.Background()

	iconID, err := st.Icons.Add(ctx, store.NewIcon{Name: "Home"}, []byte(sampleSVG))
	require.NoError(t, err)

	result, err := svc.Create(ctx, backup.Options{})
	require.NoError(t, err)

	// Mutate after the backup; restore reverts file contents.
	replacement := []byte(`<svg viewBox="0 0 16 16"><path d="M0 0h16"/></svg>`)
	require.NoError(t, st.Icons.ReplaceSVG(ctx, iconID, replacement))

	require.NoError(t, svc.Restore(ctx, result.Path))

	icon, err := st.Icons.GetByID(iconID)
	require.NoError(t, err)
	content, err := backend.Read(ctx, storage.AreaIcons, icon.Filename)
	require.NoError(t, err)
	require.Equal(t, []byte(sampleSVG), content)
}

func TestList_NewestFirst(t *testing.T) {
	svc, _, _, backupDir := setup(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, backup.Options{OutputPath: filepath.Join(backupDir, "one.iconvault.zip")})
	require.NoError(t, err)
	second, err := svc.Create(ctx, backup.Options{OutputPath: filepath.Join(backupDir, "two.iconvault.zip")})
	require.NoError(t, err)

	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(backupDir, "notes.txt"), []byte("x"), 0o644))

	backups, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 2)
	require.ElementsMatch(t, []string{"one", "two"}, []string{backups[0].ID, backups[1].ID})
	require.False(t, backups[0].CreatedAt.Before(backups[1].CreatedAt))
	require.Equal(t, first.Path, filepath.Join(backupDir, "one.iconvault.zip"))
	require.Equal(t, second.Path, filepath.Join(backupDir, "two.iconvault.zip"))
}

func TestList_MissingDirIsEmpty(t *testing.T) {
	st := store.New(nil, nil)
	svc := backup.New(st, nil, "/nonexistent/backups", "test", nil)
	backups, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, backups)
}

func TestReadManifest_MissingManifest(t *testing.T) {
	_, err := backup.ReadManifest("/nonexistent/archive.zip")
	require.ErrorIs(t, err, errors.ErrStorage)
}
