package store_test

import (
	"context"
	"testing"
	"time"

	"encoding/json/v2"

	"github.com/iconvault/iconvault/internal/domain"
	"github.com/iconvault/iconvault/internal/errors"
	"github.com/iconvault/iconvault/internal/storage"
	"github.com/iconvault/iconvault/internal/store"
	"github.com/stretchr/testify/require"
)

const sampleSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><path d="M5 12h14" fill="#000000"/></svg>`

func setupStore(t *testing.T) (*store.Store, storage.Backend) {
	t.Helper()

	backend, err := storage.NewDirectory(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	s := store.New(backend, nil)
	require.NoError(t, s.Initialize(context.Background()))
	return s, backend
}

func addIcon(t *testing.T, s *store.Store, name string, tags ...string) string {
	t.Helper()
	iconID, err := s.Icons.Add(context.Background(), store.NewIcon{
		Name: name,
		Tags: tags,
	}, []byte(sampleSVG))
	require.NoError(t, err)
	return iconID
}

func TestIconStore_AddAssignsDefaults(t *testing.T) {
	s, backend := setupStore(t)
	ctx := context.Background()

	iconID := addIcon(t, s, "Home")

	icon, err := s.Icons.GetByID(iconID)
	require.NoError(t, err)
	require.Equal(t, "Home", icon.Name)
	require.Equal(t, iconID+".svg", icon.Filename)
	require.Equal(t, []string{"#000000"}, icon.Colors)
	require.False(t, icon.Multicolor)
	require.False(t, icon.Created.IsZero())
	require.Equal(t, icon.Created, icon.Modified)

	// The backing file exists and round-trips.
	content, err := backend.Read(ctx, storage.AreaIcons, icon.Filename)
	require.NoError(t, err)
	require.Equal(t, []byte(sampleSVG), content)
}

func TestIconStore_AddUniqueIDs(t *testing.T) {
	s, _ := setupStore(t)

	seen := make(map[string]bool)
	for range 50 {
		iconID := addIcon(t, s, "dup")
		require.False(t, seen[iconID])
		seen[iconID] = true
	}
}

func TestIconStore_PartialUpdate(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	iconID := addIcon(t, s, "Home", "house", "building")
	before, err := s.Icons.GetByID(iconID)
	require.NoError(t, err)

	time.Sleep(time.Millisecond) // ensure Modified strictly increases

	name := "Hearth"
	require.NoError(t, s.Icons.Update(ctx, iconID, store.IconPatch{Name: &name}))

	after, err := s.Icons.GetByID(iconID)
	require.NoError(t, err)
	require.Equal(t, "Hearth", after.Name)
	require.Equal(t, before.Description, after.Description)
	require.Equal(t, before.Tags, after.Tags)
	require.Equal(t, before.Categories, after.Categories)
	require.Equal(t, before.Colors, after.Colors)
	require.Equal(t, before.Created, after.Created)
	require.True(t, after.Modified.After(before.Modified))
}

func TestIconStore_UpdateNotFound(t *testing.T) {
	s, _ := setupStore(t)
	name := "x"
	err := s.Icons.Update(context.Background(), "icon-missing", store.IconPatch{Name: &name})
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestIconStore_DeleteRemovesFileAndMetadata(t *testing.T) {
	s, backend := setupStore(t)
	ctx := context.Background()

	iconID := addIcon(t, s, "Trash")
	icon, err := s.Icons.GetByID(iconID)
	require.NoError(t, err)

	require.NoError(t, s.Icons.Delete(ctx, iconID))

	_, err = s.Icons.GetByID(iconID)
	require.ErrorIs(t, err, errors.ErrNotFound)

	content, err := backend.Read(ctx, storage.AreaIcons, icon.Filename)
	require.NoError(t, err)
	require.Nil(t, content)

	require.ErrorIs(t, s.Icons.Delete(ctx, iconID), errors.ErrNotFound)
}

func TestIconStore_Search(t *testing.T) {
	s, _ := setupStore(t)

	navID := addIcon(t, s, "Navigation Arrow")
	addIcon(t, s, "Settings")

	results := s.Icons.Search("nav", "")
	require.Len(t, results, 1)
	require.Equal(t, navID, results[0].ID)

	// Case-insensitive.
	results = s.Icons.Search("NAV", "")
	require.Len(t, results, 1)

	// Tag matching.
	tagID := addIcon(t, s, "Gear", "navigation")
	results = s.Icons.Search("navigation", "")
	ids := []string{results[0].ID, results[1].ID}
	require.ElementsMatch(t, []string{navID, tagID}, ids)

	// Empty query returns everything.
	require.Len(t, s.Icons.Search("", ""), 3)
	require.Len(t, s.Icons.Search("", store.CategoryAll), 3)
}

func TestIconStore_SearchWithCategoryFilter(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	catID, err := s.Categories.Add(ctx, store.NewCategory{Name: "Arrows"})
	require.NoError(t, err)

	inCat, err := s.Icons.Add(ctx, store.NewIcon{
		Name:       "Navigation Arrow",
		Categories: []string{catID},
	}, []byte(sampleSVG))
	require.NoError(t, err)
	addIcon(t, s, "Navigation Compass")

	results := s.Icons.Search("nav", catID)
	require.Len(t, results, 1)
	require.Equal(t, inCat, results[0].ID)

	results = s.Icons.Search("", catID)
	require.Len(t, results, 1)
	require.Equal(t, inCat, results[0].ID)
}

func TestIconStore_GetRecent(t *testing.T) {
	s, _ := setupStore(t)

	var ids []string
	for _, name := range []string{"first", "second", "third"} {
		ids = append(ids, addIcon(t, s, name))
		time.Sleep(time.Millisecond)
	}

	recent := s.Icons.GetRecent(2)
	require.Len(t, recent, 2)
	require.Equal(t, ids[2], recent[0].ID)
	require.Equal(t, ids[1], recent[1].ID)
}

func TestIconStore_UpdateColors(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	iconID := addIcon(t, s, "Palette")
	require.NoError(t, s.Icons.UpdateColors(ctx, iconID, []string{"#FF0000", "#00FF00"}, true))

	icon, err := s.Icons.GetByID(iconID)
	require.NoError(t, err)
	require.Equal(t, []string{"#FF0000", "#00FF00"}, icon.Colors)
	require.True(t, icon.Multicolor)
}

func TestIconStore_ReplaceSVGKeepsMetadata(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	iconID := addIcon(t, s, "Star", "favorite")
	replacement := []byte(`<svg viewBox="0 0 16 16"><path d="M0 0h16v16H0z"/></svg>`)
	require.NoError(t, s.Icons.ReplaceSVG(ctx, iconID, replacement))

	icon, err := s.Icons.GetByID(iconID)
	require.NoError(t, err)
	require.Equal(t, "Star", icon.Name)
	require.Equal(t, []string{"favorite"}, icon.Tags)

	content, err := s.Icons.SVG(ctx, iconID)
	require.NoError(t, err)
	require.Equal(t, replacement, content)
}

func TestIconStore_SVGMissingFileIsContentUnavailable(t *testing.T) {
	s, backend := setupStore(t)
	ctx := context.Background()

	iconID := addIcon(t, s, "Ghost")
	icon, err := s.Icons.GetByID(iconID)
	require.NoError(t, err)

	// Remove the file out-of-band; the metadata record must survive.
	require.NoError(t, backend.Delete(ctx, storage.AreaIcons, icon.Filename))

	_, err = s.Icons.SVG(ctx, iconID)
	require.ErrorIs(t, err, errors.ErrContentUnavailable)

	_, err = s.Icons.GetByID(iconID)
	require.NoError(t, err, "record must never be silently deleted")
}

func TestIconStore_GetAllReturnsCopies(t *testing.T) {
	s, _ := setupStore(t)

	iconID := addIcon(t, s, "Original", "tag1")

	all := s.Icons.GetAll()
	require.Len(t, all, 1)
	all[0].Name = "Mutated"
	all[0].Tags[0] = "mutated"

	icon, err := s.Icons.GetByID(iconID)
	require.NoError(t, err)
	require.Equal(t, "Original", icon.Name)
	require.Equal(t, []string{"tag1"}, icon.Tags)
}

func TestIconStore_CorruptDocumentRecovery(t *testing.T) {
	backend, err := storage.NewDirectory(t.TempDir(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, backend.Save(ctx, storage.AreaData, store.IconsDocName, []byte("{{{not json")))

	s := store.New(backend, nil)
	require.NoError(t, s.Initialize(ctx))
	require.Empty(t, s.Icons.GetAll())

	// A valid empty document was written back.
	data, err := backend.Read(ctx, storage.AreaData, store.IconsDocName)
	require.NoError(t, err)
	var doc struct {
		Icons       []domain.Icon `json:"icons"`
		LastUpdated time.Time     `json:"lastUpdated"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Empty(t, doc.Icons)
	require.False(t, doc.LastUpdated.IsZero())
}

func TestIconStore_DocumentRoundTrip(t *testing.T) {
	backend, err := storage.NewDirectory(t.TempDir(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	s := store.New(backend, nil)
	require.NoError(t, s.Initialize(ctx))
	iconID, err := s.Icons.Add(ctx, store.NewIcon{
		Name:        "Round Trip",
		Description: "survives reload",
		Tags:        []string{"a", "b"},
		Colors:      []string{"#112233"},
	}, []byte(sampleSVG))
	require.NoError(t, err)

	// A second store over the same backend sees the same collection.
	s2 := store.New(backend, nil)
	require.NoError(t, s2.Initialize(ctx))

	icon, err := s2.Icons.GetByID(iconID)
	require.NoError(t, err)
	require.Equal(t, "Round Trip", icon.Name)
	require.Equal(t, "survives reload", icon.Description)
	require.Equal(t, []string{"a", "b"}, icon.Tags)
	require.Equal(t, []string{"#112233"}, icon.Colors)
}
