package store

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"encoding/json/jsontext"
	"encoding/json/v2"

	"github.com/iconvault/iconvault/internal/domain"
	"github.com/iconvault/iconvault/internal/errors"
	"github.com/iconvault/iconvault/internal/id"
	"github.com/iconvault/iconvault/internal/storage"
)

// IconsDocName is the collection document for icons in the data area.
const IconsDocName = "icons.json"

// CategoryAll is the pseudo category matching every icon.
const CategoryAll = "all"

// defaultColor is assigned when a new icon declares no colors.
const defaultColor = "#000000"

// iconDocument is the persisted shape of the icon collection.
type iconDocument struct {
	Icons       []domain.Icon `json:"icons"`
	LastUpdated time.Time     `json:"lastUpdated"`
}

// IconStore manages the icon collection and the backing SVG files.
type IconStore struct {
	col     *collection[domain.Icon]
	backend storage.Backend
	logger  *slog.Logger
}

// NewIcon carries caller-supplied fields for a new icon. Omitted fields get
// defaults on add.
type NewIcon struct {
	Name        string
	Description string
	Categories  []string
	Tags        []string
	Colors      []string
	Multicolor  bool
}

// IconPatch is a partial update: nil fields keep their prior value.
type IconPatch struct {
	Name        *string
	Description *string
	Categories  *[]string
	Tags        *[]string
	Colors      *[]string
	Multicolor  *bool
}

// NewIconStore creates the icon store over a backend.
func NewIconStore(backend storage.Backend, logger *slog.Logger) *IconStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &IconStore{
		backend: backend,
		logger:  logger,
		col: &collection[domain.Icon]{
			backend:  backend,
			logger:   logger,
			docName:  IconsDocName,
			encode:   encodeIconDoc,
			decode:   decodeIconDoc,
			defaults: func() []domain.Icon { return []domain.Icon{} },
			clone:    cloneIcon,
		},
	}
}

func encodeIconDoc(icons []domain.Icon, updated time.Time) ([]byte, error) {
	doc := iconDocument{Icons: icons, LastUpdated: updated}
	data, err := json.Marshal(doc, jsontext.WithIndent("  "))
	if err != nil {
		return nil, errors.Internal("marshal icon document").WithCause(err)
	}
	return data, nil
}

func decodeIconDoc(data []byte) ([]domain.Icon, error) {
	var doc iconDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Corrupt("icon document unparsable").WithCause(err)
	}
	if doc.Icons == nil {
		doc.Icons = []domain.Icon{}
	}
	return doc.Icons, nil
}

func cloneIcon(i domain.Icon) domain.Icon {
	i.Categories = slices.Clone(i.Categories)
	i.Tags = slices.Clone(i.Tags)
	i.Colors = slices.Clone(i.Colors)
	return i
}

// Initialize loads the collection. Idempotent; see collection.load.
func (s *IconStore) Initialize(ctx context.Context) error {
	return s.col.load(ctx)
}

// Reload re-reads the collection document from the backend.
func (s *IconStore) Reload(ctx context.Context) error {
	return s.col.reload(ctx)
}

// Add stores the SVG content under a fresh ID and then registers the icon
// metadata. The content write comes first: if it fails, no metadata entry is
// created. A failure after the content write can leave an orphaned SVG file;
// that is tolerated and never blocks later operations.
func (s *IconStore) Add(ctx context.Context, data NewIcon, svg []byte) (string, error) {
	if len(svg) == 0 {
		return "", errors.Validation("svg content must not be empty")
	}

	iconID, err := id.Generate(id.PrefixIcon)
	if err != nil {
		return "", errors.Internal("generate icon id").WithCause(err)
	}
	filename := domain.SVGFilename(iconID)

	if err := s.backend.Save(ctx, storage.AreaIcons, filename, svg); err != nil {
		return "", err
	}

	icon := domain.Icon{
		ID:          iconID,
		Name:        data.Name,
		Description: data.Description,
		Filename:    filename,
		Categories:  slices.Clone(data.Categories),
		Tags:        slices.Clone(data.Tags),
		Colors:      slices.Clone(data.Colors),
		Multicolor:  data.Multicolor,
	}
	if icon.Name == "" {
		icon.Name = "Unnamed Icon"
	}
	if icon.Categories == nil {
		icon.Categories = []string{}
	}
	if icon.Tags == nil {
		icon.Tags = []string{}
	}
	if len(icon.Colors) == 0 {
		icon.Colors = []string{defaultColor}
	}
	icon.Init()

	s.col.mu.Lock()
	defer s.col.mu.Unlock()
	s.col.items = append(s.col.items, icon)
	if err := s.col.persistLocked(ctx); err != nil {
		// Withdraw the metadata entry; the already-written SVG file stays
		// behind as an orphan.
		s.col.items = s.col.items[:len(s.col.items)-1]
		return "", err
	}

	s.logger.Info("icon added", "id", iconID, "name", icon.Name)
	return iconID, nil
}

// Update merges the provided fields into the icon and persists. Fields left
// nil in the patch keep their prior value.
func (s *IconStore) Update(ctx context.Context, iconID string, patch IconPatch) error {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()

	icon := s.findLocked(iconID)
	if icon == nil {
		return errors.NotFoundf("icon %s not found", iconID)
	}

	if patch.Name != nil {
		icon.Name = *patch.Name
	}
	if patch.Description != nil {
		icon.Description = *patch.Description
	}
	if patch.Categories != nil {
		icon.Categories = slices.Clone(*patch.Categories)
	}
	if patch.Tags != nil {
		icon.Tags = slices.Clone(*patch.Tags)
	}
	if patch.Colors != nil {
		icon.Colors = slices.Clone(*patch.Colors)
	}
	if patch.Multicolor != nil {
		icon.Multicolor = *patch.Multicolor
	}
	icon.Touch()

	return s.col.persistLocked(ctx)
}

// UpdateColors sets the tracked colors and the multicolor flag.
func (s *IconStore) UpdateColors(ctx context.Context, iconID string, colors []string, multicolor bool) error {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()

	icon := s.findLocked(iconID)
	if icon == nil {
		return errors.NotFoundf("icon %s not found", iconID)
	}

	icon.Colors = slices.Clone(colors)
	icon.Multicolor = multicolor
	icon.Touch()

	return s.col.persistLocked(ctx)
}

// ReplaceSVG overwrites the backing SVG content in place, keeping all
// metadata. Used by the import reconciler's replace resolution and by color
// customization.
func (s *IconStore) ReplaceSVG(ctx context.Context, iconID string, svg []byte) error {
	if len(svg) == 0 {
		return errors.Validation("svg content must not be empty")
	}

	s.col.mu.Lock()
	defer s.col.mu.Unlock()

	icon := s.findLocked(iconID)
	if icon == nil {
		return errors.NotFoundf("icon %s not found", iconID)
	}

	if err := s.backend.Save(ctx, storage.AreaIcons, icon.Filename, svg); err != nil {
		return err
	}
	icon.Touch()

	return s.col.persistLocked(ctx)
}

// Delete removes the backing SVG file (best effort) and then the metadata
// entry. The two steps are not atomic: an interruption between them can
// leave an orphaned file, never a dangling metadata entry pointing at a file
// this method removed.
func (s *IconStore) Delete(ctx context.Context, iconID string) error {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()

	idx := -1
	for i := range s.col.items {
		if s.col.items[i].ID == iconID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.NotFoundf("icon %s not found", iconID)
	}

	if err := s.backend.Delete(ctx, storage.AreaIcons, s.col.items[idx].Filename); err != nil {
		s.logger.Warn("could not remove icon content, continuing",
			"id", iconID, "error", err)
	}

	s.col.items = slices.Delete(s.col.items, idx, idx+1)
	if err := s.col.persistLocked(ctx); err != nil {
		return err
	}

	s.logger.Info("icon deleted", "id", iconID)
	return nil
}

// GetByID returns a copy of the icon.
func (s *IconStore) GetByID(iconID string) (domain.Icon, error) {
	icon, ok := s.col.find(func(i *domain.Icon) bool { return i.ID == iconID })
	if !ok {
		return domain.Icon{}, errors.NotFoundf("icon %s not found", iconID)
	}
	return icon, nil
}

// GetAll returns a copy of every icon in insertion order.
func (s *IconStore) GetAll() []domain.Icon {
	return s.col.snapshot()
}

// GetByCategory returns icons assigned to the category. CategoryAll (or an
// empty id) matches everything.
func (s *IconStore) GetByCategory(categoryID string) []domain.Icon {
	all := s.col.snapshot()
	if categoryID == "" || categoryID == CategoryAll {
		return all
	}

	out := make([]domain.Icon, 0, len(all))
	for _, icon := range all {
		if icon.InCategory(categoryID) {
			out = append(out, icon)
		}
	}
	return out
}

// Search returns icons whose name, description, or any tag contains the
// query, case-insensitively. An empty query returns the unfiltered
// (optionally category-filtered) set.
func (s *IconStore) Search(query, categoryID string) []domain.Icon {
	if query == "" {
		return s.GetByCategory(categoryID)
	}

	q := strings.ToLower(query)
	matches := func(icon *domain.Icon) bool {
		if strings.Contains(strings.ToLower(icon.Name), q) {
			return true
		}
		if strings.Contains(strings.ToLower(icon.Description), q) {
			return true
		}
		for _, tag := range icon.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return false
	}

	out := make([]domain.Icon, 0)
	for _, icon := range s.col.snapshot() {
		if !matches(&icon) {
			continue
		}
		if categoryID != "" && categoryID != CategoryAll && !icon.InCategory(categoryID) {
			continue
		}
		out = append(out, icon)
	}
	return out
}

// GetRecent returns up to limit icons sorted by creation time, newest first.
func (s *IconStore) GetRecent(limit int) []domain.Icon {
	if limit <= 0 {
		limit = 8
	}

	out := s.col.snapshot()
	slices.SortStableFunc(out, func(a, b domain.Icon) int {
		return b.Created.Compare(a.Created)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SVG returns the backing SVG content. An icon whose file is missing is
// reported as content-unavailable; the metadata entry is left alone.
func (s *IconStore) SVG(ctx context.Context, iconID string) ([]byte, error) {
	icon, err := s.GetByID(iconID)
	if err != nil {
		return nil, err
	}

	content, err := s.backend.Read(ctx, storage.AreaIcons, icon.Filename)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, errors.ContentUnavailablef("icon %s has no stored content", iconID)
	}
	return content, nil
}

// LocateSVG returns an addressable location for the backing file when the
// backend has one ("" in key-value mode or when the file is missing).
func (s *IconStore) LocateSVG(ctx context.Context, iconID string) (string, error) {
	icon, err := s.GetByID(iconID)
	if err != nil {
		return "", err
	}
	return s.backend.Locate(ctx, storage.AreaIcons, icon.Filename)
}

// IconStats summarizes the collection.
type IconStats struct {
	Total          int
	UsedCategories int
	Recent         []domain.Icon
}

// Stats returns collection statistics.
func (s *IconStore) Stats() IconStats {
	all := s.col.snapshot()
	used := make(map[string]bool)
	for _, icon := range all {
		for _, c := range icon.Categories {
			used[c] = true
		}
	}
	return IconStats{
		Total:          len(all),
		UsedCategories: len(used),
		Recent:         s.GetRecent(5),
	}
}

// findLocked returns a pointer into the live slice. Callers must hold mu and
// must not retain the pointer past the critical section.
func (s *IconStore) findLocked(iconID string) *domain.Icon {
	for i := range s.col.items {
		if s.col.items[i].ID == iconID {
			return &s.col.items[i]
		}
	}
	return nil
}
