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

// CategoriesDocName is the collection document for categories in the data area.
const CategoriesDocName = "categories.json"

// categoryDocument is the persisted shape of the category collection.
type categoryDocument struct {
	Categories  []domain.Category `json:"categories"`
	LastUpdated time.Time         `json:"lastUpdated"`
}

// CategoryStore manages the category collection.
type CategoryStore struct {
	col    *collection[domain.Category]
	logger *slog.Logger
}

// NewCategory carries caller-supplied fields for a new category.
type NewCategory struct {
	Name        string
	Description string
	Parent      string
}

// CategoryPatch is a partial update: nil fields keep their prior value.
// Setting Parent to an empty string moves the category to the top level.
type CategoryPatch struct {
	Name        *string
	Description *string
	Parent      *string
}

// NewCategoryStore creates the category store over a backend.
func NewCategoryStore(backend storage.Backend, logger *slog.Logger) *CategoryStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CategoryStore{
		logger: logger,
		col: &collection[domain.Category]{
			backend:  backend,
			logger:   logger,
			docName:  CategoriesDocName,
			encode:   encodeCategoryDoc,
			decode:   decodeCategoryDoc,
			defaults: defaultCategories,
			clone:    func(c domain.Category) domain.Category { return c },
		},
	}
}

func encodeCategoryDoc(categories []domain.Category, updated time.Time) ([]byte, error) {
	doc := categoryDocument{Categories: categories, LastUpdated: updated}
	data, err := json.Marshal(doc, jsontext.WithIndent("  "))
	if err != nil {
		return nil, errors.Internal("marshal category document").WithCause(err)
	}
	return data, nil
}

func decodeCategoryDoc(data []byte) ([]domain.Category, error) {
	var doc categoryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Corrupt("category document unparsable").WithCause(err)
	}
	if doc.Categories == nil {
		doc.Categories = []domain.Category{}
	}
	return doc.Categories, nil
}

// defaultCategories seeds a first run (or a reset after corruption) with a
// small starter tree.
func defaultCategories() []domain.Category {
	now := time.Now()
	stamp := domain.Timestamps{Created: now, Modified: now}
	return []domain.Category{
		{ID: "cat-001", Name: "User Interface", Description: "General UI icons", Timestamps: stamp},
		{ID: "cat-002", Name: "Navigation", Description: "Navigation icons", Parent: "cat-001", Timestamps: stamp},
		{ID: "cat-003", Name: "Actions", Description: "Action icons", Parent: "cat-001", Timestamps: stamp},
	}
}

// Initialize loads the collection. Idempotent; see collection.load.
func (s *CategoryStore) Initialize(ctx context.Context) error {
	return s.col.load(ctx)
}

// Reload re-reads the collection document from the backend.
func (s *CategoryStore) Reload(ctx context.Context) error {
	return s.col.reload(ctx)
}

// Add registers a new category and persists the collection.
func (s *CategoryStore) Add(ctx context.Context, data NewCategory) (string, error) {
	catID, err := id.Generate(id.PrefixCategory)
	if err != nil {
		return "", errors.Internal("generate category id").WithCause(err)
	}

	category := domain.Category{
		ID:          catID,
		Name:        data.Name,
		Description: data.Description,
		Parent:      data.Parent,
	}
	if category.Name == "" {
		category.Name = "Unnamed Category"
	}
	category.Init()

	s.col.mu.Lock()
	defer s.col.mu.Unlock()
	s.col.items = append(s.col.items, category)
	if err := s.col.persistLocked(ctx); err != nil {
		s.col.items = s.col.items[:len(s.col.items)-1]
		return "", err
	}

	s.logger.Info("category added", "id", catID, "name", category.Name)
	return catID, nil
}

// Update merges the provided fields into the category and persists.
func (s *CategoryStore) Update(ctx context.Context, catID string, patch CategoryPatch) error {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()

	var category *domain.Category
	for i := range s.col.items {
		if s.col.items[i].ID == catID {
			category = &s.col.items[i]
			break
		}
	}
	if category == nil {
		return errors.NotFoundf("category %s not found", catID)
	}

	if patch.Name != nil {
		category.Name = *patch.Name
	}
	if patch.Description != nil {
		category.Description = *patch.Description
	}
	if patch.Parent != nil {
		category.Parent = *patch.Parent
	}
	category.Touch()

	return s.col.persistLocked(ctx)
}

// Delete removes a category. A category referenced as Parent by any other
// category cannot be deleted; the delete fails instead of cascading.
func (s *CategoryStore) Delete(ctx context.Context, catID string) error {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()

	idx := -1
	for i := range s.col.items {
		if s.col.items[i].ID == catID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.NotFoundf("category %s not found", catID)
	}

	for i := range s.col.items {
		if s.col.items[i].Parent == catID {
			return errors.IntegrityViolationf("category %s has child categories", catID)
		}
	}

	s.col.items = slices.Delete(s.col.items, idx, idx+1)
	if err := s.col.persistLocked(ctx); err != nil {
		return err
	}

	s.logger.Info("category deleted", "id", catID)
	return nil
}

// GetByID returns a copy of the category.
func (s *CategoryStore) GetByID(catID string) (domain.Category, error) {
	category, ok := s.col.find(func(c *domain.Category) bool { return c.ID == catID })
	if !ok {
		return domain.Category{}, errors.NotFoundf("category %s not found", catID)
	}
	return category, nil
}

// GetAll returns a copy of every category in insertion order.
func (s *CategoryStore) GetAll() []domain.Category {
	return s.col.snapshot()
}

// TopLevel returns categories with no parent.
func (s *CategoryStore) TopLevel() []domain.Category {
	all := s.col.snapshot()
	out := make([]domain.Category, 0, len(all))
	for _, c := range all {
		if c.IsRoot() {
			out = append(out, c)
		}
	}
	return out
}

// Children returns the direct children of a category.
func (s *CategoryStore) Children(parentID string) []domain.Category {
	all := s.col.snapshot()
	out := make([]domain.Category, 0)
	for _, c := range all {
		if c.Parent == parentID {
			out = append(out, c)
		}
	}
	return out
}

// Search returns categories whose name or description contains the query,
// case-insensitively. An empty query returns everything.
func (s *CategoryStore) Search(query string) []domain.Category {
	all := s.col.snapshot()
	if query == "" {
		return all
	}

	q := strings.ToLower(query)
	out := make([]domain.Category, 0, len(all))
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Description), q) {
			out = append(out, c)
		}
	}
	return out
}

// Tree builds the hierarchical view of the current collection.
func (s *CategoryStore) Tree() []*domain.CategoryNode {
	return BuildTree(s.col.snapshot())
}

// PathTo returns the ancestry of a category, root first.
func (s *CategoryStore) PathTo(catID string) []domain.Category {
	return Path(s.col.snapshot(), catID)
}

// CategoryStats summarizes the collection.
type CategoryStats struct {
	Total    int
	TopLevel int
}

// Stats returns collection statistics.
func (s *CategoryStore) Stats() CategoryStats {
	return CategoryStats{
		Total:    len(s.col.snapshot()),
		TopLevel: len(s.TopLevel()),
	}
}
