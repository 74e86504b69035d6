package service

import (
	"context"
	"log/slog"

	"github.com/iconvault/iconvault/internal/domain"
	"github.com/iconvault/iconvault/internal/errors"
	"github.com/iconvault/iconvault/internal/store"
	"github.com/iconvault/iconvault/internal/validation"
)

// CategoryService orchestrates category operations.
type CategoryService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(st *store.Store, v *validation.Validator, logger *slog.Logger) *CategoryService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CategoryService{store: st, validator: v, logger: logger}
}

// CreateCategoryRequest carries the fields for a new category.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=1000"`
	Parent      string `json:"parent"`
}

// UpdateCategoryRequest is a partial update; nil fields are left unchanged.
// Setting Parent to an empty string moves the category to the top level.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=120"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Parent      *string `json:"parent"`
}

// Create validates the request, verifies the parent exists when given, and
// adds the category.
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*domain.Category, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Parent != "" {
		if _, err := s.store.Categories.GetByID(req.Parent); err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return nil, errors.Validationf("unknown parent category %s", req.Parent)
			}
			return nil, err
		}
	}

	catID, err := s.store.Categories.Add(ctx, store.NewCategory{
		Name:        req.Name,
		Description: req.Description,
		Parent:      req.Parent,
	})
	if err != nil {
		return nil, err
	}

	category, err := s.store.Categories.GetByID(catID)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Update applies a partial update. A parent change is rejected when the new
// parent is the category itself or one of its descendants, since that would
// detach the subtree into a cycle.
func (s *CategoryService) Update(ctx context.Context, catID string, req UpdateCategoryRequest) (*domain.Category, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Parent != nil && *req.Parent != "" {
		if err := s.checkReparent(catID, *req.Parent); err != nil {
			return nil, err
		}
	}

	patch := store.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
		Parent:      req.Parent,
	}
	if err := s.store.Categories.Update(ctx, catID, patch); err != nil {
		return nil, err
	}

	category, err := s.store.Categories.GetByID(catID)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Delete removes a category. It fails while other categories still reference
// it as their parent.
func (s *CategoryService) Delete(ctx context.Context, catID string) error {
	return s.store.Categories.Delete(ctx, catID)
}

// Get returns a single category by ID.
func (s *CategoryService) Get(catID string) (*domain.Category, error) {
	category, err := s.store.Categories.GetByID(catID)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// List returns every category in insertion order.
func (s *CategoryService) List() []domain.Category {
	return s.store.Categories.GetAll()
}

// Tree returns the hierarchical category view.
func (s *CategoryService) Tree() []*domain.CategoryNode {
	return s.store.Categories.Tree()
}

// PathTo returns the ancestry of a category, root first.
func (s *CategoryService) PathTo(catID string) []domain.Category {
	return s.store.Categories.PathTo(catID)
}

// Search matches name and description case-insensitively.
func (s *CategoryService) Search(query string) []domain.Category {
	return s.store.Categories.Search(query)
}

// Stats summarizes the category collection.
func (s *CategoryService) Stats() store.CategoryStats {
	return s.store.Categories.Stats()
}

// checkReparent verifies a new parent exists and is not the category itself
// or one of its descendants.
func (s *CategoryService) checkReparent(catID, newParent string) error {
	if newParent == catID {
		return errors.Validation("category cannot be its own parent")
	}
	if _, err := s.store.Categories.GetByID(newParent); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return errors.Validationf("unknown parent category %s", newParent)
		}
		return err
	}
	// If catID appears on the new parent's ancestry path, the move would
	// create a cycle.
	for _, ancestor := range s.store.Categories.PathTo(newParent) {
		if ancestor.ID == catID {
			return errors.Validationf("moving under %s would create a cycle", newParent)
		}
	}
	return nil
}
