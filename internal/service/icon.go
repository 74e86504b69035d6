// Package service provides the business logic layer over the entity stores:
// request validation, tag normalization, and cross-entity checks.
package service

import (
	"context"
	"log/slog"

	"github.com/iconvault/iconvault/internal/domain"
	"github.com/iconvault/iconvault/internal/errors"
	"github.com/iconvault/iconvault/internal/normalize"
	"github.com/iconvault/iconvault/internal/store"
	"github.com/iconvault/iconvault/internal/validation"
)

// IconService orchestrates icon operations.
type IconService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewIconService creates a new icon service.
func NewIconService(st *store.Store, v *validation.Validator, logger *slog.Logger) *IconService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &IconService{store: st, validator: v, logger: logger}
}

// CreateIconRequest carries the fields for a new icon.
type CreateIconRequest struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Description string   `json:"description" validate:"max=1000"`
	Categories  []string `json:"categories" validate:"max=32,dive,required"`
	Tags        []string `json:"tags" validate:"max=64"`
	Colors      []string `json:"colors" validate:"max=64,dive,hexcolor"`
	Multicolor  bool     `json:"multicolor"`
	SVG         []byte   `json:"svg" validate:"required"`
}

// UpdateIconRequest is a partial update; nil fields are left unchanged.
type UpdateIconRequest struct {
	Name        *string   `json:"name" validate:"omitempty,max=120"`
	Description *string   `json:"description" validate:"omitempty,max=1000"`
	Categories  *[]string `json:"categories" validate:"omitempty,max=32,dive,required"`
	Tags        *[]string `json:"tags" validate:"omitempty,max=64"`
	Colors      *[]string `json:"colors" validate:"omitempty,max=64,dive,hexcolor"`
	Multicolor  *bool     `json:"multicolor"`
}

// Create validates the request, normalizes tags, verifies the referenced
// categories exist, and adds the icon with its SVG content.
func (s *IconService) Create(ctx context.Context, req CreateIconRequest) (*domain.Icon, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.checkCategories(req.Categories); err != nil {
		return nil, err
	}

	iconID, err := s.store.Icons.Add(ctx, store.NewIcon{
		Name:        req.Name,
		Description: req.Description,
		Categories:  req.Categories,
		Tags:        normalize.Tags(req.Tags),
		Colors:      req.Colors,
		Multicolor:  req.Multicolor,
	}, req.SVG)
	if err != nil {
		return nil, err
	}

	icon, err := s.store.Icons.GetByID(iconID)
	if err != nil {
		return nil, err
	}
	return &icon, nil
}

// Update applies a partial update to an existing icon.
func (s *IconService) Update(ctx context.Context, iconID string, req UpdateIconRequest) (*domain.Icon, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Categories != nil {
		if err := s.checkCategories(*req.Categories); err != nil {
			return nil, err
		}
	}

	patch := store.IconPatch{
		Name:        req.Name,
		Description: req.Description,
		Categories:  req.Categories,
		Colors:      req.Colors,
		Multicolor:  req.Multicolor,
	}
	if req.Tags != nil {
		tags := normalize.Tags(*req.Tags)
		patch.Tags = &tags
	}

	if err := s.store.Icons.Update(ctx, iconID, patch); err != nil {
		return nil, err
	}

	icon, err := s.store.Icons.GetByID(iconID)
	if err != nil {
		return nil, err
	}
	return &icon, nil
}

// SetColors replaces the tracked color list and multicolor flag.
func (s *IconService) SetColors(ctx context.Context, iconID string, colors []string, multicolor bool) error {
	req := struct {
		Colors []string `json:"colors" validate:"required,max=64,dive,hexcolor"`
	}{Colors: colors}
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	return s.store.Icons.UpdateColors(ctx, iconID, colors, multicolor)
}

// ReplaceContent overwrites the icon's SVG content in place.
func (s *IconService) ReplaceContent(ctx context.Context, iconID string, svg []byte) error {
	return s.store.Icons.ReplaceSVG(ctx, iconID, svg)
}

// Delete removes the icon and its content.
func (s *IconService) Delete(ctx context.Context, iconID string) error {
	return s.store.Icons.Delete(ctx, iconID)
}

// Get returns a single icon by ID.
func (s *IconService) Get(iconID string) (*domain.Icon, error) {
	icon, err := s.store.Icons.GetByID(iconID)
	if err != nil {
		return nil, err
	}
	return &icon, nil
}

// List returns icons in the given category; empty or "all" means everything.
func (s *IconService) List(categoryID string) []domain.Icon {
	return s.store.Icons.GetByCategory(categoryID)
}

// Search matches name, description, and tags case-insensitively, optionally
// scoped to a category.
func (s *IconService) Search(query, categoryID string) []domain.Icon {
	return s.store.Icons.Search(query, categoryID)
}

// Recent returns the most recently created icons, newest first.
func (s *IconService) Recent(limit int) []domain.Icon {
	return s.store.Icons.GetRecent(limit)
}

// Content returns the icon's SVG bytes.
func (s *IconService) Content(ctx context.Context, iconID string) ([]byte, error) {
	return s.store.Icons.SVG(ctx, iconID)
}

// Stats summarizes the icon collection.
func (s *IconService) Stats() store.IconStats {
	return s.store.Icons.Stats()
}

// checkCategories verifies every referenced category exists.
func (s *IconService) checkCategories(categoryIDs []string) error {
	for _, catID := range categoryIDs {
		if catID == store.CategoryAll {
			continue
		}
		if _, err := s.store.Categories.GetByID(catID); err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return errors.Validationf("unknown category %s", catID)
			}
			return err
		}
	}
	return nil
}
