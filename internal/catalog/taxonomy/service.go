package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/basteen-Dev/pavilion/internal/catalog/products"
	"github.com/basteen-Dev/pavilion/internal/platform/cache"
	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
)

// ErrMismatchedParent means a brand's sub-category sits under another category.
var ErrMismatchedParent = fmt.Errorf("%w: sub-category belongs to a different category", httpx.ErrValidation)

type Service struct {
	repo   Repository
	cache  *cache.Versioned
	logger *slog.Logger
}

// NewService builds the taxonomy service. Public listings go through cache,
// which is expected to be the catalog cache: writes here bump it so product
// pages referencing a changed entry are refreshed too.
func NewService(repo Repository, cache *cache.Versioned, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

func (s *Service) Categories(ctx context.Context, f Filter) ([]Category, error) {
	if !f.ActiveOnly {
		return s.repo.ListCategories(ctx, f)
	}
	var out []Category
	err := s.cached(ctx, &out, func(ctx context.Context) (any, error) {
		return s.repo.ListCategories(ctx, f)
	}, "categories")
	return out, err
}

func (s *Service) SubCategories(ctx context.Context, f Filter) ([]SubCategory, error) {
	if !f.ActiveOnly {
		return s.repo.ListSubCategories(ctx, f)
	}
	var out []SubCategory
	err := s.cached(ctx, &out, func(ctx context.Context) (any, error) {
		return s.repo.ListSubCategories(ctx, f)
	}, "sub_categories", optInt(f.CategoryID))
	return out, err
}

func (s *Service) Brands(ctx context.Context, f Filter) ([]Brand, error) {
	if !f.ActiveOnly {
		return s.repo.ListBrands(ctx, f)
	}
	var out []Brand
	err := s.cached(ctx, &out, func(ctx context.Context) (any, error) {
		return s.repo.ListBrands(ctx, f)
	}, "brands", optInt(f.CategoryID), optInt(f.SubCategoryID))
	return out, err
}

func (s *Service) cached(ctx context.Context, dest any, loader func(context.Context) (any, error), parts ...string) error {
	key, err := s.cache.BuildKey(ctx, append([]string{"taxonomy"}, parts...)...)
	if err != nil {
		s.logger.Warn("taxonomy cache key", slog.Any("error", err))
		// A nil cache loads straight through.
		var direct *cache.Versioned
		return direct.FetchJSON(ctx, "", dest, loader)
	}
	return s.cache.FetchJSON(ctx, key, dest, loader)
}

func (s *Service) Category(ctx context.Context, id int64) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *Service) SubCategory(ctx context.Context, id int64) (*SubCategory, error) {
	return s.repo.GetSubCategory(ctx, id)
}

func (s *Service) Brand(ctx context.Context, id int64) (*Brand, error) {
	return s.repo.GetBrand(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, req CategoryRequest) (*Category, error) {
	slug, err := slugFor(req.Slug, req.Name)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.CreateCategory(ctx, Category{
		Name:     req.Name,
		Slug:     slug,
		ImageURL: req.ImageURL,
		IsActive: req.IsActive == nil || *req.IsActive,
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *Service) CreateSubCategory(ctx context.Context, req SubCategoryRequest) (*SubCategory, error) {
	slug, err := slugFor(req.Slug, req.Name)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.CreateSubCategory(ctx, SubCategory{
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Slug:       slug,
		ImageURL:   req.ImageURL,
		IsActive:   req.IsActive == nil || *req.IsActive,
	})
	if err != nil {
		return nil, fmt.Errorf("create sub-category: %w", err)
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *Service) CreateBrand(ctx context.Context, req BrandRequest) (*Brand, error) {
	slug, err := slugFor(req.Slug, req.Name)
	if err != nil {
		return nil, err
	}
	categoryID, err := s.brandCategory(ctx, req.CategoryID, req.SubCategoryID)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.CreateBrand(ctx, Brand{
		Name:          req.Name,
		Slug:          slug,
		ImageURL:      req.ImageURL,
		LogoURL:       req.LogoURL,
		CategoryID:    categoryID,
		SubCategoryID: req.SubCategoryID,
		IsActive:      req.IsActive == nil || *req.IsActive,
	})
	if err != nil {
		return nil, fmt.Errorf("create brand: %w", err)
	}
	s.invalidate(ctx)
	return created, nil
}

// brandCategory derives a brand's category from its sub-category when only
// the latter is given, and rejects a pair that disagrees.
func (s *Service) brandCategory(ctx context.Context, categoryID, subCategoryID *int64) (*int64, error) {
	if subCategoryID == nil {
		return categoryID, nil
	}
	sc, err := s.repo.GetSubCategory(ctx, *subCategoryID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnknownParent
		}
		return nil, fmt.Errorf("get sub-category: %w", err)
	}
	if categoryID != nil && *categoryID != sc.CategoryID {
		return nil, ErrMismatchedParent
	}
	return &sc.CategoryID, nil
}

// Update patches the entry of kind and returns its fresh state.
func (s *Service) Update(ctx context.Context, kind Kind, id int64, req UpdateRequest) (any, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Slug != nil {
		slug := products.Slugify(*req.Slug)
		if slug == "" {
			return nil, fmt.Errorf("%w: slug is empty", httpx.ErrValidation)
		}
		updates["slug"] = slug
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.SubCategoryID != nil {
		updates["sub_category_id"] = *req.SubCategoryID
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	allowed := make(map[string]bool)
	for _, col := range updatableColumns[kind] {
		allowed[col] = true
	}
	for col := range updates {
		if !allowed[col] {
			return nil, fmt.Errorf("%w: %s cannot be set on %s", httpx.ErrValidation, col, kind)
		}
	}

	if kind == KindBrand && (req.CategoryID != nil || req.SubCategoryID != nil) {
		existing, err := s.repo.GetBrand(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get brand: %w", err)
		}
		// A new sub-category carries its own category unless one is given.
		categoryID, subCategoryID := req.CategoryID, req.SubCategoryID
		if subCategoryID == nil {
			subCategoryID = existing.SubCategoryID
		}
		derived, err := s.brandCategory(ctx, categoryID, subCategoryID)
		if err != nil {
			return nil, err
		}
		if derived != nil {
			updates["category_id"] = *derived
		}
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, kind, id, updates); err != nil {
			return nil, fmt.Errorf("update %s: %w", kind, err)
		}
		s.invalidate(ctx)
	}
	return s.get(ctx, kind, id)
}

func (s *Service) Delete(ctx context.Context, kind Kind, id int64) error {
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) get(ctx context.Context, kind Kind, id int64) (any, error) {
	switch kind {
	case KindCategory:
		return s.repo.GetCategory(ctx, id)
	case KindSubCategory:
		return s.repo.GetSubCategory(ctx, id)
	case KindBrand:
		return s.repo.GetBrand(ctx, id)
	default:
		return nil, fmt.Errorf("taxonomy: unknown kind %q", kind)
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("catalog cache bump", slog.Any("error", err))
	}
}

func slugFor(slug, name string) (string, error) {
	if slug == "" {
		slug = name
	}
	out := products.Slugify(slug)
	if out == "" {
		return "", fmt.Errorf("%w: slug could not be derived from name", httpx.ErrValidation)
	}
	return out, nil
}

func optInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}
