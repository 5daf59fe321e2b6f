package products

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/basteen-Dev/pavilion/internal/platform/cache"
	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
	"github.com/basteen-Dev/pavilion/internal/shared"
)

var emptyList = json.RawMessage(`[]`)

type Service struct {
	repo   Repository
	cache  *cache.Versioned
	logger *slog.Logger
}

// NewService builds the catalog service. A nil cache serves the storefront
// straight from the repository.
func NewService(repo Repository, cache *cache.Versioned, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if err := validatePrices(req.MRP, req.DealerPrice, req.SellingPrice); err != nil {
		return nil, err
	}
	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: slug could not be derived from name", httpx.ErrValidation)
	}
	images, err := jsonArray("images", req.Images)
	if err != nil {
		return nil, err
	}
	variants, err := jsonArray("variants", req.Variants)
	if err != nil {
		return nil, err
	}

	p := Product{
		Name:             req.Name,
		Slug:             slug,
		SKU:              req.SKU,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		MRP:              req.MRP.Round(2),
		DealerPrice:      req.DealerPrice.Round(2),
		SellingPrice:     req.SellingPrice.Round(2),
		CategoryID:       req.CategoryID,
		SubCategoryID:    req.SubCategoryID,
		BrandID:          req.BrandID,
		Images:           images,
		Variants:         variants,
		IsActive:         req.IsActive == nil || *req.IsActive,
		IsFeatured:       req.IsFeatured,
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*Product, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	mrp, dealer, selling := existing.MRP, existing.DealerPrice, existing.SellingPrice
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Slug != nil {
		slug := Slugify(*req.Slug)
		if slug == "" {
			return nil, fmt.Errorf("%w: slug is empty", httpx.ErrValidation)
		}
		updates["slug"] = slug
	}
	if req.SKU != nil {
		updates["sku"] = *req.SKU
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ShortDescription != nil {
		updates["short_description"] = *req.ShortDescription
	}
	if req.MRP != nil {
		mrp = req.MRP.Round(2)
		updates["mrp"] = mrp
	}
	if req.DealerPrice != nil {
		dealer = req.DealerPrice.Round(2)
		updates["dealer_price"] = dealer
	}
	if req.SellingPrice != nil {
		selling = req.SellingPrice.Round(2)
		updates["selling_price"] = selling
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.SubCategoryID != nil {
		updates["sub_category_id"] = *req.SubCategoryID
	}
	if req.BrandID != nil {
		updates["brand_id"] = *req.BrandID
	}
	if req.Images != nil {
		images, err := jsonArray("images", req.Images)
		if err != nil {
			return nil, err
		}
		updates["images"] = images
	}
	if req.Variants != nil {
		variants, err := jsonArray("variants", req.Variants)
		if err != nil {
			return nil, err
		}
		updates["variants"] = variants
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}

	if len(updates) == 0 {
		return existing, nil
	}
	if err := validatePrices(mrp, dealer, selling); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.Get(ctx, id)
}

// GetMany resolves products by id. Missing ids are absent from the map.
func (s *Service) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error) {
	return s.repo.GetMany(ctx, ids)
}

func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	return s.repo.List(ctx, req)
}

// Storefront lists active products through the versioned cache.
func (s *Service) Storefront(ctx context.Context, req ListProductsRequest, page, perPage int) (StorefrontPage, error) {
	active := true
	req.IsActive = &active

	key, err := s.cache.BuildKey(ctx, "list", strconv.Itoa(page), strconv.Itoa(perPage),
		req.Search, optInt(req.CategoryID), optInt(req.SubCategoryID), optInt(req.BrandID), optBool(req.Featured))
	if err != nil {
		s.logger.Warn("catalog cache key", slog.Any("error", err))
		return s.loadStorefront(ctx, req, page, perPage)
	}

	var out StorefrontPage
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.loadStorefront(ctx, req, page, perPage)
	})
	return out, err
}

func (s *Service) loadStorefront(ctx context.Context, req ListProductsRequest, page, perPage int) (StorefrontPage, error) {
	items, total, err := s.repo.List(ctx, req)
	if err != nil {
		return StorefrontPage{}, fmt.Errorf("list storefront products: %w", err)
	}
	out := StorefrontPage{
		Items:      make([]StorefrontProduct, 0, len(items)),
		Pagination: shared.NewPagination(page, perPage, total),
	}
	for _, p := range items {
		out.Items = append(out.Items, p.storefront(false))
	}
	return out, nil
}

// StorefrontBySlug returns an active product by slug.
func (s *Service) StorefrontBySlug(ctx context.Context, slug string) (*StorefrontProduct, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrNotFound
	}
	out := p.storefront(true)
	return &out, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("catalog cache bump", slog.Any("error", err))
	}
}

func validatePrices(mrp, dealer, selling decimal.Decimal) error {
	if !mrp.IsPositive() {
		return fmt.Errorf("%w: mrp must be greater than zero", httpx.ErrValidation)
	}
	if dealer.IsNegative() || selling.IsNegative() {
		return fmt.Errorf("%w: prices cannot be negative", httpx.ErrValidation)
	}
	return nil
}

func jsonArray(field string, raw *json.RawMessage) (json.RawMessage, error) {
	if raw == nil || len(*raw) == 0 || string(*raw) == "null" {
		return emptyList, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(*raw, &elems); err != nil {
		return nil, fmt.Errorf("%w: %s must be a JSON array", httpx.ErrValidation, field)
	}
	return *raw, nil
}

func optInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func optBool(v *bool) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatBool(*v)
}
