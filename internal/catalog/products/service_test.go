package products

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basteen-Dev/pavilion/internal/platform/cache"
	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	products  map[uuid.UUID]*Product
	listCalls int
	createErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{products: make(map[uuid.UUID]*Product)}
}

func (m *mockRepository) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	for _, p := range m.products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error) {
	out := make(map[uuid.UUID]Product)
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = *p
		}
	}
	return out, nil
}

func (m *mockRepository) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	m.listCalls++
	out := []Product{}
	for _, p := range m.products {
		if req.IsActive != nil && p.IsActive != *req.IsActive {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockRepository) Create(ctx context.Context, p Product) (*Product, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, existing := range m.products {
		if existing.SKU == p.SKU || existing.Slug == p.Slug {
			return nil, ErrAlreadyExists
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.products[p.ID] = &p
	cp := p
	return &cp, nil
}

func (m *mockRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		p.Name = v.(string)
	}
	if v, ok := updates["slug"]; ok {
		p.Slug = v.(string)
	}
	if v, ok := updates["mrp"]; ok {
		p.MRP = v.(decimal.Decimal)
	}
	if v, ok := updates["selling_price"]; ok {
		p.SellingPrice = v.(decimal.Decimal)
	}
	if v, ok := updates["is_active"]; ok {
		p.IsActive = v.(bool)
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCachedService(t *testing.T, repo Repository) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, cache.NewVersioned(client, "catalog", time.Minute), quietLogger())
}

func createReq(name, sku string, mrp string) CreateProductRequest {
	return CreateProductRequest{
		Name:         name,
		SKU:          sku,
		MRP:          decimal.RequireFromString(mrp),
		SellingPrice: decimal.RequireFromString(mrp),
	}
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateDerivesSlugAndDefaults(t *testing.T) {
	svc := NewService(newMockRepository(), nil, quietLogger())

	p, err := svc.Create(context.Background(), createReq("Kookaburra Cricket Bat", "BAT-1", "4999"))
	require.NoError(t, err)

	assert.Equal(t, "kookaburra-cricket-bat", p.Slug)
	assert.True(t, p.IsActive)
	assert.JSONEq(t, `[]`, string(p.Images))
	assert.JSONEq(t, `[]`, string(p.Variants))
}

func TestCreateRejectsInvalidPrices(t *testing.T) {
	svc := NewService(newMockRepository(), nil, quietLogger())

	_, err := svc.Create(context.Background(), createReq("Ball", "BALL-1", "0"))
	assert.ErrorIs(t, err, httpx.ErrValidation)

	req := createReq("Ball", "BALL-1", "100")
	req.DealerPrice = decimal.NewFromInt(-1)
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRejectsNonArrayImages(t *testing.T) {
	svc := NewService(newMockRepository(), nil, quietLogger())
	req := createReq("Ball", "BALL-1", "100")
	raw := json.RawMessage(`{"url":"x"}`)
	req.Images = &raw

	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateDuplicateSKU(t *testing.T) {
	svc := NewService(newMockRepository(), nil, quietLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, createReq("Helmet", "HLM-1", "1500"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, createReq("Helmet Pro", "HLM-1", "2500"))
	require.ErrorIs(t, err, ErrAlreadyExists)
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestUpdateValidatesMergedPrices(t *testing.T) {
	svc := NewService(newMockRepository(), nil, quietLogger())
	ctx := context.Background()
	p, err := svc.Create(ctx, createReq("Pads", "PAD-1", "800"))
	require.NoError(t, err)

	zero := decimal.Zero
	_, err = svc.Update(ctx, p.ID, UpdateProductRequest{MRP: &zero})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	name := "Batting Pads"
	updated, err := svc.Update(ctx, p.ID, UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Batting Pads", updated.Name)
}

func TestUpdateUnknownProduct(t *testing.T) {
	svc := NewService(newMockRepository(), nil, quietLogger())
	name := "x"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestStorefrontCachedUntilWrite(t *testing.T) {
	repo := newMockRepository()
	svc := newCachedService(t, repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, createReq("Gloves", "GLV-1", "600"))
	require.NoError(t, err)

	first, err := svc.Storefront(ctx, ListProductsRequest{Limit: 20}, 1, 20)
	require.NoError(t, err)
	require.Len(t, first.Items, 1)

	_, err = svc.Storefront(ctx, ListProductsRequest{Limit: 20}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls, "second read served from cache")

	_, err = svc.Create(ctx, createReq("Stumps", "STM-1", "900"))
	require.NoError(t, err)

	after, err := svc.Storefront(ctx, ListProductsRequest{Limit: 20}, 1, 20)
	require.NoError(t, err)
	assert.Len(t, after.Items, 2)
	assert.Equal(t, 2, repo.listCalls)
}

func TestStorefrontHidesInactive(t *testing.T) {
	svc := NewService(newMockRepository(), nil, quietLogger())
	ctx := context.Background()

	inactive := false
	req := createReq("Old Bat", "BAT-OLD", "1000")
	req.IsActive = &inactive
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	page, err := svc.Storefront(ctx, ListProductsRequest{Limit: 20}, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = svc.StorefrontBySlug(ctx, "old-bat")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Pro Kit  2024!":     "pro-kit-2024",
		"Crème Brûlée Ball": "creme-brulee-ball",
		"--Edge--":           "edge",
		"":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}
