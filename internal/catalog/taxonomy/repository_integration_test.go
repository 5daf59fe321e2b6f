//go:build integration

package taxonomy

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basteen-Dev/pavilion/internal/catalog/products"
	"github.com/basteen-Dev/pavilion/testing/pgtest"
)

func TestRepositoryBrandListingJoinsAndFilters(t *testing.T) {
	pool := pgtest.Start(t)
	ctx := context.Background()
	svc := NewService(NewRepository(pool), nil, quietLogger())

	cricket, bats, football, boots := seedTree(t, svc)
	_, err := svc.CreateBrand(ctx, BrandRequest{Name: "SS", SubCategoryID: &bats})
	require.NoError(t, err)
	_, err = svc.CreateBrand(ctx, BrandRequest{Name: "Nivia", SubCategoryID: &boots})
	require.NoError(t, err)
	inactive := false
	_, err = svc.CreateBrand(ctx, BrandRequest{Name: "Archived", CategoryID: &cricket, IsActive: &inactive})
	require.NoError(t, err)

	brands, err := svc.Brands(ctx, Filter{CategoryID: &cricket, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, brands, 1)
	assert.Equal(t, "SS", brands[0].Name)
	require.NotNil(t, brands[0].CategoryName)
	require.NotNil(t, brands[0].SubCategoryName)
	assert.Equal(t, "Cricket", *brands[0].CategoryName)
	assert.Equal(t, "Bats", *brands[0].SubCategoryName)

	brands, err = svc.Brands(ctx, Filter{SubCategoryID: &boots, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, brands, 1)
	assert.Equal(t, football, *brands[0].CategoryID)

	all, err := svc.Brands(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "Archived", all[0].Name)

	_, err = svc.CreateBrand(ctx, BrandRequest{Name: "ss"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = svc.CreateSubCategory(ctx, SubCategoryRequest{CategoryID: 9999, Name: "Gloves"})
	assert.ErrorIs(t, err, ErrUnknownParent)
}

func TestRepositoryDeletingCategoryCascades(t *testing.T) {
	pool := pgtest.Start(t)
	ctx := context.Background()
	svc := NewService(NewRepository(pool), nil, quietLogger())
	cricket, bats, _, _ := seedTree(t, svc)

	brand, err := svc.CreateBrand(ctx, BrandRequest{Name: "SG", SubCategoryID: &bats})
	require.NoError(t, err)

	catalog := products.NewService(products.NewRepository(pool), nil, quietLogger())
	product, err := catalog.Create(ctx, products.CreateProductRequest{
		Name: "SG Bat", SKU: "SG-BAT", MRP: decimal.NewFromInt(5000),
		CategoryID: &cricket, SubCategoryID: &bats, BrandID: &brand.ID,
	})
	require.NoError(t, err)

	missing := int64(424242)
	_, err = catalog.Create(ctx, products.CreateProductRequest{
		Name: "Ghost", SKU: "GHOST", MRP: decimal.NewFromInt(10), BrandID: &missing,
	})
	assert.ErrorIs(t, err, products.ErrUnknownTaxonomy)

	require.NoError(t, svc.Delete(ctx, KindCategory, cricket))

	_, err = svc.SubCategory(ctx, bats)
	assert.ErrorIs(t, err, ErrNotFound)
	kept, err := svc.Brand(ctx, brand.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.CategoryID)
	assert.Nil(t, kept.SubCategoryID)

	reloaded, err := catalog.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CategoryID)
	assert.Nil(t, reloaded.SubCategoryID)
	require.NotNil(t, reloaded.BrandID)
	assert.Equal(t, brand.ID, *reloaded.BrandID)
}
