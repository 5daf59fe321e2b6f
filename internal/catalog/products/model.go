package products

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog item with its three price tiers.
type Product struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	SKU              string          `json:"sku"`
	Description      string          `json:"description"`
	ShortDescription string          `json:"short_description"`
	MRP              decimal.Decimal `json:"mrp"`
	DealerPrice      decimal.Decimal `json:"dealer_price"`
	SellingPrice     decimal.Decimal `json:"selling_price"`
	CategoryID       *int64          `json:"category_id,omitempty"`
	SubCategoryID    *int64          `json:"sub_category_id,omitempty"`
	BrandID          *int64          `json:"brand_id,omitempty"`
	Images           json.RawMessage `json:"images"`
	Variants         json.RawMessage `json:"variants"`
	IsActive         bool            `json:"is_active"`
	IsFeatured       bool            `json:"is_featured"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// StorefrontProduct hides dealer pricing from the public catalog.
type StorefrontProduct struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	SKU              string          `json:"sku"`
	ShortDescription string          `json:"short_description"`
	Description      string          `json:"description,omitempty"`
	MRP              decimal.Decimal `json:"mrp"`
	SellingPrice     decimal.Decimal `json:"selling_price"`
	CategoryID       *int64          `json:"category_id,omitempty"`
	SubCategoryID    *int64          `json:"sub_category_id,omitempty"`
	BrandID          *int64          `json:"brand_id,omitempty"`
	Images           json.RawMessage `json:"images"`
	Variants         json.RawMessage `json:"variants"`
	IsFeatured       bool            `json:"is_featured"`
}

func (p Product) storefront(withDescription bool) StorefrontProduct {
	out := StorefrontProduct{
		ID:               p.ID,
		Name:             p.Name,
		Slug:             p.Slug,
		SKU:              p.SKU,
		ShortDescription: p.ShortDescription,
		MRP:              p.MRP,
		SellingPrice:     p.SellingPrice,
		CategoryID:       p.CategoryID,
		SubCategoryID:    p.SubCategoryID,
		BrandID:          p.BrandID,
		Images:           p.Images,
		Variants:         p.Variants,
		IsFeatured:       p.IsFeatured,
	}
	if withDescription {
		out.Description = p.Description
	}
	return out
}
