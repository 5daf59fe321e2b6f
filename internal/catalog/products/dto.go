package products

import (
	"encoding/json"

	"github.com/basteen-Dev/pavilion/internal/shared"
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name             string           `json:"name" validate:"required,max=200"`
	Slug             string           `json:"slug,omitempty" validate:"omitempty,max=200"`
	SKU              string           `json:"sku" validate:"required,max=64"`
	Description      string           `json:"description,omitempty"`
	ShortDescription string           `json:"short_description,omitempty" validate:"max=500"`
	MRP              decimal.Decimal  `json:"mrp"`
	DealerPrice      decimal.Decimal  `json:"dealer_price"`
	SellingPrice     decimal.Decimal  `json:"selling_price"`
	CategoryID       *int64           `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	SubCategoryID    *int64           `json:"sub_category_id,omitempty" validate:"omitempty,gt=0"`
	BrandID          *int64           `json:"brand_id,omitempty" validate:"omitempty,gt=0"`
	Images           *json.RawMessage `json:"images,omitempty"`
	Variants         *json.RawMessage `json:"variants,omitempty"`
	IsActive         *bool            `json:"is_active,omitempty"`
	IsFeatured       bool             `json:"is_featured"`
}

type UpdateProductRequest struct {
	Name             *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Slug             *string          `json:"slug,omitempty" validate:"omitempty,max=200"`
	SKU              *string          `json:"sku,omitempty" validate:"omitempty,max=64"`
	Description      *string          `json:"description,omitempty"`
	ShortDescription *string          `json:"short_description,omitempty" validate:"omitempty,max=500"`
	MRP              *decimal.Decimal `json:"mrp,omitempty"`
	DealerPrice      *decimal.Decimal `json:"dealer_price,omitempty"`
	SellingPrice     *decimal.Decimal `json:"selling_price,omitempty"`
	CategoryID       *int64           `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	SubCategoryID    *int64           `json:"sub_category_id,omitempty" validate:"omitempty,gt=0"`
	BrandID          *int64           `json:"brand_id,omitempty" validate:"omitempty,gt=0"`
	Images           *json.RawMessage `json:"images,omitempty"`
	Variants         *json.RawMessage `json:"variants,omitempty"`
	IsActive         *bool            `json:"is_active,omitempty"`
	IsFeatured       *bool            `json:"is_featured,omitempty"`
}

type ListProductsRequest struct {
	Search     string
	CategoryID    *int64
	SubCategoryID *int64
	BrandID       *int64
	IsActive      *bool
	Featured      *bool
	Limit         int
	Offset        int
}

// StorefrontPage is the cached payload of GET /products.
type StorefrontPage struct {
	Items      []StorefrontProduct `json:"items"`
	Pagination shared.Pagination   `json:"pagination"`
}
