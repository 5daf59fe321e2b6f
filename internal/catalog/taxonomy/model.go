// Package taxonomy holds the catalog's categories, sub-categories and brands.
package taxonomy

import "time"

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	ImageURL  string    `json:"image_url"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SubCategory struct {
	ID           int64     `json:"id"`
	CategoryID   int64     `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	ImageURL     string    `json:"image_url"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Brand may be scoped to a category and optionally one of its sub-categories.
// The joined names are read-only.
type Brand struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	ImageURL        string    `json:"image_url"`
	LogoURL         string    `json:"logo_url"`
	CategoryID      *int64    `json:"category_id"`
	SubCategoryID   *int64    `json:"sub_category_id"`
	CategoryName    *string   `json:"category_name"`
	SubCategoryName *string   `json:"sub_category_name"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
