package taxonomy

type CategoryRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Slug     string `json:"slug,omitempty" validate:"omitempty,max=120"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,url"`
	IsActive *bool  `json:"is_active,omitempty"`
}

type SubCategoryRequest struct {
	CategoryID int64  `json:"category_id" validate:"required,gt=0"`
	Name       string `json:"name" validate:"required,max=120"`
	Slug       string `json:"slug,omitempty" validate:"omitempty,max=120"`
	ImageURL   string `json:"image_url,omitempty" validate:"omitempty,url"`
	IsActive   *bool  `json:"is_active,omitempty"`
}

type BrandRequest struct {
	Name          string `json:"name" validate:"required,max=120"`
	Slug          string `json:"slug,omitempty" validate:"omitempty,max=120"`
	ImageURL      string `json:"image_url,omitempty" validate:"omitempty,url"`
	LogoURL       string `json:"logo_url,omitempty" validate:"omitempty,url"`
	CategoryID    *int64 `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	SubCategoryID *int64 `json:"sub_category_id,omitempty" validate:"omitempty,gt=0"`
	IsActive      *bool  `json:"is_active,omitempty"`
}

// UpdateRequest patches any taxonomy entry. Fields the entry kind does not
// carry are rejected by the service.
type UpdateRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Slug          *string `json:"slug,omitempty" validate:"omitempty,max=120"`
	ImageURL      *string `json:"image_url,omitempty" validate:"omitempty,url"`
	LogoURL       *string `json:"logo_url,omitempty" validate:"omitempty,url"`
	CategoryID    *int64  `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	SubCategoryID *int64  `json:"sub_category_id,omitempty" validate:"omitempty,gt=0"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

// Filter narrows list queries. Public listings always set ActiveOnly.
type Filter struct {
	CategoryID    *int64
	SubCategoryID *int64
	ActiveOnly    bool
}
