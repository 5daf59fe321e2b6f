package customers

import "github.com/shopspring/decimal"

type CreateCustomerRequest struct {
	Name                string           `json:"name" validate:"required,max=200"`
	CompanyName         string           `json:"company_name,omitempty" validate:"max=200"`
	Email               string           `json:"email" validate:"required,email"`
	Phone               string           `json:"phone,omitempty" validate:"max=50"`
	GSTNumber           string           `json:"gst_number,omitempty" validate:"max=50"`
	Address             string           `json:"address,omitempty" validate:"max=500"`
	Type                string           `json:"type,omitempty" validate:"omitempty,oneof=General B2B"`
	DiscountPercentage  *decimal.Decimal `json:"discount_percentage,omitempty"`
	PrimaryContactName  string           `json:"primary_contact_name,omitempty" validate:"max=200"`
	PrimaryContactEmail string           `json:"primary_contact_email,omitempty" validate:"omitempty,email"`
	PrimaryContactPhone string           `json:"primary_contact_phone,omitempty" validate:"max=50"`
}

type UpdateCustomerRequest struct {
	Name                *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	CompanyName         *string          `json:"company_name,omitempty" validate:"omitempty,max=200"`
	Email               *string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone               *string          `json:"phone,omitempty" validate:"omitempty,max=50"`
	GSTNumber           *string          `json:"gst_number,omitempty" validate:"omitempty,max=50"`
	Address             *string          `json:"address,omitempty" validate:"omitempty,max=500"`
	Type                *string          `json:"type,omitempty" validate:"omitempty,oneof=General B2B"`
	DiscountPercentage  *decimal.Decimal `json:"discount_percentage,omitempty"`
	PrimaryContactName  *string          `json:"primary_contact_name,omitempty" validate:"omitempty,max=200"`
	PrimaryContactEmail *string          `json:"primary_contact_email,omitempty" validate:"omitempty,email"`
	PrimaryContactPhone *string          `json:"primary_contact_phone,omitempty" validate:"omitempty,max=50"`
}

type ListCustomersRequest struct {
	Search *string
	Type   *string
	Status *string
	Limit  int
	Offset int
}

// RegisterRequest is the public B2B sign-up payload.
type RegisterRequest struct {
	Name                string `json:"name" validate:"required,max=200"`
	CompanyName         string `json:"company_name" validate:"required,max=200"`
	Email               string `json:"email" validate:"required,email"`
	Password            string `json:"password" validate:"required,min=8,max=72"`
	Phone               string `json:"phone" validate:"required,max=50"`
	GSTNumber           string `json:"gst_number,omitempty" validate:"max=50"`
	Address             string `json:"address,omitempty" validate:"max=500"`
	PrimaryContactName  string `json:"primary_contact_name,omitempty" validate:"max=200"`
	PrimaryContactEmail string `json:"primary_contact_email,omitempty" validate:"omitempty,email"`
	PrimaryContactPhone string `json:"primary_contact_phone,omitempty" validate:"max=50"`
}

// DecisionRequest approves or rejects a pending B2B customer.
type DecisionRequest struct {
	CustomerID         string          `json:"customer_id" validate:"required,uuid"`
	Status             string          `json:"status" validate:"required,oneof=approved rejected"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}
