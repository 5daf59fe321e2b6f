package customers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeGeneral = "General"
	TypeB2B     = "B2B"

	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Customer struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	CompanyName         string          `json:"company_name"`
	Email               string          `json:"email"`
	Phone               string          `json:"phone"`
	GSTNumber           string          `json:"gst_number"`
	Address             string          `json:"address"`
	Type                string          `json:"type"`
	DiscountPercentage  decimal.Decimal `json:"discount_percentage"`
	Status              string          `json:"status"`
	PrimaryContactName  string          `json:"primary_contact_name"`
	PrimaryContactEmail string          `json:"primary_contact_email"`
	PrimaryContactPhone string          `json:"primary_contact_phone"`
	ApprovedAt          *time.Time      `json:"approved_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// IsApproved reports whether the customer may be quoted and may order.
func (c Customer) IsApproved() bool {
	return c.Status == StatusApproved
}

// EffectiveDiscount is the default discount applied to priced lines.
func (c Customer) EffectiveDiscount() decimal.Decimal {
	if !c.IsApproved() {
		return decimal.Zero
	}
	return c.DiscountPercentage
}

// Snapshot is the copy of a customer frozen into a quotation.
type Snapshot struct {
	ID                 uuid.UUID       `json:"id"`
	Name               string          `json:"name"`
	CompanyName        string          `json:"company_name"`
	Email              string          `json:"email"`
	Phone              string          `json:"phone"`
	GSTNumber          string          `json:"gst_number"`
	Address            string          `json:"address"`
	Type               string          `json:"type"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

func (c Customer) Snapshot() Snapshot {
	return Snapshot{
		ID:                 c.ID,
		Name:               c.Name,
		CompanyName:        c.CompanyName,
		Email:              c.Email,
		Phone:              c.Phone,
		GSTNumber:          c.GSTNumber,
		Address:            c.Address,
		Type:               c.Type,
		DiscountPercentage: c.DiscountPercentage,
	}
}

// PortalUser is the login created alongside a B2B registration.
type PortalUser struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CustomerID   uuid.UUID
}
