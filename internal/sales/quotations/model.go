package quotations

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/basteen-Dev/pavilion/internal/sales/customers"
)

type Quotation struct {
	ID               uuid.UUID          `json:"id"`
	ReferenceNumber  string             `json:"reference_number"`
	CustomerID       uuid.UUID          `json:"customer_id"`
	CustomerSnapshot customers.Snapshot `json:"customer_snapshot"`
	Status           Status             `json:"status"`
	TotalAmount      decimal.Decimal    `json:"total_amount"`
	ShowTotal        bool               `json:"show_total"`
	Notes            *string            `json:"notes,omitempty"`
	ValidUntil       *time.Time         `json:"valid_until,omitempty"`
	Version          int                `json:"version"`
	CreatedBy        *uuid.UUID         `json:"created_by,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	Items            []Item             `json:"items,omitempty"`
}

// Item is a priced quotation line. Product name and SKU are snapshots so the
// line survives product deletion.
type Item struct {
	ID          uuid.UUID       `json:"id"`
	QuotationID uuid.UUID       `json:"quotation_id"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	MRP         decimal.Decimal `json:"mrp"`
	Discount    decimal.Decimal `json:"discount"`
	LineTotal   decimal.Decimal `json:"line_total"`
	LineOrder   int             `json:"line_order"`
}
