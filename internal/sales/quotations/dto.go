package quotations

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
	"github.com/basteen-Dev/pavilion/internal/sales/customers"
	"github.com/basteen-Dev/pavilion/internal/sales/pricing"
)

type ItemRequest struct {
	ProductID   string           `json:"product_id" validate:"required"`
	Quantity    int              `json:"quantity" validate:"required,gte=1,lte=100000"`
	CustomPrice *decimal.Decimal `json:"custom_price,omitempty"`
}

// BuildRequest is shared by preview and create.
type BuildRequest struct {
	CustomerID string        `json:"customer_id" validate:"required,uuid"`
	Products   []ItemRequest `json:"products" validate:"required,min=1,max=500,dive"`
	Notes      *string       `json:"notes,omitempty" validate:"omitempty,max=5000"`
	ValidUntil *string       `json:"valid_until,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ShowTotal  *bool         `json:"show_total,omitempty"`
}

type UpdateQuotationRequest struct {
	Status  *string `json:"status,omitempty"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=5000"`
	Version *int    `json:"version,omitempty" validate:"omitempty,gte=1"`
}

type ListQuotationsRequest struct {
	Status     *Status
	CustomerID *uuid.UUID
	Search     string
	Limit      int
	Offset     int
}

// PreviewItem is a priced line as shown before saving.
type PreviewItem struct {
	LineOrder   int       `json:"line_order"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	SKU         string    `json:"sku"`
	Quantity    int       `json:"quantity"`
	pricing.Line
}

// ItemError reports a line that could not be priced.
type ItemError struct {
	Index     int    `json:"index"`
	ProductID string `json:"product_id"`
	Message   string `json:"message"`
}

// ItemErrors fails creation when any line could not be priced.
type ItemErrors []ItemError

func (e ItemErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ie := range e {
		msgs = append(msgs, fmt.Sprintf("item %d: %s", ie.Index, ie.Message))
	}
	return fmt.Sprintf("%v: %s", httpx.ErrValidation, strings.Join(msgs, "; "))
}

func (e ItemErrors) Unwrap() error { return httpx.ErrValidation }

func (e ItemErrors) Details() any { return []ItemError(e) }

type Preview struct {
	Customer    customers.Snapshot `json:"customer"`
	Items       []PreviewItem      `json:"items"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	ShowTotal   bool               `json:"show_total"`
	Notes       *string            `json:"notes,omitempty"`
	ValidUntil  *string            `json:"valid_until,omitempty"`
	Errors      []ItemError        `json:"errors"`
}

// CreateResult is returned by POST /admin/quotations.
type CreateResult struct {
	ID              uuid.UUID       `json:"id"`
	Status          Status          `json:"status"`
	ReferenceNumber string          `json:"reference_number"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Quotation       *Quotation      `json:"quotation"`
}

// ConvertResult links a converted quotation to its order.
type ConvertResult struct {
	QuotationID uuid.UUID `json:"quotation_id"`
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Status      Status    `json:"status"`
}
