package orders

import "github.com/google/uuid"

type PlaceItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1,lte=100000"`
}

// PlaceOrderRequest is the B2B cart checkout body.
type PlaceOrderRequest struct {
	Items []PlaceItemRequest `json:"items" validate:"required,min=1,max=500,dive"`
	Notes *string            `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

type UpdateStatusRequest struct {
	OrderID string  `json:"order_id" validate:"required,uuid"`
	Status  string  `json:"status" validate:"required"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=5000"`
	Version *int    `json:"version,omitempty" validate:"omitempty,gte=1"`
}

type ListOrdersRequest struct {
	Status     *Status
	CustomerID *uuid.UUID
	Search     string
	Limit      int
	Offset     int
}
