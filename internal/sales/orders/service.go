package orders

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/basteen-Dev/pavilion/internal/catalog/products"
	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
	"github.com/basteen-Dev/pavilion/internal/sales/customers"
	"github.com/basteen-Dev/pavilion/internal/sales/pricing"
	"github.com/basteen-Dev/pavilion/internal/sales/quotations"
	"github.com/basteen-Dev/pavilion/internal/shared"
)

// Order origins reported to metrics.
const (
	SourcePortal    = "portal"
	SourceQuotation = "quotation"
)

type CustomerReader interface {
	Get(ctx context.Context, id uuid.UUID) (*customers.Customer, error)
}

type ProductReader interface {
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]products.Product, error)
}

type Metrics interface {
	OrderPlaced(source string)
	OrderTransition(from, to string)
}

type Service struct {
	repo      Repository
	customers CustomerReader
	products  ProductReader
	audit     shared.Auditor
	metrics   Metrics
	logger    *slog.Logger
}

// NewService wires the order service. audit and metrics may be nil.
func NewService(repo Repository, customers CustomerReader, products ProductReader, audit shared.Auditor, metrics Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, customers: customers, products: products, audit: audit, metrics: metrics, logger: logger}
}

// Place turns a portal cart into a pending order priced for the customer.
// A non-empty idempotencyKey is claimed in the same transaction, so a retry
// after success fails with ErrDuplicateRequest and a failed attempt can be
// retried with the same key.
func (s *Service) Place(ctx context.Context, customerID uuid.UUID, req PlaceOrderRequest, idempotencyKey string) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", httpx.ErrValidation)
	}
	customer, err := s.customers.Get(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if !customer.IsApproved() {
		return nil, fmt.Errorf("%w: customer account is %s", httpx.ErrForbidden, customer.Status)
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	for i, it := range req.Items {
		id, err := uuid.Parse(it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: invalid product id", httpx.ErrValidation, i)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d: quantity must be at least 1", httpx.ErrValidation, i)
		}
		ids = append(ids, id)
	}
	catalog, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	discount := customer.EffectiveDiscount()
	items := make([]Item, 0, len(req.Items))
	lines := make([]pricing.Line, 0, len(req.Items))
	for i, it := range req.Items {
		product, ok := catalog[ids[i]]
		if !ok || !product.IsActive {
			return nil, fmt.Errorf("%w: item %d: product %s is not available", httpx.ErrValidation, i, it.ProductID)
		}
		line := pricing.Price(pricing.Input{
			MRP:              product.MRP,
			SellingPrice:     product.SellingPrice,
			Quantity:         it.Quantity,
			CustomerDiscount: discount,
		})
		lines = append(lines, line)
		productID := product.ID
		items = append(items, Item{
			ProductID:   &productID,
			ProductName: product.Name,
			SKU:         product.SKU,
			Quantity:    it.Quantity,
			UnitPrice:   line.UnitPrice,
			MRP:         line.MRP,
			Discount:    line.Discount,
			LineTotal:   line.LineTotal,
			LineOrder:   i + 1,
		})
	}

	order := Order{
		CustomerID:  customer.ID,
		Status:      StatusPending,
		TotalAmount: pricing.Total(lines),
		Notes:       req.Notes,
		CreatedBy:   actorID(ctx),
	}
	id, err := s.insert(ctx, order, items, idempotencyKey)
	if err != nil {
		return nil, err
	}
	s.placed(ctx, id, SourcePortal)
	return s.repo.Get(ctx, id)
}

// ConvertQuotation copies an Approved quotation into an approved order and
// moves the quotation to Processing in the same transaction.
func (s *Service) ConvertQuotation(ctx context.Context, q quotations.Quotation) (uuid.UUID, string, error) {
	if q.Status != quotations.StatusApproved {
		return uuid.Nil, "", fmt.Errorf("%w: quotation is %s", quotations.ErrInvalidStatus, q.Status)
	}
	quotationID := q.ID
	order := Order{
		CustomerID:  q.CustomerID,
		QuotationID: &quotationID,
		Status:      StatusApproved,
		TotalAmount: q.TotalAmount,
		Notes:       q.Notes,
		CreatedBy:   actorID(ctx),
	}
	items := make([]Item, 0, len(q.Items))
	for _, it := range q.Items {
		items = append(items, Item{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			SKU:         it.SKU,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			MRP:         it.MRP,
			Discount:    it.Discount,
			LineTotal:   it.LineTotal,
			LineOrder:   it.LineOrder,
		})
	}

	var created *Order
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		var err error
		created, err = s.insertWith(ctx, repo, order, items)
		if err != nil {
			return err
		}
		return repo.MarkQuotationProcessing(ctx, q.ID, q.Version)
	})
	if err != nil {
		return uuid.Nil, "", err
	}
	s.placed(ctx, created.ID, SourceQuotation)
	return created.ID, created.OrderNumber, nil
}

func (s *Service) insert(ctx context.Context, order Order, items []Item, idempotencyKey string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if idempotencyKey != "" {
			if err := repo.ClaimKey(ctx, idempotencyKey); err != nil {
				return err
			}
		}
		created, err := s.insertWith(ctx, repo, order, items)
		if err != nil {
			return err
		}
		id = created.ID
		return nil
	})
	return id, err
}

func (s *Service) insertWith(ctx context.Context, repo Repository, order Order, items []Item) (*Order, error) {
	created, err := repo.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	for _, it := range items {
		it.OrderID = created.ID
		if err := repo.InsertItem(ctx, it); err != nil {
			return nil, fmt.Errorf("insert order item %d: %w", it.LineOrder, err)
		}
	}
	return created, nil
}

func (s *Service) placed(ctx context.Context, id uuid.UUID, source string) {
	if s.metrics != nil {
		s.metrics.OrderPlaced(source)
	}
	s.record(ctx, "order.placed", id, map[string]any{"source": source})
}

// UpdateStatus moves an order one step along its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*Order, error) {
	id, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order_id", httpx.ErrValidation)
	}
	next, err := ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if req.Version != nil && *req.Version != existing.Version {
		return nil, ErrVersionConflict
	}
	from := existing.Status
	if !from.CanTransitionTo(next) {
		s.logger.Warn("illegal order transition",
			slog.String("order_id", id.String()),
			slog.String("from", string(from)),
			slog.String("to", string(next)),
			slog.String("actor", shared.ActorID(ctx)))
		return nil, fmt.Errorf("%w: %s cannot move to %s", ErrInvalidStatus, from, next)
	}

	if err := s.repo.UpdateStatus(ctx, id, existing.Version, next, req.Notes); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	if s.metrics != nil {
		s.metrics.OrderTransition(string(from), string(next))
	}
	s.record(ctx, "order.status_changed", id, map[string]any{"from": from, "to": next})
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	return s.repo.List(ctx, req)
}

// ListForCustomer lists only the orders owned by customerID.
func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID, req ListOrdersRequest) ([]Order, int, error) {
	req.CustomerID = &customerID
	return s.repo.List(ctx, req)
}

// GetForCustomer hides orders of other customers behind ErrNotFound.
func (s *Service) GetForCustomer(ctx context.Context, customerID, id uuid.UUID) (*Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *Service) record(ctx context.Context, action string, id uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorID(ctx),
		Action:   action,
		Entity:   "order",
		EntityID: id.String(),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Error("audit order", slog.String("action", action), slog.Any("error", err))
	}
}

func actorID(ctx context.Context) *uuid.UUID {
	p := shared.PrincipalFromContext(ctx)
	if p == nil || p.UserID == uuid.Nil {
		return nil
	}
	id := p.UserID
	return &id
}
