package quotations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/basteen-Dev/pavilion/internal/catalog/products"
	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
	"github.com/basteen-Dev/pavilion/internal/sales/customers"
	"github.com/basteen-Dev/pavilion/internal/sales/pricing"
	"github.com/basteen-Dev/pavilion/internal/shared"
)

const dateLayout = "2006-01-02"

type CustomerReader interface {
	Get(ctx context.Context, id uuid.UUID) (*customers.Customer, error)
}

type ProductReader interface {
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]products.Product, error)
}

// Notifier announces a quotation that moved to Sent.
type Notifier interface {
	NotifyQuotationSent(ctx context.Context, quotationID uuid.UUID) error
}

// OrderConverter turns an Approved quotation into an order and moves the
// quotation to Processing in one transaction.
type OrderConverter interface {
	ConvertQuotation(ctx context.Context, q Quotation) (orderID uuid.UUID, orderNumber string, err error)
}

type Metrics interface {
	QuotationCreated()
	QuotationTransition(from, to string)
}

// Renderer converts HTML into PDF.
type Renderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Options carries optional collaborators. Nil members disable the feature.
type Options struct {
	Audit    shared.Auditor
	Notifier Notifier
	Orders   OrderConverter
	Metrics  Metrics
	Renderer Renderer
}

type Service struct {
	repo      Repository
	customers CustomerReader
	products  ProductReader
	opts      Options
	logger    *slog.Logger
}

func NewService(repo Repository, customers CustomerReader, products ProductReader, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, customers: customers, products: products, opts: opts, logger: logger}
}

// Preview prices the request without persisting it. Lines referring to
// unknown or inactive products are reported in Errors and left out of the
// total.
func (s *Service) Preview(ctx context.Context, req BuildRequest) (*Preview, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid customer_id", httpx.ErrValidation)
	}
	if req.ValidUntil != nil {
		if _, err := time.Parse(dateLayout, *req.ValidUntil); err != nil {
			return nil, fmt.Errorf("%w: valid_until must be YYYY-MM-DD", httpx.ErrValidation)
		}
	}

	itemErrors := make([]ItemError, 0)
	parsed := make([]uuid.UUID, len(req.Products))
	ids := make([]uuid.UUID, 0, len(req.Products))
	seen := make(map[uuid.UUID]struct{}, len(req.Products))
	for i, item := range req.Products {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			continue
		}
		parsed[i] = id
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	var customer *customers.Customer
	var catalog map[uuid.UUID]products.Product
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.customers.Get(gctx, customerID)
		if err != nil {
			return fmt.Errorf("get customer: %w", err)
		}
		customer = c
		return nil
	})
	g.Go(func() error {
		m, err := s.products.GetMany(gctx, ids)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		catalog = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !customer.IsApproved() {
		return nil, fmt.Errorf("%w: customer %s is %s", httpx.ErrValidation, customer.ID, customer.Status)
	}

	discount := customer.EffectiveDiscount()
	items := make([]PreviewItem, 0, len(req.Products))
	lines := make([]pricing.Line, 0, len(req.Products))
	for i, item := range req.Products {
		fail := func(msg string) {
			itemErrors = append(itemErrors, ItemError{Index: i, ProductID: item.ProductID, Message: msg})
		}
		if parsed[i] == uuid.Nil {
			fail("invalid product id")
			continue
		}
		product, ok := catalog[parsed[i]]
		switch {
		case !ok:
			fail("product not found")
			continue
		case !product.IsActive:
			fail("product is inactive")
			continue
		case item.Quantity < 1:
			fail("quantity must be at least 1")
			continue
		case item.CustomPrice != nil && item.CustomPrice.IsNegative():
			fail("custom_price cannot be negative")
			continue
		}

		line := pricing.Price(pricing.Input{
			MRP:              product.MRP,
			SellingPrice:     product.SellingPrice,
			Quantity:         item.Quantity,
			CustomPrice:      item.CustomPrice,
			CustomerDiscount: discount,
		})
		lines = append(lines, line)
		items = append(items, PreviewItem{
			LineOrder:   len(items) + 1,
			ProductID:   product.ID,
			ProductName: product.Name,
			SKU:         product.SKU,
			Quantity:    item.Quantity,
			Line:        line,
		})
	}

	return &Preview{
		Customer:    customer.Snapshot(),
		Items:       items,
		TotalAmount: pricing.Total(lines),
		ShowTotal:   req.ShowTotal == nil || *req.ShowTotal,
		Notes:       req.Notes,
		ValidUntil:  req.ValidUntil,
		Errors:      itemErrors,
	}, nil
}

// Create persists a Draft quotation priced exactly as Preview prices it.
func (s *Service) Create(ctx context.Context, req BuildRequest) (*CreateResult, error) {
	preview, err := s.Preview(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(preview.Errors) > 0 {
		return nil, ItemErrors(preview.Errors)
	}
	if len(preview.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one product is required", httpx.ErrValidation)
	}

	q := Quotation{
		CustomerID:       preview.Customer.ID,
		CustomerSnapshot: preview.Customer,
		Status:           StatusDraft,
		TotalAmount:      preview.TotalAmount,
		ShowTotal:        preview.ShowTotal,
		Notes:            preview.Notes,
		CreatedBy:        actorID(ctx),
	}
	if preview.ValidUntil != nil {
		d, _ := time.Parse(dateLayout, *preview.ValidUntil)
		q.ValidUntil = &d
	}

	var created *Quotation
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		var err error
		created, err = repo.Create(ctx, q)
		if err != nil {
			return fmt.Errorf("insert quotation: %w", err)
		}
		for _, it := range preview.Items {
			productID := it.ProductID
			err := repo.InsertItem(ctx, Item{
				QuotationID: created.ID,
				ProductID:   &productID,
				ProductName: it.ProductName,
				SKU:         it.SKU,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				MRP:         it.MRP,
				Discount:    it.Discount,
				LineTotal:   it.LineTotal,
				LineOrder:   it.LineOrder,
			})
			if err != nil {
				return fmt.Errorf("insert quotation item %d: %w", it.LineOrder, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	full, err := s.repo.Get(ctx, created.ID)
	if err != nil {
		return nil, fmt.Errorf("reload quotation: %w", err)
	}
	if s.opts.Metrics != nil {
		s.opts.Metrics.QuotationCreated()
	}
	s.record(ctx, "quotation.created", full.ID, map[string]any{
		"reference_number": full.ReferenceNumber,
		"total_amount":     full.TotalAmount.StringFixed(2),
	})
	return &CreateResult{
		ID:              full.ID,
		Status:          full.Status,
		ReferenceNumber: full.ReferenceNumber,
		TotalAmount:     full.TotalAmount,
		Quotation:       full,
	}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Quotation, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	return s.repo.List(ctx, req)
}

// Update changes status and/or notes. A status equal to the current one is
// only accepted alongside a notes change.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateQuotationRequest) (*Quotation, error) {
	if req.Status == nil && req.Notes == nil {
		return nil, fmt.Errorf("%w: status or notes required", httpx.ErrValidation)
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if req.Version != nil && *req.Version != existing.Version {
		return nil, ErrVersionConflict
	}

	from := existing.Status
	to := from
	updates := make(map[string]interface{})
	if req.Status != nil {
		next, err := ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		switch {
		case next == from && req.Notes == nil:
			return nil, fmt.Errorf("%w: quotation is already %s", ErrInvalidStatus, from)
		case next != from && !from.CanTransitionTo(next):
			s.logger.Warn("illegal quotation transition",
				slog.String("quotation_id", id.String()),
				slog.String("from", string(from)),
				slog.String("to", string(next)),
				slog.String("actor", shared.ActorID(ctx)))
			return nil, fmt.Errorf("%w: %s cannot move to %s", ErrInvalidStatus, from, next)
		case next != from:
			updates["status"] = string(next)
			to = next
		}
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if err := s.repo.Update(ctx, id, existing.Version, updates); err != nil {
		return nil, fmt.Errorf("update quotation: %w", err)
	}

	if to != from {
		s.transitioned(ctx, id, from, to)
	}
	return s.repo.Get(ctx, id)
}

// Convert creates an order from an Approved quotation.
func (s *Service) Convert(ctx context.Context, id uuid.UUID) (*ConvertResult, error) {
	if s.opts.Orders == nil {
		return nil, errors.New("quotation conversion not configured")
	}
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	switch q.Status {
	case StatusApproved:
	case StatusProcessing, StatusShipped, StatusCompleted:
		return nil, fmt.Errorf("%w: status is %s", ErrAlreadyConverted, q.Status)
	default:
		return nil, fmt.Errorf("%w: only Approved quotations can be converted, got %s", ErrInvalidStatus, q.Status)
	}

	orderID, number, err := s.opts.Orders.ConvertQuotation(ctx, *q)
	if err != nil {
		return nil, fmt.Errorf("convert quotation: %w", err)
	}
	s.transitioned(ctx, id, StatusApproved, StatusProcessing)
	return &ConvertResult{QuotationID: id, OrderID: orderID, OrderNumber: number, Status: StatusProcessing}, nil
}

func (s *Service) transitioned(ctx context.Context, id uuid.UUID, from, to Status) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.QuotationTransition(string(from), string(to))
	}
	s.record(ctx, "quotation.status_changed", id, map[string]any{"from": from, "to": to})
	if to == StatusSent && s.opts.Notifier != nil {
		if err := s.opts.Notifier.NotifyQuotationSent(ctx, id); err != nil {
			s.logger.Warn("enqueue quotation notification", slog.String("quotation_id", id.String()), slog.Any("error", err))
		}
	}
}

func (s *Service) record(ctx context.Context, action string, id uuid.UUID, meta map[string]any) {
	if s.opts.Audit == nil {
		return
	}
	err := s.opts.Audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorID(ctx),
		Action:   action,
		Entity:   "quotation",
		EntityID: id.String(),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Error("audit quotation", slog.String("action", action), slog.Any("error", err))
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
