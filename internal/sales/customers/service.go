package customers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
	"github.com/basteen-Dev/pavilion/internal/shared"
)

var hundred = decimal.NewFromInt(100)

// Notifier tells a customer about the outcome of their application.
type Notifier interface {
	NotifyCustomerDecision(ctx context.Context, customerID uuid.UUID, status string, discount decimal.Decimal) error
}

// DecisionMetrics counts approval outcomes.
type DecisionMetrics interface {
	CustomerDecision(status string)
}

type Service struct {
	repo     Repository
	audit    shared.Auditor
	notifier Notifier
	metrics  DecisionMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the customer service. audit and notifier may be nil.
func NewService(repo Repository, audit shared.Auditor, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, notifier: notifier, logger: logger, now: time.Now}
}

// WithMetrics attaches decision counters.
func (s *Service) WithMetrics(m DecisionMetrics) *Service {
	s.metrics = m
	return s
}

func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	discount := decimal.Zero
	if req.DiscountPercentage != nil {
		d, err := validDiscount(*req.DiscountPercentage)
		if err != nil {
			return nil, err
		}
		discount = d
	}
	customerType := req.Type
	if customerType == "" {
		customerType = TypeGeneral
	}
	approvedAt := s.now()

	customer := Customer{
		Name:                req.Name,
		CompanyName:         req.CompanyName,
		Email:               strings.TrimSpace(req.Email),
		Phone:               req.Phone,
		GSTNumber:           req.GSTNumber,
		Address:             req.Address,
		Type:                customerType,
		DiscountPercentage:  discount,
		Status:              StatusApproved,
		PrimaryContactName:  req.PrimaryContactName,
		PrimaryContactEmail: req.PrimaryContactEmail,
		PrimaryContactPhone: req.PrimaryContactPhone,
		ApprovedAt:          &approvedAt,
	}

	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*Customer, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.CompanyName != nil {
		updates["company_name"] = *req.CompanyName
	}
	if req.Email != nil {
		updates["email"] = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.GSTNumber != nil {
		updates["gst_number"] = *req.GSTNumber
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.DiscountPercentage != nil {
		d, err := validDiscount(*req.DiscountPercentage)
		if err != nil {
			return nil, err
		}
		updates["discount_percentage"] = d
	}
	if req.PrimaryContactName != nil {
		updates["primary_contact_name"] = *req.PrimaryContactName
	}
	if req.PrimaryContactEmail != nil {
		updates["primary_contact_email"] = *req.PrimaryContactEmail
	}
	if req.PrimaryContactPhone != nil {
		updates["primary_contact_phone"] = *req.PrimaryContactPhone
	}

	if len(updates) == 0 {
		return existing, nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	return s.repo.List(ctx, req)
}

// Register creates a pending B2B customer and its portal login atomically.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Customer, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var created *Customer
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		var err error
		created, err = repo.Create(ctx, Customer{
			Name:                req.Name,
			CompanyName:         req.CompanyName,
			Email:               strings.TrimSpace(req.Email),
			Phone:               req.Phone,
			GSTNumber:           req.GSTNumber,
			Address:             req.Address,
			Type:                TypeB2B,
			DiscountPercentage:  decimal.Zero,
			Status:              StatusPending,
			PrimaryContactName:  req.PrimaryContactName,
			PrimaryContactEmail: req.PrimaryContactEmail,
			PrimaryContactPhone: req.PrimaryContactPhone,
		})
		if err != nil {
			return err
		}
		_, err = repo.CreatePortalUser(ctx, PortalUser{
			Email:        req.Email,
			PasswordHash: string(hash),
			CustomerID:   created.ID,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("register b2b customer: %w", err)
	}

	s.record(ctx, "customer.registered", created.ID, map[string]any{"company_name": created.CompanyName})
	return created, nil
}

// Decide approves or rejects a pending customer. Rejection clears the discount.
func (s *Service) Decide(ctx context.Context, req DecisionRequest) (*Customer, error) {
	id, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid customer_id", httpx.ErrValidation)
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != StatusApproved && status != StatusRejected {
		return nil, fmt.Errorf("%w: status must be approved or rejected", httpx.ErrValidation)
	}
	discount, err := validDiscount(req.DiscountPercentage)
	if err != nil {
		return nil, err
	}
	if status == StatusRejected {
		discount = decimal.Zero
	}

	if err := s.repo.Decide(ctx, id, status, discount, s.now()); err != nil {
		return nil, fmt.Errorf("decide customer: %w", err)
	}

	if s.metrics != nil {
		s.metrics.CustomerDecision(status)
	}
	s.record(ctx, "customer."+status, id, map[string]any{"discount_percentage": discount.String()})
	if s.notifier != nil {
		if err := s.notifier.NotifyCustomerDecision(ctx, id, status, discount); err != nil {
			s.logger.Warn("enqueue customer decision notification", slog.String("customer_id", id.String()), slog.Any("error", err))
		}
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) record(ctx context.Context, action string, id uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorID(ctx),
		Action:   action,
		Entity:   "customer",
		EntityID: id.String(),
		Meta:     meta,
		At:       s.now(),
	})
	if err != nil {
		s.logger.Error("audit customer", slog.String("action", action), slog.Any("error", err))
	}
}

func validDiscount(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() || d.GreaterThan(hundred) {
		return decimal.Zero, fmt.Errorf("%w: discount_percentage must be between 0 and 100", httpx.ErrValidation)
	}
	return d.Round(2), nil
}
