package orders

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/basteen-Dev/pavilion/internal/catalog/products"
	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
	"github.com/basteen-Dev/pavilion/internal/sales/customers"
	"github.com/basteen-Dev/pavilion/internal/sales/quotations"
	salesshared "github.com/basteen-Dev/pavilion/internal/sales/shared"
	"github.com/basteen-Dev/pavilion/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	orders     map[uuid.UUID]*Order
	keys       map[string]bool
	quotations map[uuid.UUID]int
	converted  map[uuid.UUID]bool
	seq        int64
	itemErr    error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		orders:     make(map[uuid.UUID]*Order),
		keys:       make(map[string]bool),
		quotations: make(map[uuid.UUID]int),
		converted:  make(map[uuid.UUID]bool),
	}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	orders := make(map[uuid.UUID]*Order, len(m.orders))
	for k, v := range m.orders {
		cp := *v
		cp.Items = append([]Item(nil), v.Items...)
		orders[k] = &cp
	}
	keys := make(map[string]bool, len(m.keys))
	for k, v := range m.keys {
		keys[k] = v
	}
	quotes := make(map[uuid.UUID]int, len(m.quotations))
	for k, v := range m.quotations {
		quotes[k] = v
	}
	converted := make(map[uuid.UUID]bool, len(m.converted))
	for k, v := range m.converted {
		converted[k] = v
	}
	seq := m.seq

	if err := fn(ctx, m); err != nil {
		m.orders, m.keys, m.quotations, m.converted, m.seq = orders, keys, quotes, converted, seq
		return err
	}
	return nil
}

func (m *mockRepository) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	return &cp, nil
}

func (m *mockRepository) List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	out := []Order{}
	for _, o := range m.orders {
		if req.CustomerID != nil && o.CustomerID != *req.CustomerID {
			continue
		}
		if req.Status != nil && o.Status != *req.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (m *mockRepository) Create(ctx context.Context, o Order) (*Order, error) {
	if o.QuotationID != nil {
		if m.converted[*o.QuotationID] {
			return nil, ErrAlreadyConverted
		}
		m.converted[*o.QuotationID] = true
	}
	m.seq++
	o.ID = uuid.New()
	o.OrderNumber = salesshared.FormatNumber(salesshared.PrefixOrder, time.Now(), m.seq)
	o.Version = 1
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	m.orders[o.ID] = &o
	cp := o
	return &cp, nil
}

func (m *mockRepository) InsertItem(ctx context.Context, it Item) error {
	if m.itemErr != nil {
		return m.itemErr
	}
	o, ok := m.orders[it.OrderID]
	if !ok {
		return ErrNotFound
	}
	it.ID = uuid.New()
	o.Items = append(o.Items, it)
	return nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, version int, status Status, notes *string) error {
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	if o.Version != version {
		return ErrVersionConflict
	}
	o.Status = status
	if notes != nil {
		o.Notes = notes
	}
	o.Version++
	return nil
}

func (m *mockRepository) ClaimKey(ctx context.Context, key string) error {
	if m.keys[key] {
		return ErrDuplicateRequest
	}
	m.keys[key] = true
	return nil
}

func (m *mockRepository) MarkQuotationProcessing(ctx context.Context, quotationID uuid.UUID, version int) error {
	current, ok := m.quotations[quotationID]
	if !ok || current != version {
		return quotations.ErrVersionConflict
	}
	m.quotations[quotationID] = version + 1
	return nil
}

type fakeCustomers map[uuid.UUID]*customers.Customer

func (f fakeCustomers) Get(ctx context.Context, id uuid.UUID) (*customers.Customer, error) {
	c, ok := f[id]
	if !ok {
		return nil, customers.ErrNotFound
	}
	return c, nil
}

type fakeProducts map[uuid.UUID]products.Product

func (f fakeProducts) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]products.Product, error) {
	out := make(map[uuid.UUID]products.Product)
	for _, id := range ids {
		if p, ok := f[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type countingMetrics struct {
	placed      map[string]int
	transitions []string
}

func (m *countingMetrics) OrderPlaced(source string) { m.placed[source]++ }

func (m *countingMetrics) OrderTransition(from, to string) {
	m.transitions = append(m.transitions, from+"->"+to)
}

type recordingAuditor struct{ actions []string }

func (a *recordingAuditor) Record(ctx context.Context, log shared.AuditLog) error {
	a.actions = append(a.actions, log.Action)
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	repo    *mockRepository
	metrics *countingMetrics
	audit   *recordingAuditor
	svc     *Service

	dealer   *customers.Customer
	pending  *customers.Customer
	bat      products.Product
	ball     products.Product
	inactive products.Product
}

func newFixture() *fixture {
	f := &fixture{
		repo:    newMockRepository(),
		metrics: &countingMetrics{placed: map[string]int{}},
		audit:   &recordingAuditor{},
	}
	f.dealer = &customers.Customer{ID: uuid.New(), Name: "Dealer", Type: customers.TypeB2B, Status: customers.StatusApproved, DiscountPercentage: dec("15")}
	f.pending = &customers.Customer{ID: uuid.New(), Name: "Applicant", Type: customers.TypeB2B, Status: customers.StatusPending}
	f.bat = products.Product{ID: uuid.New(), Name: "Bat", SKU: "BAT", MRP: dec("1000"), SellingPrice: dec("950"), IsActive: true}
	f.ball = products.Product{ID: uuid.New(), Name: "Ball", SKU: "BALL", MRP: dec("500"), SellingPrice: dec("500"), IsActive: true}
	f.inactive = products.Product{ID: uuid.New(), Name: "Old", SKU: "OLD", MRP: dec("100"), IsActive: false}

	f.svc = NewService(f.repo,
		fakeCustomers{f.dealer.ID: f.dealer, f.pending.ID: f.pending},
		fakeProducts{f.bat.ID: f.bat, f.ball.ID: f.ball, f.inactive.ID: f.inactive},
		f.audit, f.metrics, quietLogger())
	return f
}

func (f *fixture) cart(items ...PlaceItemRequest) PlaceOrderRequest {
	return PlaceOrderRequest{Items: items}
}

func (f *fixture) place(t *testing.T) *Order {
	t.Helper()
	o, err := f.svc.Place(context.Background(), f.dealer.ID, f.cart(PlaceItemRequest{ProductID: f.bat.ID.String(), Quantity: 1}), "")
	require.NoError(t, err)
	return o
}

// ============================================================================
// SERVICE TESTS
// ============================================================================

type OrderServiceSuite struct {
	suite.Suite
	*fixture
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceSuite))
}

func (s *OrderServiceSuite) SetupTest() {
	s.fixture = newFixture()
}

func (s *OrderServiceSuite) TestPlacePricesWithCustomerDiscount() {
	o, err := s.svc.Place(context.Background(), s.dealer.ID, s.cart(
		PlaceItemRequest{ProductID: s.bat.ID.String(), Quantity: 2},
		PlaceItemRequest{ProductID: s.ball.ID.String(), Quantity: 1},
	), "")
	s.Require().NoError(err)

	s.Equal(StatusPending, o.Status)
	s.Regexp(`^SO-\d{4}-0001$`, o.OrderNumber)
	s.Require().Len(o.Items, 2)
	s.True(o.Items[0].UnitPrice.Equal(dec("850")))
	s.True(o.Items[0].LineTotal.Equal(dec("1700")))
	s.True(o.Items[1].UnitPrice.Equal(dec("425")))
	s.True(o.TotalAmount.Equal(dec("2125")))
	s.Equal(1, s.metrics.placed[SourcePortal])
	s.Equal([]string{"order.placed"}, s.audit.actions)
}

func (s *OrderServiceSuite) TestPlaceRejectsUnavailableProducts() {
	for _, id := range []string{uuid.NewString(), s.inactive.ID.String()} {
		_, err := s.svc.Place(context.Background(), s.dealer.ID, s.cart(PlaceItemRequest{ProductID: id, Quantity: 1}), "")
		s.ErrorIs(err, httpx.ErrValidation)
	}
	s.Empty(s.repo.orders)
}

func (s *OrderServiceSuite) TestPlaceRequiresApprovedCustomer() {
	_, err := s.svc.Place(context.Background(), s.pending.ID, s.cart(PlaceItemRequest{ProductID: s.bat.ID.String(), Quantity: 1}), "")
	s.ErrorIs(err, httpx.ErrForbidden)

	_, err = s.svc.Place(context.Background(), uuid.New(), s.cart(PlaceItemRequest{ProductID: s.bat.ID.String(), Quantity: 1}), "")
	s.ErrorIs(err, httpx.ErrNotFound)
}

func (s *OrderServiceSuite) TestIdempotencyKey() {
	ctx := context.Background()
	req := s.cart(PlaceItemRequest{ProductID: s.bat.ID.String(), Quantity: 1})

	s.repo.itemErr = errors.New("connection reset")
	_, err := s.svc.Place(ctx, s.dealer.ID, req, "cart-42")
	s.Require().Error(err)
	s.False(s.repo.keys["cart-42"])

	s.repo.itemErr = nil
	_, err = s.svc.Place(ctx, s.dealer.ID, req, "cart-42")
	s.Require().NoError(err)

	_, err = s.svc.Place(ctx, s.dealer.ID, req, "cart-42")
	s.ErrorIs(err, ErrDuplicateRequest)
	s.ErrorIs(err, httpx.ErrConflict)
	s.Len(s.repo.orders, 1)
}

func (s *OrderServiceSuite) TestStatusLifecycle() {
	o := s.place(s.T())
	ctx := context.Background()

	for _, next := range []string{"approved", "PROCESSING", "shipped", "completed"} {
		updated, err := s.svc.UpdateStatus(ctx, UpdateStatusRequest{OrderID: o.ID.String(), Status: next})
		s.Require().NoError(err, next)
		o = updated
	}
	s.Equal(StatusCompleted, o.Status)
	s.Equal(5, o.Version)
	s.Len(s.metrics.transitions, 4)

	_, err := s.svc.UpdateStatus(ctx, UpdateStatusRequest{OrderID: o.ID.String(), Status: "cancelled"})
	s.ErrorIs(err, ErrInvalidStatus)
}

func (s *OrderServiceSuite) TestIllegalTransitions() {
	o := s.place(s.T())
	ctx := context.Background()

	for _, next := range []string{"shipped", "completed", "pending", "lost"} {
		_, err := s.svc.UpdateStatus(ctx, UpdateStatusRequest{OrderID: o.ID.String(), Status: next})
		s.ErrorIs(err, httpx.ErrValidation, next)
	}

	stale := 7
	_, err := s.svc.UpdateStatus(ctx, UpdateStatusRequest{OrderID: o.ID.String(), Status: "approved", Version: &stale})
	s.ErrorIs(err, httpx.ErrConflict)

	_, err = s.svc.UpdateStatus(ctx, UpdateStatusRequest{OrderID: uuid.NewString(), Status: "approved"})
	s.ErrorIs(err, httpx.ErrNotFound)
}

func (s *OrderServiceSuite) TestListAndGetForCustomer() {
	mine := s.place(s.T())
	other := uuid.New()
	s.repo.orders[uuid.New()] = &Order{CustomerID: other, Status: StatusPending}

	items, total, err := s.svc.ListForCustomer(context.Background(), s.dealer.ID, ListOrdersRequest{Limit: 20})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Equal(mine.ID, items[0].ID)

	_, err = s.svc.GetForCustomer(context.Background(), other, mine.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *OrderServiceSuite) approvedQuotation() quotations.Quotation {
	productID := s.bat.ID
	q := quotations.Quotation{
		ID:          uuid.New(),
		CustomerID:  s.dealer.ID,
		Status:      quotations.StatusApproved,
		TotalAmount: dec("1700"),
		Version:     3,
		Items: []quotations.Item{{
			ProductID: &productID, ProductName: "Bat", SKU: "BAT", Quantity: 2,
			UnitPrice: dec("850"), MRP: dec("1000"), Discount: dec("15"), LineTotal: dec("1700"), LineOrder: 1,
		}},
	}
	s.repo.quotations[q.ID] = q.Version
	return q
}

func (s *OrderServiceSuite) TestConvertQuotation() {
	q := s.approvedQuotation()

	id, number, err := s.svc.ConvertQuotation(context.Background(), q)
	s.Require().NoError(err)
	s.Regexp(`^SO-\d{4}-0001$`, number)

	o, err := s.svc.Get(context.Background(), id)
	s.Require().NoError(err)
	s.Equal(StatusApproved, o.Status)
	s.Equal(q.ID, *o.QuotationID)
	s.True(o.TotalAmount.Equal(dec("1700")))
	s.Require().Len(o.Items, 1)
	s.True(o.Items[0].LineTotal.Equal(dec("1700")))
	s.Equal(4, s.repo.quotations[q.ID])
	s.Equal(1, s.metrics.placed[SourceQuotation])

	_, _, err = s.svc.ConvertQuotation(context.Background(), q)
	s.ErrorIs(err, httpx.ErrConflict)
	s.Len(s.repo.orders, 1)
}

func (s *OrderServiceSuite) TestConvertRollsBackOnStaleQuotation() {
	q := s.approvedQuotation()
	s.repo.quotations[q.ID] = q.Version + 1

	_, _, err := s.svc.ConvertQuotation(context.Background(), q)
	s.ErrorIs(err, quotations.ErrVersionConflict)
	s.Empty(s.repo.orders)
	s.Empty(s.repo.converted)
}

func (s *OrderServiceSuite) TestConvertRequiresApproved() {
	q := s.approvedQuotation()
	q.Status = quotations.StatusSent

	_, _, err := s.svc.ConvertQuotation(context.Background(), q)
	s.ErrorIs(err, httpx.ErrValidation)
}
