package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basteen-Dev/pavilion/internal/shared"
)

func newTestRouter(f *fixture) http.Handler {
	h := NewHandler(quietLogger(), f.svc)
	r := chi.NewRouter()
	r.Route("/admin", h.MountAdminRoutes)
	r.Route("/b2b", h.MountPortalRoutes)
	return r
}

func asCustomer(req *http.Request, customerID uuid.UUID) *http.Request {
	p := &shared.Principal{UserID: uuid.New(), Role: shared.RoleB2B, CustomerID: &customerID}
	return req.WithContext(shared.ContextWithPrincipal(context.Background(), p))
}

func TestHandlerPlaceWithIdempotencyKey(t *testing.T) {
	f := newFixture()
	router := newTestRouter(f)
	body := `{"items":[{"product_id":"` + f.bat.ID.String() + `","quantity":2}]}`

	send := func() *httptest.ResponseRecorder {
		req := asCustomer(httptest.NewRequest(http.MethodPost, "/b2b/orders", strings.NewReader(body)), f.dealer.ID)
		req.Header.Set(IdempotencyHeader, "checkout-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := send()
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID          string `json:"id"`
		OrderNumber string `json:"order_number"`
		Status      string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "pending", created.Status)
	assert.NotEmpty(t, created.OrderNumber)

	assert.Equal(t, http.StatusConflict, send().Code)
}

func TestHandlerPortalRequiresCustomer(t *testing.T) {
	router := newTestRouter(newFixture())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/b2b/orders", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandlerPortalHidesOtherCustomersOrders(t *testing.T) {
	f := newFixture()
	o := f.place(t)
	router := newTestRouter(f)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asCustomer(httptest.NewRequest(http.MethodGet, "/b2b/orders/"+o.ID.String(), nil), uuid.New()))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asCustomer(httptest.NewRequest(http.MethodGet, "/b2b/orders/"+o.ID.String(), nil), f.dealer.ID))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlerAdminUpdateStatus(t *testing.T) {
	f := newFixture()
	o := f.place(t)
	router := newTestRouter(f)

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/orders/update-status", strings.NewReader(body)))
		return rec
	}

	rec := post(`{"order_id":"` + o.ID.String() + `","status":"approved"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, post(`{"order_id":"`+o.ID.String()+`","status":"completed"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{"order_id":"nope","status":"approved"}`).Code)
	assert.Equal(t, http.StatusNotFound, post(`{"order_id":"`+uuid.NewString()+`","status":"approved"}`).Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/orders?status=approved", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Items []Order `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Items, 1)
}
