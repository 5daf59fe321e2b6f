package orders

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
	"github.com/basteen-Dev/pavilion/internal/shared"
)

// IdempotencyHeader carries the client supplied retry key.
const IdempotencyHeader = "Idempotency-Key"

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req, page, perPage, err := listRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if v := r.URL.Query().Get("customer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httpx.RespondError(w, httpx.ErrValidation)
			return
		}
		req.CustomerID = &id
	}
	items, total, err := h.service.List(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "list orders failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get order failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	order, err := h.service.UpdateStatus(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "update order status failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) Place(w http.ResponseWriter, r *http.Request) {
	customerID, ok := portalCustomer(w, r)
	if !ok {
		return
	}
	var req PlaceOrderRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	order, err := h.service.Place(r.Context(), customerID, req, key)
	if err != nil {
		httpx.Fail(w, h.logger, "place order failed", err)
		return
	}
	h.logger.Info("order placed",
		slog.String("id", order.ID.String()),
		slog.String("order_number", order.OrderNumber),
		slog.String("customer_id", customerID.String()))
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) PortalList(w http.ResponseWriter, r *http.Request) {
	customerID, ok := portalCustomer(w, r)
	if !ok {
		return
	}
	req, page, perPage, err := listRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, total, err := h.service.ListForCustomer(r.Context(), customerID, req)
	if err != nil {
		httpx.Fail(w, h.logger, "list portal orders failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) PortalShow(w http.ResponseWriter, r *http.Request) {
	customerID, ok := portalCustomer(w, r)
	if !ok {
		return
	}
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	order, err := h.service.GetForCustomer(r.Context(), customerID, id)
	if err != nil {
		httpx.Fail(w, h.logger, "get portal order failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func listRequest(r *http.Request) (ListOrdersRequest, int, int, error) {
	q := r.URL.Query()
	page, perPage, limit, offset := shared.PageParams(q)
	req := ListOrdersRequest{Search: q.Get("search"), Limit: limit, Offset: offset}
	if v := q.Get("status"); v != "" {
		st, err := ParseStatus(v)
		if err != nil {
			return req, 0, 0, err
		}
		req.Status = &st
	}
	return req, page, perPage, nil
}

func portalCustomer(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	p := shared.PrincipalFromContext(r.Context())
	if p == nil || p.CustomerID == nil {
		httpx.RespondError(w, httpx.ErrForbidden)
		return uuid.Nil, false
	}
	return *p.CustomerID, true
}
