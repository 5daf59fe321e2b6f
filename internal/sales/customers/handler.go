package customers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
	"github.com/basteen-Dev/pavilion/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, ListCustomersRequest{})
}

// ListB2B feeds the approval screen with B2B customers of every status.
func (h *Handler) ListB2B(w http.ResponseWriter, r *http.Request) {
	b2b := TypeB2B
	h.list(w, r, ListCustomersRequest{Type: &b2b})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, req ListCustomersRequest) {
	q := r.URL.Query()
	page, perPage, limit, offset := shared.PageParams(q)
	req.Limit, req.Offset = limit, offset
	if v := q.Get("search"); v != "" {
		req.Search = &v
	}
	if v := q.Get("type"); v != "" && req.Type == nil {
		req.Type = &v
	}
	if v := q.Get("status"); v != "" {
		req.Status = &v
	}

	customers, total, err := h.service.List(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "list customers failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      customers,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	customer, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get customer failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	customer, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "create customer failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateCustomerRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	customer, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.Fail(w, h.logger, "update customer failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	var req DecisionRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		h.logger.Warn("customer decision rejected", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	customer, err := h.service.Decide(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "customer decision failed", err)
		return
	}
	h.logger.Info("customer decided",
		slog.String("customer_id", customer.ID.String()),
		slog.String("status", customer.Status),
		slog.String("discount", customer.DiscountPercentage.String()),
		slog.String("actor", shared.ActorID(r.Context())))
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	customer, err := h.service.Register(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "b2b registration failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"id":     customer.ID,
		"status": customer.Status,
	})
}

// Profile returns the customer bound to the calling portal user.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	if p == nil || p.CustomerID == nil {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}
	customer, err := h.service.Get(r.Context(), *p.CustomerID)
	if err != nil {
		httpx.Fail(w, h.logger, "get profile failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}
