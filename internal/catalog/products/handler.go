package products

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
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
	q := r.URL.Query()
	page, perPage, limit, offset := shared.PageParams(q)
	req := listFilters(q)
	req.Limit, req.Offset = limit, offset
	if v := q.Get("is_active"); v != "" {
		active := v == "true"
		req.IsActive = &active
	}

	items, total, err := h.service.List(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "list products failed", err)
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
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get product failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "create product failed", err)
		return
	}
	h.logger.Info("product created", slog.String("id", product.ID.String()), slog.String("sku", product.SKU))
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateProductRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.Fail(w, h.logger, "update product failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Fail(w, h.logger, "delete product failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Storefront(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, perPage, limit, offset := shared.PageParams(q)
	req := listFilters(q)
	req.Limit, req.Offset = limit, offset
	if q.Get("featured") == "true" {
		featured := true
		req.Featured = &featured
	}

	out, err := h.service.Storefront(r.Context(), req, page, perPage)
	if err != nil {
		httpx.Fail(w, h.logger, "storefront listing failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) StorefrontShow(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.StorefrontBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpx.Fail(w, h.logger, "storefront product failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func listFilters(q url.Values) ListProductsRequest {
	req := ListProductsRequest{Search: q.Get("search")}
	if v, err := strconv.ParseInt(q.Get("category_id"), 10, 64); err == nil {
		req.CategoryID = &v
	}
	if v, err := strconv.ParseInt(q.Get("sub_category_id"), 10, 64); err == nil {
		req.SubCategoryID = &v
	}
	if v, err := strconv.ParseInt(q.Get("brand_id"), 10, 64); err == nil {
		req.BrandID = &v
	}
	return req
}
