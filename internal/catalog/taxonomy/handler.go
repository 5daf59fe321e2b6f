package taxonomy

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// list serves a listing; public routes only ever see active entries.
func (h *Handler) list(public bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := filterFrom(r.URL.Query())
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		f.ActiveOnly = public || r.URL.Query().Get("is_active") == "true"

		var out any
		switch kind(r) {
		case KindCategory:
			out, err = h.service.Categories(r.Context(), f)
		case KindSubCategory:
			out, err = h.service.SubCategories(r.Context(), f)
		default:
			out, err = h.service.Brands(r.Context(), f)
		}
		if err != nil {
			httpx.Fail(w, h.logger, "list taxonomy failed", err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"items": out})
	}
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.get(r.Context(), kind(r), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get taxonomy entry failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.CreateCategory(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "create category failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) CreateSubCategory(w http.ResponseWriter, r *http.Request) {
	var req SubCategoryRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.CreateSubCategory(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "create sub-category failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var req BrandRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.CreateBrand(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "create brand failed", err)
		return
	}
	h.logger.Info("brand created", slog.Int64("id", created.ID), slog.String("slug", created.Slug))
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.Update(r.Context(), kind(r), id, req)
	if err != nil {
		httpx.Fail(w, h.logger, "update taxonomy entry failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), kind(r), id); err != nil {
		httpx.Fail(w, h.logger, "delete taxonomy entry failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", httpx.ErrValidation)
	}
	return id, nil
}

func filterFrom(q url.Values) (Filter, error) {
	var f Filter
	for name, dst := range map[string]**int64{"category_id": &f.CategoryID, "sub_category_id": &f.SubCategoryID} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			return Filter{}, fmt.Errorf("%w: %s must be a positive integer", httpx.ErrValidation, name)
		}
		*dst = &v
	}
	return f, nil
}
