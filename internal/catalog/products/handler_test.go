package products

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(svc *Service) http.Handler {
	h := NewHandler(quietLogger(), svc)
	r := chi.NewRouter()
	r.Route("/admin", h.MountAdminRoutes)
	h.MountStorefrontRoutes(r)
	return r
}

func TestHandlerCreateAndFetchBySlug(t *testing.T) {
	router := newTestRouter(NewService(newMockRepository(), nil, quietLogger()))

	body := `{"name":"Cricket Ball","sku":"BALL-9","mrp":"350.00","selling_price":320}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/cricket-ball", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "350", fmt.Sprint(got["mrp"]))
	assert.NotContains(t, got, "dealer_price")
}

func TestHandlerDuplicateReturnsConflict(t *testing.T) {
	svc := NewService(newMockRepository(), nil, quietLogger())
	_, err := svc.Create(context.Background(), createReq("Bat", "BAT-1", "100"))
	require.NoError(t, err)
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	body := `{"name":"Bat Two","sku":"BAT-1","mrp":100}`
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerValidation(t *testing.T) {
	router := newTestRouter(NewService(newMockRepository(), nil, quietLogger()))

	for _, body := range []string{`{"sku":"X","mrp":1}`, `{"name":"x","sku":"X","mrp":1,"bogus":true}`, `not-json`} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/products/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerUnknownProduct(t *testing.T) {
	router := newTestRouter(NewService(newMockRepository(), nil, quietLogger()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/products/7f1c4e4a-8a7c-4d8e-9d55-1f1f7c2b9a10", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListFiltersParsesTaxonomyIDs(t *testing.T) {
	req := listFilters(url.Values{
		"search":          {"bat"},
		"category_id":     {"3"},
		"sub_category_id": {"7"},
		"brand_id":        {"x"},
	})
	assert.Equal(t, "bat", req.Search)
	require.NotNil(t, req.CategoryID)
	require.NotNil(t, req.SubCategoryID)
	assert.Equal(t, int64(3), *req.CategoryID)
	assert.Equal(t, int64(7), *req.SubCategoryID)
	assert.Nil(t, req.BrandID)
}

func TestHandlerUnknownTaxonomyIsBadRequest(t *testing.T) {
	repo := newMockRepository()
	repo.createErr = ErrUnknownTaxonomy
	router := newTestRouter(NewService(repo, nil, quietLogger()))

	rec := httptest.NewRecorder()
	body := `{"name":"Ghost","sku":"GHOST","mrp":10,"brand_id":42}`
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
