package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type itemErrors struct{ items []string }

func (e itemErrors) Error() string { return fmt.Sprintf("%v: %d item(s) invalid", ErrValidation, len(e.items)) }
func (e itemErrors) Unwrap() error { return ErrValidation }
func (e itemErrors) Details() any  { return e.items }

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("get quotation: %w", ErrNotFound): http.StatusNotFound,
		fmt.Errorf("sku: %w", ErrDuplicate):          http.StatusConflict,
		ErrConflict:                                  http.StatusConflict,
		fmt.Errorf("%w: bad status", ErrValidation):  http.StatusBadRequest,
		ErrForbidden:                                 http.StatusForbidden,
		ErrUnauthorized:                              http.StatusUnauthorized,
		errors.New("connection reset"):               http.StatusInternalServerError,
	}
	for err, want := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, err)
		assert.Equal(t, want, rec.Code, err.Error())
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("pq: password authentication failed"))

	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Detail)
	assert.Equal(t, http.StatusInternalServerError, body.Status)
}

func TestRespondErrorIncludesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, itemErrors{items: []string{"product 2 not found"}})

	var body struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"product 2 not found"}, body.Errors)
}

func TestBindValidates(t *testing.T) {
	type payload struct {
		Name string `json:"name" validate:"required"`
	}
	v := validator.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))
	var p payload
	err := Bind(req, v, &p)
	require.ErrorIs(t, err, ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
	err = Bind(req, v, &p)
	require.ErrorIs(t, err, ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"bat"}`))
	require.NoError(t, Bind(req, v, &p))
	assert.Equal(t, "bat", p.Name)
}
