package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/basteen-Dev/pavilion/internal/shared"
)

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	guarded := Middleware{}.RequireRole(" Admin ")(ok)

	cases := []struct {
		name      string
		principal *shared.Principal
		want      int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"b2b user", &shared.Principal{UserID: uuid.New(), Role: shared.RoleB2B}, http.StatusForbidden},
		{"admin", &shared.Principal{UserID: uuid.New(), Role: shared.RoleAdmin}, http.StatusTeapot},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
			if tc.principal != nil {
				req = req.WithContext(shared.ContextWithPrincipal(req.Context(), tc.principal))
			}
			rec := httptest.NewRecorder()
			guarded.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
