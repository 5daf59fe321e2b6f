package taxonomy

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type kindKey struct{}

// withKind tags requests under a route group with the table they address.
func withKind(k Kind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), kindKey{}, k)))
		})
	}
}

func kind(r *http.Request) Kind {
	k, _ := r.Context().Value(kindKey{}).(Kind)
	return k
}

var paths = map[Kind]string{
	KindCategory:    "/categories",
	KindSubCategory: "/sub-categories",
	KindBrand:       "/brands",
}

// MountStorefrontRoutes registers the public, active-only listings.
func (h *Handler) MountStorefrontRoutes(r chi.Router) {
	for k, path := range paths {
		r.With(withKind(k)).Get(path, h.list(true))
	}
}

// MountAdminRoutes registers taxonomy management under an admin-guarded router.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	creates := map[Kind]http.HandlerFunc{
		KindCategory:    h.CreateCategory,
		KindSubCategory: h.CreateSubCategory,
		KindBrand:       h.CreateBrand,
	}
	for k, path := range paths {
		r.Route(path, func(r chi.Router) {
			r.Use(withKind(k))
			r.Get("/", h.list(false))
			r.Post("/", creates[k])
			r.Get("/{id}", h.Show)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	}
}
