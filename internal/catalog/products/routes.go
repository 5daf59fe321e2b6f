package products

import "github.com/go-chi/chi/v5"

// MountAdminRoutes registers catalog management under an admin-guarded router.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/products", h.List)
	r.Post("/products", h.Create)
	r.Get("/products/{id}", h.Show)
	r.Put("/products/{id}", h.Update)
	r.Delete("/products/{id}", h.Delete)
}

// MountStorefrontRoutes registers the public catalog.
func (h *Handler) MountStorefrontRoutes(r chi.Router) {
	r.Get("/products", h.Storefront)
	r.Get("/products/{slug}", h.StorefrontShow)
}
