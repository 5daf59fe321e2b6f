package customers

import (
	"github.com/go-chi/chi/v5"
)

// MountAdminRoutes registers customer management under an admin-guarded router.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/customers", h.List)
	r.Post("/customers", h.Create)
	r.Post("/customers/approve", h.Approve)
	r.Get("/customers/{id}", h.Show)
	r.Put("/customers/{id}", h.Update)
	r.Get("/b2b-customers", h.ListB2B)
}

// MountPortalRoutes registers routes for authenticated B2B users.
func (h *Handler) MountPortalRoutes(r chi.Router) {
	r.Get("/profile", h.Profile)
}
