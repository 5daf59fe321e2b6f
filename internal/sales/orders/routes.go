package orders

import (
	"github.com/go-chi/chi/v5"
)

// MountAdminRoutes registers order management under /admin.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Post("/orders/update-status", h.UpdateStatus)
	r.Get("/orders/{id}", h.Show)
}

// MountPortalRoutes registers the B2B customer's own orders under /b2b.
func (h *Handler) MountPortalRoutes(r chi.Router) {
	r.Get("/orders", h.PortalList)
	r.Post("/orders", h.Place)
	r.Get("/orders/{id}", h.PortalShow)
}
