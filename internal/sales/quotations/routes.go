package quotations

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers quotation endpoints under an admin-guarded router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/quotations", h.List)
	r.Post("/quotations", h.Create)
	r.Post("/quotations/preview", h.Preview)
	r.Get("/quotations/{id}", h.Show)
	r.Put("/quotations/{id}", h.Update)
	r.Post("/quotations/{id}/convert", h.Convert)
	r.Get("/quotations/{id}/pdf", h.PDF)
}
