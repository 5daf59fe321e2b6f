package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/basteen-Dev/pavilion/internal/auth"
	"github.com/basteen-Dev/pavilion/internal/catalog/products"
	"github.com/basteen-Dev/pavilion/internal/catalog/taxonomy"
	"github.com/basteen-Dev/pavilion/internal/observability"
	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
	"github.com/basteen-Dev/pavilion/internal/rbac"
	"github.com/basteen-Dev/pavilion/internal/sales/customers"
	"github.com/basteen-Dev/pavilion/internal/sales/orders"
	"github.com/basteen-Dev/pavilion/internal/sales/quotations"
	"github.com/basteen-Dev/pavilion/internal/shared"
	"github.com/basteen-Dev/pavilion/jobs"
	"github.com/basteen-Dev/pavilion/report"
)

// RouterParams groups dependencies for building the HTTP router. Nil
// handlers leave their routes unmounted.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics
	Tokens  *auth.Tokens

	AuthHandler      *auth.Handler
	ProductHandler   *products.Handler
	TaxonomyHandler  *taxonomy.Handler
	CustomerHandler  *customers.Handler
	QuotationHandler *quotations.Handler
	OrderHandler     *orders.Handler
	JobHandler       *jobs.Handler
	ReportHandler    *report.Handler
}

// NewRouter constructs the chi.Router with Pavilion defaults.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}
	if params.ProductHandler != nil {
		params.ProductHandler.MountStorefrontRoutes(r)
	}
	if params.TaxonomyHandler != nil {
		params.TaxonomyHandler.MountStorefrontRoutes(r)
	}

	guard := rbac.Middleware{Logger: logger}
	authenticate := auth.Authenticate(params.Tokens, logger)

	r.Route("/b2b", func(r chi.Router) {
		if params.CustomerHandler != nil {
			r.Post("/register", params.CustomerHandler.Register)
		}
		r.Group(func(r chi.Router) {
			r.Use(authenticate, guard.RequireRole(shared.RoleB2B))
			if params.CustomerHandler != nil {
				params.CustomerHandler.MountPortalRoutes(r)
			}
			if params.OrderHandler != nil {
				params.OrderHandler.MountPortalRoutes(r)
			}
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticate, guard.RequireRole(shared.RoleAdmin))
		if params.ProductHandler != nil {
			params.ProductHandler.MountAdminRoutes(r)
		}
		if params.TaxonomyHandler != nil {
			params.TaxonomyHandler.MountAdminRoutes(r)
		}
		if params.CustomerHandler != nil {
			params.CustomerHandler.MountAdminRoutes(r)
		}
		if params.QuotationHandler != nil {
			params.QuotationHandler.MountRoutes(r)
		}
		if params.OrderHandler != nil {
			params.OrderHandler.MountAdminRoutes(r)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
		if params.ReportHandler != nil {
			r.Route("/report", params.ReportHandler.MountRoutes)
		}
	})

	return r
}
