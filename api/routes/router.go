package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/washtrack/washtrack-backend/api/controllers"
	"github.com/washtrack/washtrack-backend/api/middleware"
	"github.com/washtrack/washtrack-backend/internal/admin"
	"github.com/washtrack/washtrack-backend/internal/credentials"
	"github.com/washtrack/washtrack-backend/internal/reports"
	"github.com/washtrack/washtrack-backend/internal/sales"
	"github.com/washtrack/washtrack-backend/pkg/config"
	"github.com/washtrack/washtrack-backend/pkg/db"
	"github.com/washtrack/washtrack-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	metricsHandler http.Handler,
	credsService credentials.Service,
	salesService sales.Service,
	reportsService reports.Service,
	adminService admin.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sales", controllers.SaleCreate(salesService, logg))
		r.Post("/recharges", controllers.RechargeCreate(salesService, logg))
		r.Get("/records", controllers.RecordList(salesService, logg))
		r.Get("/salespeople", controllers.SalespeopleList(credsService, logg))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/weekly-total", controllers.WeeklyTotal(reportsService, logg))
			r.Get("/salespeople/{name}", controllers.SalespersonPerformance(reportsService, logg))
			r.Get("/customers/{name}", controllers.CustomerSpending(reportsService, logg))
			r.Get("/range", controllers.RangeReport(reportsService, logg))
		})

		// Record edits and deletions rewrite ledger history; admin only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.JWT, logg))
			r.Patch("/records/{recordId}", controllers.RecordUpdate(salesService, logg))
			r.Delete("/records/{recordId}", controllers.RecordDelete(salesService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Post("/login", controllers.AdminLogin(adminService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.JWT, logg))
			r.Put("/password", controllers.AdminChangePassword(adminService, logg))
			r.Get("/export", controllers.AdminExport(adminService, logg))
			r.Post("/reset", controllers.AdminReset(adminService, logg))

			r.Route("/salespeople", func(r chi.Router) {
				r.Post("/", controllers.SalespersonCreate(credsService, logg))
				r.Delete("/{name}", controllers.SalespersonDelete(credsService, logg))
				r.Put("/{name}/password", controllers.SalespersonSetPassword(credsService, logg))
			})
		})
	})

	return r
}
