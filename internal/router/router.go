package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/patient-payments/internal/handlers"
	"github.com/GregMSThompson/patient-payments/internal/middleware"
)

func NewRouter(deps *handlers.Deps, auth *middleware.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(deps.Metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		deps.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	ush := handlers.NewUserHandlers(deps)
	inh := handlers.NewInsuranceHandlers(deps)
	vnh := handlers.NewVenmoHandlers(deps)
	rch := handlers.NewReconciliationHandlers(deps)
	sth := handlers.NewSettingsHandlers(deps)

	r.Group(func(r chi.Router) {
		r.Use(auth.Auth)
		r.Mount("/users", ush.UserRoutes())
		r.Mount("/insurance-payments", inh.InsuranceRoutes())
		r.Mount("/venmo-payments", vnh.VenmoRoutes())
		r.Mount("/reconciliation", rch.ReconciliationRoutes())
		r.Mount("/settings", sth.SettingsRoutes())
	})
	return r
}
