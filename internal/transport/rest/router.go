package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frahmantamala/saas-admin/internal"
	"github.com/frahmantamala/saas-admin/internal/analytics"
	"github.com/frahmantamala/saas-admin/internal/audit"
	"github.com/frahmantamala/saas-admin/internal/auth"
	"github.com/frahmantamala/saas-admin/internal/customer"
	"github.com/frahmantamala/saas-admin/internal/expense"
	"github.com/frahmantamala/saas-admin/internal/notification"
	"github.com/frahmantamala/saas-admin/internal/promo"
	"github.com/frahmantamala/saas-admin/internal/salesperson"
	"github.com/frahmantamala/saas-admin/internal/transport/middleware"
	"github.com/frahmantamala/saas-admin/internal/transport/swagger"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health       *HealthHandler
	Auth         *auth.Handler
	Promo        *promo.Handler
	Expense      *expense.Handler
	Notification *notification.Handler
	Analytics    *analytics.Handler
	SalesPerson  *salesperson.Handler
	Customer     *customer.Handler
	Audit        *audit.Handler
}

type Options struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	Production     bool
	// MetricsPath mounts the Prometheus handler when non-empty.
	MetricsPath string
	OpenAPI     []byte
}

func RegisterAllRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.LoggingMiddleware(opts.Logger))
	router.Use(middleware.RecoveryMiddleware(opts.Logger))
	router.Use(middleware.SecureHeaders(opts.Logger, opts.Production))
	router.Use(middleware.CORS(opts.AllowedOrigins))
	if opts.MetricsPath != "" {
		router.Use(middleware.Metrics)
		router.Handle(opts.MetricsPath, promhttp.Handler())
	}

	if len(opts.OpenAPI) > 0 {
		router.Get("/openapi.yml", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(opts.OpenAPI)
		})
		router.Handle("/swagger/*", swagger.Handler("/openapi.yml"))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health.Health)
		r.Get("/ping", h.Health.Ping)

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/login", h.Auth.Login)
			ar.Post("/refresh", h.Auth.RefreshToken)
			ar.With(h.Auth.AuthMiddleware).Post("/logout", h.Auth.Logout)
			ar.With(h.Auth.AuthMiddleware).Get("/me", h.Auth.Me)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			admin := h.Auth.RequireRole(internal.RoleAdmin)

			pr.Route("/promos", func(sr chi.Router) {
				sr.Get("/", h.Promo.ListPromos)
				sr.With(admin).Post("/", h.Promo.CreatePromo)
				sr.Post("/redeem", h.Promo.RedeemPromo)
				sr.Get("/{id}", h.Promo.GetPromo)
				sr.With(admin).Delete("/{id}", h.Promo.DeletePromo)
			})

			pr.Route("/expenses", func(sr chi.Router) {
				sr.Get("/", h.Expense.ListExpenses)
				sr.Post("/", h.Expense.SubmitExpense)
				sr.Get("/{id}", h.Expense.GetExpense)
				sr.With(admin).Delete("/{id}", h.Expense.DeleteExpense)
				sr.With(admin).Put("/{id}/status", h.Expense.AdvanceExpense)
			})

			pr.Get("/notifications", h.Notification.ListNotifications)
			pr.Get("/analytics", h.Analytics.GetAnalytics)

			pr.Route("/sales", func(sr chi.Router) {
				sr.Get("/", h.SalesPerson.ListSalesPeople)
				sr.With(admin).Post("/", h.SalesPerson.CreateSalesPerson)
				sr.With(admin).Delete("/{id}", h.SalesPerson.DeleteSalesPerson)
			})

			pr.Route("/users", func(sr chi.Router) {
				sr.Get("/", h.Customer.ListUsers)
				sr.Post("/", h.Customer.CreateUser)
				sr.Get("/{id}", h.Customer.GetUser)
				sr.With(admin).Delete("/{id}", h.Customer.DeleteUser)
			})

			pr.With(admin).Get("/audit-logs", h.Audit.ListAuditLogs)
		})
	})
}
