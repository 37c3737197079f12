package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saas_admin_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "saas_admin_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	PromoRedemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saas_admin_promo_redemptions_total",
			Help: "Promo code redemption attempts by outcome",
		},
		[]string{"outcome"},
	)

	ExpenseTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saas_admin_expense_transitions_total",
			Help: "Expense status transitions by source and target status",
		},
		[]string{"from", "to"},
	)

	NotificationsDerived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saas_admin_notifications_derived_total",
			Help: "Expiry notifications derived by severity",
		},
		[]string{"severity"},
	)
)
