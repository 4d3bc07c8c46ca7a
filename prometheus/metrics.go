package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const prefix = "flower_service"

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Order engine metrics
	OrdersPlacedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_orders_placed_total",
			Help: "Total number of successfully committed orders",
		},
	)

	OrdersRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_orders_rejected_total",
			Help: "Total number of rejected orders by reason",
		},
		[]string{"reason"},
	)

	// Inventory metrics
	BatchOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_batch_operations_total",
			Help: "Total number of inventory batch operations",
		},
		[]string{"operation"},
	)

	BatchesSweptTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_batches_swept_total",
			Help: "Total number of expired batches deleted by the sweeper",
		},
	)

	// Notification dispatch metrics
	DispatchDeliveredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_dispatch_delivered_total",
			Help: "Total number of notification events delivered",
		},
	)

	DispatchFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_dispatch_failed_total",
			Help: "Total number of notification events that failed or were dropped",
		},
	)

	// Authentication metrics
	LoginAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_login_attempts_total",
			Help: "Total number of login attempts",
		},
	)

	LoginFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_login_failures_total",
			Help: "Total number of failed login attempts",
		},
	)
)
