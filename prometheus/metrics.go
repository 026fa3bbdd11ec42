package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Sign-in counters
	SigninCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mooda_signin_total",
			Help: "Total number of sign-in attempts",
		},
	)

	// Local credential store hits during sign-in
	CredStoreHitCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mooda_credstore_signin_hits_total",
			Help: "Total number of sign-ins served from the local credential store",
		},
	)

	// Tenant provisioning counter by outcome
	ProvisioningCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mooda_tenant_provisioning_total",
			Help: "Total number of tenant provisioning runs by outcome",
		},
		[]string{"outcome"}, // outcome can be "real_user", "demo_mode", "failed"
	)

	// Contract evaluation counter
	ContractEvaluationCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mooda_contract_evaluations_total",
			Help: "Total number of contract lifecycle evaluations",
		},
	)

	// Contract extension counter
	ContractExtensionCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mooda_contract_extensions_total",
			Help: "Total number of contract extensions",
		},
	)

	// Tenant operation counter
	TenantOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mooda_tenant_operations_total",
			Help: "Total number of tenant operations",
		},
		[]string{"operation"}, // "create", "access", "list", "extend_contract", etc.
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mooda_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mooda_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"},
	)

	// Storefront order counter
	StorefrontOrderCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mooda_storefront_orders_total",
			Help: "Total number of orders placed through the public storefront",
		},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mooda_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mooda_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Active tenants
	ActiveTenantsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mooda_active_tenants",
			Help: "Number of currently active tenants",
		},
	)

	// Expired tenants, refreshed by the contract status job
	ExpiredTenantsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mooda_expired_tenants",
			Help: "Number of tenants with an expired contract",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mooda_info",
			Help: "Information about the service",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(SigninCounter)
	prometheus.MustRegister(CredStoreHitCounter)
	prometheus.MustRegister(ProvisioningCounter)
	prometheus.MustRegister(ContractEvaluationCounter)
	prometheus.MustRegister(ContractExtensionCounter)
	prometheus.MustRegister(TenantOperationCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(StorefrontOrderCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(ActiveTenantsGauge)
	prometheus.MustRegister(ExpiredTenantsGauge)
	prometheus.MustRegister(InfoGauge)

	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordTenantOperation records a tenant operation
func RecordTenantOperation(operation string) {
	TenantOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordProvisioning records a provisioning run outcome
func RecordProvisioning(outcome string) {
	ProvisioningCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}
