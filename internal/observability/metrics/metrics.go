package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Common label names for consistent metrics
const (
	LabelRule       = "rule"
	LabelReason     = "reason"
	LabelStatus     = "status"
	LabelMethod     = "method"
	LabelRoute      = "route"
	LabelCollection = "collection"
	LabelOperation  = "operation"
	LabelOutcome    = "outcome"
)

var (
	// RequestsTotal counts all HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyhub_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelRoute, LabelStatus},
	)

	// RequestDuration tracks the duration of HTTP requests
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyhub_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelRoute},
	)

	// AuthenticationTotal counts identity resolutions by outcome
	AuthenticationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyhub_authentication_total",
			Help: "Total number of identity resolutions",
		},
		[]string{LabelReason},
	)

	// AuthorizationTotal counts gate decisions by rule and reason
	AuthorizationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyhub_authorization_total",
			Help: "Total number of authorization decisions",
		},
		[]string{LabelRule, LabelReason},
	)

	// StoreOperationsTotal counts persistence calls
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyhub_store_operations_total",
			Help: "Total number of document store operations",
		},
		[]string{LabelCollection, LabelOperation, LabelOutcome},
	)
)

// Collector provides methods for recording metrics
type Collector struct{}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{}
}

// RecordRequest records metrics for an HTTP request
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAuthentication records the outcome of resolving a bearer credential
func (c *Collector) RecordAuthentication(reason string) {
	AuthenticationTotal.WithLabelValues(reason).Inc()
}

// RecordAuthorization records a gate decision
func (c *Collector) RecordAuthorization(rule, reason string) {
	AuthorizationTotal.WithLabelValues(rule, reason).Inc()
}

// RecordStoreOperation records a document store call
func (c *Collector) RecordStoreOperation(collection, operation, outcome string) {
	StoreOperationsTotal.WithLabelValues(collection, operation, outcome).Inc()
}

// Handler returns an HTTP handler for exposing metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
