// Package metrics provides Prometheus metrics collection.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for the service.
type Collector struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Store metrics
	AccountsCreated   prometheus.Counter
	AccountsDeleted   prometheus.Counter
	UsageLogsAppended prometheus.Counter
	UsageLogsRemoved  prometheus.Counter

	// Analytics metrics
	AnalyticsQueries *prometheus.CounterVec
}

// New creates a new metrics collector registered on the default registry.
func New() *Collector {
	return newCollector(promauto.With(prometheus.DefaultRegisterer))
}

// NewWithRegistry creates a collector registered on a custom registry
// (used in tests to avoid duplicate registration).
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	return newCollector(promauto.With(reg))
}

func newCollector(factory promauto.Factory) *Collector {
	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "saasmon",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "saasmon",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		AccountsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "saasmon",
				Name:      "accounts_created_total",
				Help:      "Total number of accounts created",
			},
		),
		AccountsDeleted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "saasmon",
				Name:      "accounts_deleted_total",
				Help:      "Total number of accounts deleted",
			},
		),
		UsageLogsAppended: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "saasmon",
				Name:      "usage_logs_appended_total",
				Help:      "Total number of usage logs appended",
			},
		),
		UsageLogsRemoved: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "saasmon",
				Name:      "usage_logs_removed_total",
				Help:      "Total number of usage log removal requests",
			},
		),
		AnalyticsQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "saasmon",
				Name:      "analytics_queries_total",
				Help:      "Total number of analytics queries served",
			},
			[]string{"query"},
		),
	}
}
