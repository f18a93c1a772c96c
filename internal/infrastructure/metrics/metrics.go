package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for background processing.
// HTTP request metrics are registered separately by the router middleware.
type Metrics struct {
	// Scheduler metrics
	ScheduledExecuted prometheus.Counter
	ScheduledFailed   prometheus.Counter
	CatchUpRuns       prometheus.Counter
	CatchUpDuration   prometheus.Histogram

	// Exchange rate metrics
	RateRefreshes *prometheus.CounterVec
	RatesUpdated  prometheus.Counter

	// Database metrics
	DBConnections prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		ScheduledExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pennyledger_scheduled_executed_total",
			Help: "Total number of scheduled transactions executed",
		}),
		ScheduledFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pennyledger_scheduled_failed_total",
			Help: "Total number of scheduled transactions that failed execution",
		}),
		CatchUpRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pennyledger_catchup_runs_total",
			Help: "Total number of catch-up recovery runs",
		}),
		CatchUpDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pennyledger_catchup_duration_seconds",
			Help:    "Duration of catch-up recovery runs",
			Buckets: prometheus.DefBuckets,
		}),

		RateRefreshes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pennyledger_rate_refreshes_total",
				Help: "Total number of rate refresh attempts by outcome",
			},
			[]string{"status"},
		),
		RatesUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pennyledger_rates_updated_total",
			Help: "Total number of rates written by refreshes",
		}),

		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pennyledger_db_connections",
			Help: "Current number of database connections",
		}),
	}
}
