package services

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics implements MetricsRecorderInterface using Prometheus
type PrometheusMetrics struct {
	operationsTotal      *prometheus.CounterVec
	operationDuration    *prometheus.HistogramVec
	accountsCreatedTotal *prometheus.CounterVec
	schedulerTotal       *prometheus.CounterVec
	accountsGauge        *prometheus.GaugeVec
	balanceGauge         prometheus.Gauge
}

// NewPrometheusMetrics creates and registers the ledger metric set
func NewPrometheusMetrics() MetricsRecorderInterface {
	return &PrometheusMetrics{
		operationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_total",
				Help: "Total number of ledger operations by type and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_operation_duration_seconds",
				Help:    "Duration of ledger operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		accountsCreatedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_accounts_created_total",
				Help: "Total number of accounts created by type",
			},
			[]string{"account_type"},
		),
		schedulerTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_scheduler_events_total",
				Help: "Scheduled transaction lifecycle events by kind and status",
			},
			[]string{"event", "kind", "status"},
		),
		accountsGauge: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ledger_accounts",
				Help: "Current number of accounts by state",
			},
			[]string{"state"},
		),
		balanceGauge: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ledger_total_balance",
				Help: "Sum of all account balances",
			},
		),
	}
}

// IncrementCounter increments the counter matching the given name
func (pm *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	switch name {
	case "ledger.operations":
		pm.operationsTotal.WithLabelValues(tags["operation"], tags["status"]).Inc()
	case "ledger.accounts_created":
		pm.accountsCreatedTotal.WithLabelValues(tags["account_type"]).Inc()
	case "scheduler.scheduled":
		pm.schedulerTotal.WithLabelValues("scheduled", tags["kind"], "success").Inc()
	case "scheduler.cancelled":
		pm.schedulerTotal.WithLabelValues("cancelled", tags["kind"], "success").Inc()
	case "scheduler.executions":
		pm.schedulerTotal.WithLabelValues("execution", tags["kind"], tags["status"]).Inc()
	}
}

// RecordProcessingTime records operation durations. Names follow the
// "ledger.<operation>" convention used by the services.
func (pm *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	operation := strings.TrimPrefix(name, "ledger.")
	pm.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordGauge records gauge values
func (pm *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case "ledger.accounts":
		pm.accountsGauge.WithLabelValues(tags["state"]).Set(value)
	case "ledger.total_balance":
		pm.balanceGauge.Set(value)
	}
}
