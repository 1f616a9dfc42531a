package services

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The default registry tolerates only one registration per metric name, so
// all assertions share a single recorder.
func TestPrometheusMetrics(t *testing.T) {
	recorder := NewPrometheusMetrics()
	pm, ok := recorder.(*PrometheusMetrics)
	require.True(t, ok)

	recorder.IncrementCounter("ledger.operations", map[string]string{
		"operation": "deposit",
		"status":    "success",
	})
	recorder.IncrementCounter("ledger.operations", map[string]string{
		"operation": "deposit",
		"status":    "success",
	})
	recorder.IncrementCounter("ledger.operations", map[string]string{
		"operation": "withdraw",
		"status":    "failed",
	})
	assert.Equal(t, float64(2), testutil.ToFloat64(pm.operationsTotal.WithLabelValues("deposit", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.operationsTotal.WithLabelValues("withdraw", "failed")))

	recorder.IncrementCounter("ledger.accounts_created", map[string]string{
		"account_type": "savings",
	})
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.accountsCreatedTotal.WithLabelValues("savings")))

	recorder.IncrementCounter("scheduler.executions", map[string]string{
		"kind":   "DEPOSIT",
		"status": "success",
	})
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.schedulerTotal.WithLabelValues("execution", "DEPOSIT", "success")))

	// Unknown names are ignored, not registered on the fly.
	recorder.IncrementCounter("unknown.counter", nil)

	recorder.RecordProcessingTime("ledger.deposit", 25*time.Millisecond)

	recorder.RecordGauge("ledger.accounts", 42, map[string]string{"state": "active"})
	assert.Equal(t, float64(42), testutil.ToFloat64(pm.accountsGauge.WithLabelValues("active")))

	recorder.RecordGauge("ledger.total_balance", 1234.56, nil)
	assert.Equal(t, 1234.56, testutil.ToFloat64(pm.balanceGauge))
}
