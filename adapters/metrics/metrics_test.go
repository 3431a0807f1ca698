package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewWithRegistry(reg)

	c.AccountsCreated.Inc()
	c.AccountsCreated.Inc()
	c.UsageLogsAppended.Inc()
	c.RequestsTotal.WithLabelValues("GET", "/accounts", "2xx").Inc()
	c.AnalyticsQueries.WithLabelValues("anomalies").Inc()

	if got := testutil.ToFloat64(c.AccountsCreated); got != 2 {
		t.Errorf("AccountsCreated = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.UsageLogsAppended); got != 1 {
		t.Errorf("UsageLogsAppended = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.RequestsTotal.WithLabelValues("GET", "/accounts", "2xx")); got != 1 {
		t.Errorf("RequestsTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.AnalyticsQueries.WithLabelValues("anomalies")); got != 1 {
		t.Errorf("AnalyticsQueries = %v, want 1", got)
	}
}

func TestSeparateRegistries(t *testing.T) {
	// Two collectors on distinct registries must not collide.
	a := NewWithRegistry(prometheus.NewRegistry())
	b := NewWithRegistry(prometheus.NewRegistry())

	a.AccountsCreated.Inc()
	if got := testutil.ToFloat64(b.AccountsCreated); got != 0 {
		t.Errorf("collectors share state: b.AccountsCreated = %v", got)
	}
}
