package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveAction("SELL", "ok", 20*time.Millisecond)
	m.ObserveAction("SELL", "ok", 5*time.Millisecond)
	m.ObserveAction("SELL", "rejected", time.Millisecond)
	m.ObserveLockout(1)
	m.SetStale(1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.actions.WithLabelValues("SELL", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.actions.WithLabelValues("SELL", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lockouts.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.staleScopes))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveUnlock("locked")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `shop_ledger_lockout_attempts_total{outcome="locked"} 1`))
}

func TestMetrics_NilIsNoOp(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveAction("SELL", "ok", time.Second)
		m.ObservePersist("saved")
		m.SetStale(-1)
		m.ObserveUnlock("success")
		m.ObserveLockout(0)
		m.ObserveRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)
	})
}
