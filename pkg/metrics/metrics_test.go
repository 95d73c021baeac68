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

func TestObserveCycle(t *testing.T) {
	r := NewRecorder()

	r.ObserveCycle(true, 150*time.Millisecond)
	r.ObserveCycle(true, 10*time.Millisecond)
	r.ObserveCycle(false, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.cycles.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cycles.WithLabelValues("failure")))
}

func TestObservePlan(t *testing.T) {
	r := NewRecorder()

	r.ObservePlan(CycleStats{Longs: 4, Shorts: 2, Liquidations: 1, Skipped: 1, Excluded: 3, LongWeight: 0.5, ShortWeight: 0.5})

	assert.Equal(t, 4.0, testutil.ToFloat64(r.planSize.WithLabelValues("long")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.planSize.WithLabelValues("short")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.planSize.WithLabelValues("excluded")))
	assert.Equal(t, 0.5, testutil.ToFloat64(r.grossExposure.WithLabelValues("short")))
}

func TestHandler(t *testing.T) {
	r := NewRecorder()
	r.SinkError("redis")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `energyls_plan_sink_errors_total{sink="redis"} 1`))
}
