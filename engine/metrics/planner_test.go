package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilPlannerIsNoop(t *testing.T) {
	var m *Planner
	assert.NotPanics(t, func() {
		m.ObservePlan("sampled", time.Millisecond, 10)
		m.Sample(SampleExtended)
		m.Steer(SteerArrived)
		m.Steal(StealCopied)
	})
}

func TestPlannerCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPlanner(reg)

	m.Sample(SampleExtended)
	m.Sample(SampleExtended)
	m.Sample(SampleNoAnchor)
	m.Steer(SteerCollided)
	m.Steal(StealCycleRejected)
	m.ObservePlan("straight", 2*time.Millisecond, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Samples.WithLabelValues(SampleExtended)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Samples.WithLabelValues(SampleNoAnchor)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Steers.WithLabelValues(SteerCollided)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Steals.WithLabelValues(StealCycleRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Plans.WithLabelValues("straight")))

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rrt_samples_total")
	assert.Contains(t, rec.Body.String(), "rrt_plan_duration_seconds_bucket")
}
