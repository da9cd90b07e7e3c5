package metrics_test

import (
	"testing"

	"github.com/2beens/formlens/internal/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_RegistersOnGivenRegistry(t *testing.T) {
	m, reg := metrics.NewTestManagerAndRegistry()

	m.CounterAnalyzedFrames.WithLabelValues("squat", metrics.OutcomeEvaluated).Inc()
	m.CounterAnalyzedFrames.WithLabelValues("squat", metrics.OutcomeEvaluated).Inc()
	m.CounterAnalyzedFrames.WithLabelValues("", metrics.OutcomeNoExercise).Inc()
	m.CounterRepetitions.WithLabelValues("pushup").Add(3)
	m.CounterRateLimitedRequests.Inc()
	m.HistogramFrameAccuracy.WithLabelValues("squat").Observe(87.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.CounterAnalyzedFrames.WithLabelValues("squat", metrics.OutcomeEvaluated),
	))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CounterRepetitions.WithLabelValues("pushup")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterRateLimitedRequests))

	count, err := testutil.GatherAndCount(reg, "formlens_test_server_analyzed_frames")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// a second manager on its own registry does not clash
	other := metrics.NewManager("formlens", "test_server", prometheus.NewRegistry())
	assert.Zero(t, testutil.ToFloat64(other.CounterRateLimitedRequests))
}

func TestSetupPrometheus(t *testing.T) {
	extra := prometheus.NewCounter(prometheus.CounterOpts{Name: "extra_collector_total"})
	reg := metrics.SetupPrometheus(extra)
	extra.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "extra_collector_total")
	assert.Contains(t, names, "go_goroutines")
}
