package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/2beens/formlens/internal/analysis"
	"github.com/2beens/formlens/internal/config"
	"github.com/2beens/formlens/internal/exercises"
	"github.com/2beens/formlens/internal/formcheck"
	"github.com/2beens/formlens/internal/pose/posetest"
	"github.com/2beens/formlens/internal/sessions"
	"github.com/2beens/formlens/internal/telemetry/metrics"

	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

// countingLimiter allows the first limit requests of every key.
type countingLimiter struct {
	seen map[string]int
}

func (l *countingLimiter) Allow(_ context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	l.seen[key]++
	res := &redis_rate.Result{Limit: limit, RetryAfter: 30 * time.Second}
	if l.seen[key] <= limit.Rate {
		res.Allowed = 1
	}
	return res, nil
}

func newTestServer(t *testing.T, rateLimit int) (*Server, *countingLimiter) {
	t.Helper()

	catalog, err := exercises.DefaultCatalog()
	require.NoError(t, err)

	engine := formcheck.NewEngine(catalog)
	metricsManager := metrics.NewTestManager()
	limiter := &countingLimiter{seen: map[string]int{}}
	return &Server{
		versionInfo: "test-version",
		config: &config.Config{
			AnalyzeRateLimit: rateLimit,
			AllowedOrigins:   []string{"http://localhost:5173"},
		},
		rateLimiter: limiter,
		engine:      engine,
		analysisService: analysis.NewService(analysis.NewServiceParams{
			Engine:         engine,
			Store:          sessions.NewMemoryStore(1, time.Minute),
			MetricsManager: metricsManager,
		}),
		metricsManager: metricsManager,
	}, limiter
}

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("User-Agent", "test-agent")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestServer_Routes(t *testing.T) {
	server, _ := newTestServer(t, 0)
	r := server.routerSetup()

	rr := serve(t, r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(t, r, http.MethodGet, "/version", "")
	assert.Equal(t, "test-version", rr.Body.String())

	rr = serve(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(t, r, http.MethodGet, "/exercises", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "shoulder_press")

	rr = serve(t, r, http.MethodGet, "/nothing-here", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// history is off without a database
	rr = serve(t, r, http.MethodGet, "/workouts/sets/page/1/size/10", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assert.Equal(t, 4.0, testutil.ToFloat64(
		server.metricsManager.CounterRequests.WithLabelValues(http.MethodGet, "200"),
	))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		server.metricsManager.CounterRequests.WithLabelValues(http.MethodGet, "404"),
	))
}

func TestServer_Cors(t *testing.T) {
	server, _ := newTestServer(t, 0)
	r := server.routerSetup()

	req := httptest.NewRequest(http.MethodGet, "/exercises", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/sessions/s-1/analyze", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/exercises", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestServer_AnalyzeFlow(t *testing.T) {
	server, _ := newTestServer(t, 0)
	r := server.routerSetup()

	rr := serve(t, r, http.MethodPost, "/sessions/s-1/exercise", `{"exercise": "squat"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "exercise reset to squat")

	for _, angle := range []float64{90, 170} {
		body, err := json.Marshal(analysis.AnalyzeRequest{Landmarks: posetest.Legs(angle)})
		require.NoError(t, err)
		rr = serve(t, r, http.MethodPost, "/sessions/s-1/analyze", string(body))
		require.Equal(t, http.StatusOK, rr.Code)
	}

	var res formcheck.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Reps)

	// no history configured: the session just goes away
	rr = serve(t, r, http.MethodDelete, "/sessions/s-1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var endResp analysis.EndSessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &endResp))
	assert.Nil(t, endResp.Set)

	rr = serve(t, r, http.MethodGet, "/sessions/s-1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServer_AnalyzeRateLimit(t *testing.T) {
	server, limiter := newTestServer(t, 2)
	r := server.routerSetup()

	body, err := json.Marshal(analysis.AnalyzeRequest{Landmarks: posetest.Legs(90), Exercise: "squat"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		rr := serve(t, r, http.MethodPost, "/sessions/s-1/analyze", string(body))
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr := serve(t, r, http.MethodPost, "/sessions/s-1/analyze", string(body))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, rr.Body.String(), "retry after 30.00 seconds")

	// other sessions have their own budget
	rr = serve(t, r, http.MethodPost, "/sessions/s-2/analyze", string(body))
	assert.Equal(t, http.StatusOK, rr.Code)

	// other routes are not limited
	for i := 0; i < 5; i++ {
		rr = serve(t, r, http.MethodGet, "/exercises", "")
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	assert.Equal(t, map[string]int{"analyze:s-1": 3, "analyze:s-2": 1}, limiter.seen)
	assert.Equal(t, 1.0, testutil.ToFloat64(server.metricsManager.CounterRateLimitedRequests))
}

func TestServer_ConnStateMetrics(t *testing.T) {
	server, _ := newTestServer(t, 0)

	server.connStateMetrics(nil, http.StateNew)
	server.connStateMetrics(nil, http.StateNew)
	server.connStateMetrics(nil, http.StateActive)
	server.connStateMetrics(nil, http.StateClosed)

	assert.Equal(t, 1.0, testutil.ToFloat64(server.metricsManager.GaugeRequests))
}
