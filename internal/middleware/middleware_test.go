package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/neuromediai/site/internal/domain/detection"
	"github.com/neuromediai/site/internal/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }

func TestVisitorMiddleware_IssuesCookieOnce(t *testing.T) {
	var seen string
	h := VisitorMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetVisitorFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, VisitorCookie, cookies[0].Name)
	require.Equal(t, cookies[0].Value, seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, cookies[0].Value, seen)
}

func TestVisitorMiddleware_ReplacesForgedCookie(t *testing.T) {
	var seen string
	h := VisitorMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetVisitorFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: "<script>"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
}

func TestRateLimiter_RefillsWithClock(t *testing.T) {
	clk := clockwork.NewFakeClock()
	rl := NewRateLimiter(clk, 2, 1)

	require.True(t, rl.Allow("a"))
	require.True(t, rl.Allow("a"))
	require.False(t, rl.Allow("a"))
	require.True(t, rl.Allow("b"))

	clk.Advance(time.Second)
	require.True(t, rl.Allow("a"))
	require.False(t, rl.Allow("a"))
}

func TestRateLimiter_PruneIdle(t *testing.T) {
	clk := clockwork.NewFakeClock()
	rl := NewRateLimiter(clk, 5, 1)
	rl.Allow("old")
	clk.Advance(11 * time.Minute)
	rl.Allow("fresh")

	require.Equal(t, 1, rl.Prune(10*time.Minute))
	require.Equal(t, 1, rl.Len())
}

func TestRateLimiter_RunStopsWithContext(t *testing.T) {
	clk := clockwork.NewFakeClock()
	rl := NewRateLimiter(clk, 5, 1)
	rl.Allow("x")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rl.Run(ctx, time.Minute, 30*time.Second) }()

	require.NoError(t, clk.BlockUntilContext(ctx, 1))
	clk.Advance(time.Minute)
	require.Eventually(t, func() bool { return rl.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(clockwork.NewFakeClock(), 1, 1)
	h := RateLimitMiddleware(rl)(http.HandlerFunc(okHandler))

	do := func(path string) int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.1:5555"
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, do("/api/diseases"))
	assert.Equal(t, http.StatusTooManyRequests, do("/api/diseases"))
	assert.Equal(t, http.StatusNoContent, do("/healthz"))
	assert.Equal(t, http.StatusNoContent, do("/static/site.css"))
}

func TestHealthHandler(t *testing.T) {
	healthy := HealthHandler(map[string]HealthChecker{
		"previews": CheckFunc(func(context.Context) error { return nil }),
	})
	rec := httptest.NewRecorder()
	healthy(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	broken := HealthHandler(map[string]HealthChecker{
		"previews": CheckFunc(func(context.Context) error { return errors.New("bucket gone") }),
	})
	rec = httptest.NewRecorder()
	broken(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "bucket gone", body.Checks["previews"].Message)
}

func TestMetricsMiddleware_CountsOutcomes(t *testing.T) {
	m := metrics.Global()
	total, failed := m.RequestsTotal.Load(), m.RequestsFailed.Load()

	h := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, total+1, m.RequestsTotal.Load())
	assert.Equal(t, failed+1, m.RequestsFailed.Load())
	assert.Equal(t, int64(0), m.RequestsInProgress.Load())
}

func TestValidators(t *testing.T) {
	id := uuid.NewString()
	got, err := ValidateSessionID(id)
	require.NoError(t, err)
	assert.Equal(t, detection.SessionID(id), got)

	_, err = ValidateSessionID("")
	assert.Error(t, err)
	_, err = ValidateSessionID("../../etc/passwd")
	assert.Error(t, err)

	assert.NoError(t, ValidateDiseaseID("brain-tumor"))
	assert.ErrorIs(t, ValidateDiseaseID("spleen"), detection.ErrUnknownDisease)
	assert.Error(t, ValidatePreviewID("nope"))
}

func TestRateLimitMiddleware_CookielessClientsShareBucket(t *testing.T) {
	rl := NewRateLimiter(clockwork.NewFakeClock(), 1, 1)
	h := VisitorMiddleware(RateLimitMiddleware(rl)(http.HandlerFunc(okHandler)))

	limited := 0
	for range 100 {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/detections", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}

	assert.Equal(t, 99, limited)
	assert.Equal(t, 1, rl.Len())
}
