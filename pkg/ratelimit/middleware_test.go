package ratelimit

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denoland-id/denoid/pkg/observability"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (Decision, error) {
	return Decision{Allowed: true}, errors.New("connection refused")
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_LimitsPerClient(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	handler := Middleware(NewMemoryLimiter(Config{RequestsPerWindow: 2, Window: time.Minute}), nil, metrics)(okHandler())

	request := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/modules", nil)
		req.RemoteAddr = ip + ":5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := request("10.0.0.1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, first.Header().Get("X-RateLimit-Reset"))

	assert.Equal(t, http.StatusOK, request("10.0.0.1").Code)

	limited := request("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), "rate limit exceeded")

	assert.Equal(t, http.StatusOK, request("10.0.0.2").Code)

	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.RateLimitDecisionsTotal.WithLabelValues("allowed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RateLimitDecisionsTotal.WithLabelValues("limited")))
}

func TestMiddleware_SkipsPreflight(t *testing.T) {
	handler := Middleware(NewMemoryLimiter(Config{RequestsPerWindow: 1, Window: time.Minute}), nil, nil)(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodOptions, "/api/modules", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestMiddleware_FailsOpen(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLogger(observability.InfoLevel, &buf)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	handler := Middleware(failingLimiter{}, nil, metrics)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/modules", nil)
	req = req.WithContext(observability.WithLogger(req.Context(), logger))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), "rate limiter unavailable")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RateLimitDecisionsTotal.WithLabelValues("error")))
}

func TestMiddleware_IgnoresSpoofedForwardedFor(t *testing.T) {
	handler := Middleware(NewMemoryLimiter(Config{RequestsPerWindow: 1, Window: time.Minute}), nil, nil)(okHandler())

	codes := make([]int, 0, 3)
	for _, spoofed := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/modules", nil)
		req.RemoteAddr = "192.0.2.10:5000"
		req.Header.Set("X-Forwarded-For", spoofed)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestMiddleware_TrustedProxyRotation(t *testing.T) {
	ips, err := NewIPResolver([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	handler := Middleware(NewMemoryLimiter(Config{RequestsPerWindow: 1, Window: time.Minute}), ips, nil)(okHandler())

	request := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/modules", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, request("198.51.100.7"))
	// The client prepends a fake hop; the proxy appends the real address
	assert.Equal(t, http.StatusTooManyRequests, request("203.0.113.9, 198.51.100.7"))
	assert.Equal(t, http.StatusOK, request("198.51.100.8"))
}

func TestIPResolver_ClientIP(t *testing.T) {
	trusted, err := NewIPResolver([]string{"10.0.0.0/8", "192.0.2.50"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		resolver   *IPResolver
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", nil, "192.0.2.1:1234", nil, "192.0.2.1"},
		{"remote addr without port", nil, "192.0.2.1", nil, "192.0.2.1"},
		{"untrusted forwarded for", nil, "192.0.2.1:1", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "192.0.2.1"},
		{"untrusted real ip", trusted, "192.0.2.1:1", map[string]string{"X-Real-IP": "198.51.100.7"}, "192.0.2.1"},
		{"trusted forwarded for", trusted, "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "203.0.113.5"},
		{"rightmost untrusted hop", trusted, "10.0.0.1:1", map[string]string{"X-Forwarded-For": "1.1.1.1, 203.0.113.5, 10.0.0.2"}, "203.0.113.5"},
		{"trusted single address", trusted, "192.0.2.50:1", map[string]string{"X-Forwarded-For": "203.0.113.6"}, "203.0.113.6"},
		{"trusted real ip", trusted, "10.0.0.1:1", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"trusted without headers", trusted, "10.0.0.1:1", nil, "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, tt.resolver.ClientIP(req))
		})
	}
}

func TestNewIPResolver_Invalid(t *testing.T) {
	_, err := NewIPResolver([]string{"not-an-ip"})
	assert.Error(t, err)
	_, err = NewIPResolver([]string{"10.0.0.0/99"})
	assert.Error(t, err)
}
