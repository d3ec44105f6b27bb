package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("5.6.7.8"))

	now = now.Add(2 * time.Minute)
	assert.True(t, l.Allow("1.2.3.4"))
}

func TestLimiterOnlyCountsListedMethods(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	h := l.Middleware(http.MethodPost)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRecoveryReturns500(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
	assert.JSONEq(t, `{"status":"error","message":"Internal Server Error"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/shop", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Something went wrong")
}

func TestClientIP(t *testing.T) {
	require.NoError(t, TrustProxies())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	req.Header.Set("X-Real-Ip", "5.6.7.8")
	assert.Equal(t, "10.0.0.1", ClientIP(req))
}

func TestClientIPBehindTrustedProxy(t *testing.T) {
	require.NoError(t, TrustProxies("10.0.0.0/8", "192.168.1.1"))
	t.Cleanup(func() { _ = TrustProxies() })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set("X-Forwarded-For", "6.6.6.6, 1.2.3.4, 192.168.1.1")
	assert.Equal(t, "1.2.3.4", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "garbage, 10.0.0.7")
	assert.Equal(t, "10.0.0.7", ClientIP(req))

	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-Ip", "5.6.7.8")
	assert.Equal(t, "5.6.7.8", ClientIP(req))

	req.RemoteAddr = "8.8.8.8:5555"
	assert.Equal(t, "8.8.8.8", ClientIP(req))

	assert.Error(t, TrustProxies("not-an-ip"))
	assert.Error(t, TrustProxies("10.0.0.0/99"))
}

func TestLimiterIgnoresRotatingForwardedFor(t *testing.T) {
	require.NoError(t, TrustProxies())

	l := NewLimiter(2, time.Minute)
	h := l.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for _, fwd := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "9.9.9.9:4000"
		req.Header.Set("X-Forwarded-For", fwd)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}
