package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func request(remote, forwarded string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/query", nil)
	r.RemoteAddr = remote
	if forwarded != "" {
		r.Header.Set("X-Forwarded-For", forwarded)
	}
	return r
}

func TestMiddlewareLimitsPerAddress(t *testing.T) {
	l := New(Config{Limit: 0.001, Burst: 2}, nil)
	t.Cleanup(l.Stop)
	h := l.Middleware(ok)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, request("10.0.0.1:5000", ""))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request("10.0.0.1:5001", ""))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Burst"))

	// другой адрес - свой лимит
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, request("10.0.0.2:5000", ""))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestForwardedOnlyFromTrustedProxy(t *testing.T) {
	l := New(Config{Limit: 1, TrustedProxies: []string{"127.0.0.1"}}, nil)
	t.Cleanup(l.Stop)

	assert.Equal(t, "203.0.113.7", l.clientIP(request("127.0.0.1:80", "203.0.113.7, 127.0.0.1")))
	assert.Equal(t, "10.0.0.9", l.clientIP(request("10.0.0.9:80", "203.0.113.7")))
}

func TestDisabled(t *testing.T) {
	l := New(Config{}, nil)
	t.Cleanup(l.Stop)
	h := l.Middleware(ok)
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, request("10.0.0.1:1", ""))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}
