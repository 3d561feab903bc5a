package security

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"expensetracker/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Format: "text", Output: io.Discard})
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	t.Run("plain http", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "form-action 'self'")
		assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	})

	t.Run("tls adds hsts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.TLS = &tls.ConnectionState{}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
	})
}

func TestDetector_DetectSuspiciousRequest(t *testing.T) {
	d := NewDetector(testLogger())

	tests := []struct {
		name      string
		method    string
		target    string
		userAgent string
		want      bool
	}{
		{name: "normal page", method: http.MethodGet, target: "/expenses/1", userAgent: "Mozilla/5.0", want: false},
		{name: "form post", method: http.MethodPost, target: "/expenses/new-expense", userAgent: "Mozilla/5.0", want: false},
		{name: "dotenv probe", method: http.MethodGet, target: "/.env", want: true},
		{name: "traversal in query", method: http.MethodGet, target: "/?f=../../etc/passwd", want: true},
		{name: "scanner agent", method: http.MethodGet, target: "/", userAgent: "sqlmap/1.7", want: true},
		{name: "trace method", method: "TRACE", target: "/", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			req.Header.Set("User-Agent", tt.userAgent)
			assert.Equal(t, tt.want, d.DetectSuspiciousRequest(req))
		})
	}
}

func TestDetector_MiddlewareRejectsUnusualMethods(t *testing.T) {
	d := NewDetector(testLogger())
	called := false
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("TRACE", "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.False(t, called)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.git/config", nil))
	assert.True(t, called, "suspicious GETs are logged, not blocked")
	assert.Equal(t, int64(2), d.SuspiciousRequests())
}

func TestDetector_ExtractClientIP(t *testing.T) {
	d := NewDetector(testLogger())

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		want       string
	}{
		{name: "direct client", remoteAddr: "203.0.113.5:4000", want: "203.0.113.5"},
		{name: "untrusted forwarder ignored", remoteAddr: "203.0.113.5:4000", xff: "198.51.100.1", want: "203.0.113.5"},
		{name: "trusted proxy xff", remoteAddr: "10.0.0.2:80", xff: "198.51.100.1, 10.0.0.2", want: "198.51.100.1"},
		{name: "trusted proxy x-real-ip", remoteAddr: "127.0.0.1:80", realIP: "198.51.100.9", want: "198.51.100.9"},
		{name: "trusted proxy garbage xff", remoteAddr: "192.168.1.1:80", xff: "not-an-ip", want: "192.168.1.1"},
		{name: "unparseable remote", remoteAddr: "pipe", want: "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, d.ExtractClientIP(req))
		})
	}
}

func TestDetector_AddTrustedProxy(t *testing.T) {
	d := NewDetector(testLogger())
	assert.Error(t, d.AddTrustedProxy("nope"))
	assert.NoError(t, d.AddTrustedProxy("203.0.113.0/24"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.5:4000"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	assert.Equal(t, "198.51.100.1", d.ExtractClientIP(req))
}
