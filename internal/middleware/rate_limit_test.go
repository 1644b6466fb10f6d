package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	pkghttp "github.com/mjdocs/gateway/pkg/http"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitByIP(t *testing.T) {
	handler := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 3}, &pkghttp.IPConfig{})(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/api/documents/signed-url", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "request %d within the cap", i+1)
	}

	req := httptest.NewRequest("POST", "/api/documents/signed-url", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Rate limit exceeded"}`, w.Body.String())

	// A different client is unaffected.
	req = httptest.NewRequest("POST", "/api/documents/signed-url", nil)
	req.RemoteAddr = "10.0.0.2:12345"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitByIP_ForgedForwardingHeadersShareOneBucket(t *testing.T) {
	handler := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 2}, &pkghttp.IPConfig{})(okHandler())

	// Same socket address, rotating X-Forwarded-For: the forged header must
	// not mint fresh rate-limit identities.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/api/admin/login", nil)
		req.RemoteAddr = "203.0.113.50:4567"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("1.2.3.%d", i))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	req := httptest.NewRequest("POST", "/api/admin/login", nil)
	req.RemoteAddr = "203.0.113.50:4567"
	req.Header.Set("X-Forwarded-For", "9.9.9.9")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
