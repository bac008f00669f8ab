package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/autoline-panel/shop-api/internal/config"
	"github.com/autoline-panel/shop-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
)

func serveSecurity(cfg *config.SecurityConfig, path string) *httptest.ResponseRecorder {
	h := middleware.SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSecurityHeaders_DefaultConfig(t *testing.T) {
	cfg := &config.SecurityConfig{
		ContentTypeNosniff:    true,
		FrameOptions:          "DENY",
		XSSProtection:         "1; mode=block",
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy:     "geolocation=(), microphone=(), camera=()",
	}

	w := serveSecurity(cfg, "/api/quotes")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "default-src 'self'", w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Equal(t, "geolocation=(), microphone=(), camera=()", w.Header().Get("Permissions-Policy"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
	assert.Empty(t, w.Header().Get("Cache-Control"))
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.SecurityConfig
		want string
	}{
		{"max age only", config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: 31536000}, "max-age=31536000"},
		{"with subdomains", config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: 3600, HSTSIncludeSubdomains: true}, "max-age=3600; includeSubDomains"},
		{"with preload", config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: 63072000, HSTSIncludeSubdomains: true, HSTSPreload: true}, "max-age=63072000; includeSubDomains; preload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			w := serveSecurity(&cfg, "/health")
			assert.Equal(t, tt.want, w.Header().Get("Strict-Transport-Security"))
		})
	}
}

func TestSecurityHeaders_AdminResponsesAreNotCached(t *testing.T) {
	w := serveSecurity(&config.SecurityConfig{}, "/api/admin/invoices")
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestSecurityHeaders_SwaggerGetsItsOwnCSP(t *testing.T) {
	cfg := &config.SecurityConfig{ContentSecurityPolicy: "default-src 'none'"}

	w := serveSecurity(cfg, "/swagger/index.html")
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "'unsafe-inline'")

	w = serveSecurity(cfg, "/api/quotes")
	assert.Equal(t, "default-src 'none'", w.Header().Get("Content-Security-Policy"))
}

func TestSecurityHeaders_MinimalConfig(t *testing.T) {
	w := serveSecurity(&config.SecurityConfig{}, "/api/quotes")

	assert.Empty(t, w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("X-Frame-Options"))
	assert.Empty(t, w.Header().Get("Content-Security-Policy"))
}
