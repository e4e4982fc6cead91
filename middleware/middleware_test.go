package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func serve(e *echo.Echo, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":    "abc",
		"bearer  abc  ": "abc",
		"Basic abc":     "",
		"Bearer":        "",
		"":              "",
	}
	e := echo.New()
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		c := e.NewContext(req, httptest.NewRecorder())
		assert.Equal(t, want, BearerToken(c), "header %q", header)
	}
}

func TestRequireBearer(t *testing.T) {
	e := echo.New()
	e.GET("/api/thing", okHandler, RequireBearer())

	rec := serve(e, http.MethodGet, "/api/thing", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"Unauthenticated"`)

	rec = serve(e, http.MethodGet, "/api/thing", http.Header{"Authorization": {"Bearer t"}})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterBlocksAndRecovers(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter()
	limiter.now = func() time.Time { return now }

	e := echo.New()
	e.Use(limiter.RateLimit())
	e.POST("/api/reviews", okHandler)
	e.GET("/api/bookings", okHandler)
	e.GET("/health", okHandler)

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/api/reviews", nil).Code, "request %d", i)
	}
	rec := serve(e, http.MethodPost, "/api/reviews", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "retryAfter")

	// the block covers every route of the client, except health checks
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodGet, "/api/bookings", nil).Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/health", nil).Code)

	now = now.Add(6 * time.Minute)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/api/reviews", nil).Code)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Empty(t, limiter.blockedIPs)
}

func TestRateLimiterSeparatesClients(t *testing.T) {
	limiter := NewRateLimiter()
	frozen := time.Now()
	limiter.now = func() time.Time { return frozen }

	e := echo.New()
	e.Use(limiter.RateLimit())
	e.POST("/api/technicians/apply", okHandler)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/api/technicians/apply", nil).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodPost, "/api/technicians/apply", nil).Code)

	other := http.Header{"X-Real-Ip": {"198.51.100.7"}}
	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/api/technicians/apply", other).Code)
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeaders(SecurityConfig{AllowedDomains: []string{"https://app.example.com"}}))
	e.GET("/", okHandler)

	rec := serve(e, http.MethodGet, "/", nil)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "script-src 'self';")
	assert.Contains(t, csp, "connect-src 'self' https://app.example.com")
	assert.Contains(t, csp, "img-src 'self' data:")
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	e := echo.New()
	e.Use(CORS([]string{"https://app.example.com"}))
	e.GET("/", okHandler)

	rec := serve(e, http.MethodGet, "/", http.Header{"Origin": {"https://app.example.com"}})
	assert.Equal(t, "https://app.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	rec = serve(e, http.MethodGet, "/", http.Header{"Origin": {"https://evil.example.com"}})
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
