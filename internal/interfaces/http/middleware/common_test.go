package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func corsRouter(cfg CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.GET("/api/v1/events", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func serveWithOrigin(router *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1/events", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS_EmptyWhitelistDefault(t *testing.T) {
	router := gin.New()
	router.Use(CORS())
	router.GET("/api/v1/events", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	t.Run("cross-origin request gets no CORS headers", func(t *testing.T) {
		w := serveWithOrigin(router, "GET", "http://malicious.example")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("same-origin request passes", func(t *testing.T) {
		w := serveWithOrigin(router, "GET", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("preflight still answers 204", func(t *testing.T) {
		w := serveWithOrigin(router, "OPTIONS", "http://somewhere.example")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSWithConfig_OriginMatching(t *testing.T) {
	router := corsRouter(CORSConfig{
		AllowOrigins:     []string{"https://farmeet.jp", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	})

	t.Run("whitelisted origins echoed back", func(t *testing.T) {
		for _, origin := range []string{"https://farmeet.jp", "http://localhost:3000"} {
			w := serveWithOrigin(router, "GET", origin)
			assert.Equal(t, origin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		}
	})

	t.Run("unknown origin gets nothing", func(t *testing.T) {
		w := serveWithOrigin(router, "GET", "http://not-allowed.example")
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestCORSWithConfig_Wildcard(t *testing.T) {
	// Credentials must never be combined with a wildcard origin, even when
	// configured.
	router := corsRouter(CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	})

	w := serveWithOrigin(router, "GET", "http://any-origin.example")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSWithConfig_HeaderValues(t *testing.T) {
	router := corsRouter(CORSConfig{
		AllowOrigins:  []string{"http://localhost:3000"},
		AllowMethods:  []string{"GET"},
		AllowHeaders:  []string{"Content-Type"},
		ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	})

	w := serveWithOrigin(router, "GET", "http://localhost:3000")
	assert.Equal(t, "X-Request-ID, X-RateLimit-Remaining", w.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORSWithConfig_Preflight(t *testing.T) {
	router := corsRouter(CORSConfig{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{"GET", "POST", "PUT"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	})

	t.Run("allowed origin", func(t *testing.T) {
		w := serveWithOrigin(router, "OPTIONS", "http://localhost:3000")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, PUT", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("disallowed origin still answers 204 without headers", func(t *testing.T) {
		w := serveWithOrigin(router, "OPTIONS", "http://not-allowed.example")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()

	assert.Empty(t, cfg.AllowOrigins, "origins must be opt-in")
	assert.Contains(t, cfg.AllowMethods, "GET")
	assert.Contains(t, cfg.AllowMethods, "POST")
	assert.Contains(t, cfg.AllowHeaders, "Content-Type")
	assert.Contains(t, cfg.AllowHeaders, "Authorization")
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, 12*time.Hour, cfg.MaxAge)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/api/v1/events", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	t.Run("generates request ID", func(t *testing.T) {
		w := serveWithOrigin(router, "GET", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())
	})

	t.Run("honors provided request ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/events", nil)
		req.Header.Set("X-Request-ID", "req-from-gateway")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-from-gateway", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "req-from-gateway", w.Body.String())
	})
}

func TestGenerateRequestID(t *testing.T) {
	id1 := generateRequestID()
	id2 := generateRequestID()

	assert.NotEqual(t, id1, id2)
	assert.Len(t, id1, 32) // 16 bytes hex encoded
}

func secureRouter(cfg SecurityConfig) *gin.Engine {
	router := gin.New()
	router.Use(SecureWithConfig(cfg))
	router.GET("/api/v1/events", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestSecure_Defaults(t *testing.T) {
	router := gin.New()
	router.Use(Secure())
	router.GET("/api/v1/events", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := serveWithOrigin(router, "GET", "")

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))

	csp := w.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "default-src 'self'")
	assert.Contains(t, csp, "frame-ancestors 'none'")

	// HSTS stays off until the deployment serves HTTPS.
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	permPolicy := w.Header().Get("Permissions-Policy")
	assert.Contains(t, permPolicy, "camera=()")
	assert.Contains(t, permPolicy, "microphone=()")
}

func TestSecureWithConfig_HSTS(t *testing.T) {
	cases := []struct {
		name string
		cfg  SecurityConfig
		want string
	}{
		{
			"full flags",
			SecurityConfig{HSTSEnabled: true, HSTSMaxAge: 63072000, HSTSIncludeSubdomains: true, HSTSPreload: true},
			"max-age=63072000; includeSubDomains; preload",
		},
		{
			"max-age only",
			SecurityConfig{HSTSEnabled: true, HSTSMaxAge: 31536000},
			"max-age=31536000",
		},
		{
			"disabled",
			SecurityConfig{HSTSEnabled: false, HSTSMaxAge: 31536000},
			"",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serveWithOrigin(secureRouter(tc.cfg), "GET", "")
			assert.Equal(t, tc.want, w.Header().Get("Strict-Transport-Security"))
		})
	}
}

func TestSecureWithConfig_CustomDirectives(t *testing.T) {
	w := serveWithOrigin(secureRouter(SecurityConfig{
		CSPEnabled:                 true,
		CSPDirective:               "default-src 'none'; script-src 'self'",
		PermissionsPolicyEnabled:   true,
		PermissionsPolicyDirective: "geolocation=(self), microphone=()",
	}), "GET", "")

	assert.Equal(t, "default-src 'none'; script-src 'self'", w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "geolocation=(self), microphone=()", w.Header().Get("Permissions-Policy"))
}

func TestSecureWithConfig_AllOptionalHeadersDisabled(t *testing.T) {
	w := serveWithOrigin(secureRouter(SecurityConfig{}), "GET", "")

	// The always-on headers survive.
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	assert.Empty(t, w.Header().Get("Content-Security-Policy"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
	assert.Empty(t, w.Header().Get("Permissions-Policy"))
}

func TestDefaultSecurityConfig(t *testing.T) {
	cfg := DefaultSecurityConfig()

	assert.False(t, cfg.HSTSEnabled)
	assert.Equal(t, 31536000, cfg.HSTSMaxAge)
	assert.True(t, cfg.HSTSIncludeSubdomains)
	assert.False(t, cfg.HSTSPreload)

	assert.True(t, cfg.CSPEnabled)
	assert.Contains(t, cfg.CSPDirective, "default-src 'self'")

	assert.True(t, cfg.PermissionsPolicyEnabled)
	assert.Contains(t, cfg.PermissionsPolicyDirective, "camera=()")
}

func TestTimeout(t *testing.T) {
	router := gin.New()
	router.Use(Timeout(30 * time.Second))
	router.GET("/api/v1/events", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := serveWithOrigin(router, "GET", "")
	assert.Equal(t, "30s", w.Header().Get("X-Request-Timeout"))
}
