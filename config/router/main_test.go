package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/pkg/constants"
	"github.com/akeren/telecheck/pkg/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouterService(t *testing.T) *RouterService {
	t.Helper()

	return CreateRouterService(log.NewDiscardLogger(), nil, &RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
}

func mountEchoController(rs *RouterService, limiter ratelimit.RateLimiter) {
	rs.MountController(NewVersionedRESTController("EchoController", "v1", "/echo", func(rs *RouterService, c *RESTController) {
		rs.AddGetHandler(c, limiter, "/ip", func(ctx *RequestContext) *ServiceResult {
			return OKResult(ctx.ClientIP(), "ok")
		})

		rs.AddPostHandler(c, nil, "", func(ctx *RequestContext) *ServiceResult {
			var payload map[string]any
			if err := ctx.ShouldBindJSON(&payload); err != nil {
				return BadRequestResult("bad", nil)
			}
			return OKResult(payload, "ok")
		})
	}))
}

func serve(rs *RouterService, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestTrustedProxies(t *testing.T) {
	cases := []struct {
		name     string
		proxies  string
		expected string
	}{
		{name: "disabled by default", proxies: "", expected: "10.0.0.2"},
		{name: "star trusts forwarded for", proxies: "*", expected: "1.1.1.1"},
		{name: "listed proxy is trusted", proxies: "10.0.0.0/8", expected: "1.1.1.1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TRUSTED_PROXIES", tc.proxies)

			rs := newTestRouterService(t)
			mountEchoController(rs, nil)

			req := httptest.NewRequest(http.MethodGet, "/v1/echo/ip", nil)
			req.RemoteAddr = "10.0.0.2:1234"
			req.Header.Set("X-Forwarded-For", "1.1.1.1")

			w := serve(rs, req)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, tc.expected, decodeEnvelope(t, w)["data"])
		})
	}
}

func TestMaxBodySize_Returns413(t *testing.T) {
	t.Setenv("MAX_REQUEST_BODY_BYTES", "10")

	rs := newTestRouterService(t)
	mountEchoController(rs, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/echo", strings.NewReader(strings.Repeat("a", 50)))
	req.Header.Set("Content-Type", "application/json")

	w := serve(rs, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRouteLimiter_Throttles(t *testing.T) {
	rs := newTestRouterService(t)
	mountEchoController(rs, rs.RateLimiterFactory().PerMinute("echo-ip", 1))

	first := serve(rs, httptest.NewRequest(http.MethodGet, "/v1/echo/ip", nil))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := serve(rs, httptest.NewRequest(http.MethodGet, "/v1/echo/ip", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))

	// The POST route has no limiter of its own and uses the global budget.
	req := httptest.NewRequest(http.MethodPost, "/v1/echo", strings.NewReader(`{"a":1}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusOK, serve(rs, req).Code)
}

func TestControllerLimiter_AppliesToUnlimitedRoutes(t *testing.T) {
	rs := newTestRouterService(t)
	ctrl := NewRESTController("LimitedController", "/limited", func(rs *RouterService, c *RESTController) {
		rs.AddGetHandler(c, nil, "", func(ctx *RequestContext) *ServiceResult {
			return OKResult(nil, "ok")
		})
	})
	rs.LimitController(ctrl, rs.RateLimiterFactory().PerMinute("limited", 1))
	rs.MountController(ctrl)

	assert.Equal(t, http.StatusOK, serve(rs, httptest.NewRequest(http.MethodGet, "/limited", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(rs, httptest.NewRequest(http.MethodGet, "/limited", nil)).Code)
}

func TestCORS_ExposesSessionHeader(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGIN", "https://app.telecheck.test, https://admin.telecheck.test")

	rs := newTestRouterService(t)
	mountEchoController(rs, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/echo/ip", nil)
	req.Header.Set("Origin", "https://app.telecheck.test")
	w := serve(rs, req)

	assert.Equal(t, "https://app.telecheck.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), constants.SessionIDHeader)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), constants.SessionIDHeader)

	req = httptest.NewRequest(http.MethodGet, "/v1/echo/ip", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = serve(rs, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute_ReturnsEnvelope(t *testing.T) {
	rs := newTestRouterService(t)
	mountEchoController(rs, nil)

	w := serve(rs, httptest.NewRequest(http.MethodGet, "/v1/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, float64(http.StatusNotFound), body["code"])
	assert.Equal(t, "Route not found", body["message"])
}

func TestRegister_DuplicateRoutePanics(t *testing.T) {
	rs := newTestRouterService(t)
	mountEchoController(rs, nil)

	assert.Panics(t, func() {
		rs.MountController(NewVersionedRESTController("Duplicate", "v1", "echo", func(rs *RouterService, c *RESTController) {
			rs.AddPostHandler(c, nil, "/", func(ctx *RequestContext) *ServiceResult { return nil })
		}))
	})
}

func TestJoinRoute(t *testing.T) {
	assert.Equal(t, "/", joinRoute("/", ""))
	assert.Equal(t, "/health", joinRoute("/", "health"))
	assert.Equal(t, "/v1/access/roster/:action", joinRoute("v1", "/access/", "/roster/:action"))
	assert.Equal(t, "/v1/checks", joinRoute("/v1//checks/", ""))
}
