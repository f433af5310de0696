package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/aarwitz/fitlink-backend/internal/config"
)

func newLimiterContext(t *testing.T) echo.Context {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/feed", nil)
	req.RemoteAddr = "203.0.113.7:54321"
	c := echo.New().NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/feed")
	return c
}

func TestBuildRateKey_AuthenticatedUser(t *testing.T) {
	t.Parallel()
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}

	// The limiter sits after the JWT middleware on authenticated groups,
	// so the user id set by it must end up in the bucket key.
	c := newLimiterContext(t)
	c.Set("user_id", uint64(42))
	key := buildRateKey(cfg, c)
	require.Contains(t, key, ":user:42:")
	require.Contains(t, key, "GET /v1/feed")
}

func TestBuildRateKey_AnonymousFallsBackToSharedBucket(t *testing.T) {
	t.Parallel()
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}

	key := buildRateKey(cfg, newLimiterContext(t))
	require.Contains(t, key, ":user:anon:")
}

func TestBuildRateKey_Strategies(t *testing.T) {
	t.Parallel()

	c := newLimiterContext(t)
	c.Set("user_id", uint64(7))

	userKey := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c)
	require.Equal(t, "rl:user:7", userKey)

	ipKey := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}, c)
	require.Equal(t, "rl:ip:203.0.113.7", ipKey)

	routeKey := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "route"}, c)
	require.Equal(t, "rl:route:GET /v1/feed", routeKey)
}
