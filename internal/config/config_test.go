package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// These tests mutate process-wide env vars via t.Setenv, so none of them
// may run in parallel.

func TestEnvInt(t *testing.T) {
	t.Setenv("X_INT", "")
	require.Equal(t, 15, envInt("X_INT", 15))

	t.Setenv("X_INT", "42")
	require.Equal(t, 42, envInt("X_INT", 15))

	t.Setenv("X_INT", "not-a-number")
	require.Equal(t, 15, envInt("X_INT", 15))
}

func TestEnvBool(t *testing.T) {
	t.Setenv("X_BOOL", "")
	require.False(t, envBool("X_BOOL", false))
	require.True(t, envBool("X_BOOL", true))

	for _, v := range []string{"1", "true", "TRUE", "yes", "on"} {
		t.Setenv("X_BOOL", v)
		require.True(t, envBool("X_BOOL", false), v)
	}
	for _, v := range []string{"0", "false", "FALSE", "no", "off"} {
		t.Setenv("X_BOOL", v)
		require.False(t, envBool("X_BOOL", true), v)
	}

	t.Setenv("X_BOOL", "maybe")
	require.True(t, envBool("X_BOOL", true))
}

func TestEnvDur(t *testing.T) {
	t.Setenv("X_DUR", "")
	require.Equal(t, time.Second, envDur("X_DUR", time.Second))

	t.Setenv("X_DUR", "250ms")
	require.Equal(t, 250*time.Millisecond, envDur("X_DUR", time.Second))

	t.Setenv("X_DUR", "soon")
	require.Equal(t, time.Second, envDur("X_DUR", time.Second))
}

func TestLoadRateLimitConfig_Defaults(t *testing.T) {
	for _, k := range []string{
		"RATE_LIMIT_ENABLED", "RATE_LIMIT_CAPACITY", "RATE_LIMIT_REFILL_TOKENS",
		"RATE_LIMIT_REFILL_INTERVAL", "RATE_LIMIT_TTL", "RATE_LIMIT_KEY_STRATEGY",
		"RATE_LIMIT_PREFIX", "RATE_LIMIT_DEBUG",
	} {
		t.Setenv(k, "")
	}

	cfg := LoadRateLimitConfig()
	require.True(t, cfg.Enabled)
	require.Equal(t, 60, cfg.Capacity)
	require.Equal(t, 1, cfg.RefillTokens)
	require.Equal(t, time.Second, cfg.RefillInterval)
	require.Equal(t, "ip_user_route", cfg.KeyStrategy)
	require.Equal(t, "rl", cfg.Prefix)
}

func TestLoadRateLimitConfig_ClampsBadValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "-5")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	require.Equal(t, 1, cfg.Capacity)
	require.Equal(t, 1, cfg.RefillTokens)
	// TTL is stretched to cover several refill intervals.
	require.Equal(t, 10*time.Second, cfg.TTL)
}
