package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightbooking/internal/cache"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8000/api/", cfg.GatewayBaseURL)
	assert.Equal(t, 10*time.Second, cfg.GatewayTimeout)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, cache.DefaultRedisConfig(), cfg.Redis)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "UTC", cfg.FormTimezone)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GATEWAY_TIMEOUT", "3s")
	t.Setenv("GATEWAY_RPS", "2.5")
	t.Setenv("GATEWAY_BURST", "4")
	t.Setenv("CACHE_ENABLED", "yes")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SESSION_TTL", "90")
	t.Setenv("FORM_TIMEZONE", "America/Bogota")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, 2.5, cfg.GatewayRPS)
	assert.Equal(t, 4, cfg.GatewayBurst)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, "cache.internal", cfg.Redis.Host)
	assert.Equal(t, "6379", cfg.Redis.Port)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 90*time.Second, cfg.SessionTTL)
	assert.Equal(t, "America/Bogota", cfg.FormTimezone)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("GATEWAY_BURST", "many")
	t.Setenv("CACHE_ENABLED", "maybe")
	t.Setenv("REDIS_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 10, cfg.GatewayBurst)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, cache.DefaultRedisConfig().TTL, cfg.Redis.TTL)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("LOG_LEVEL=debug\nPORT=7000\n"), 0o600))

	t.Setenv("PORT", "7100")
	t.Setenv("LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))

	cfg := Load(file, filepath.Join(dir, "missing.env"))

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "7100", cfg.Port, "the process environment wins")
}
