package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_URL", "REDIS_URL", "CACHE_TTL", "JWT_SECRET", "LOG_LEVEL", "VIEW_CACHE_SIZE", "SESSION_TTL", "MAX_SESSIONS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 64, cfg.ViewCacheSize)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 10000, cfg.MaxSessions)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("VIEW_CACHE_SIZE", "not-a-number")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("MAX_SESSIONS", "-5")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 64, cfg.ViewCacheSize)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10000, cfg.MaxSessions)
}
