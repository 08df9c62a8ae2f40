package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "STORE_DRIVER", "JWT_TTL", "REDIS_DB", "CACHE_TTL", "LOG_LEVEL", "IS_PROD", "REDIS_ADDR"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.RedisAddr)
	assert.False(t, cfg.IsProd)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORE_DRIVER", StoreMySQL)
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CACHE_TTL", "not-a-duration")
	t.Setenv("IS_PROD", "true")

	cfg := FromEnv()
	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, StoreMySQL, cfg.StoreDriver)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL) // Garbage falls back
	assert.True(t, cfg.IsProd)
}
