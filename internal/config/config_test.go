package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL())
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Contains(t, cfg.DBURL, "postgres://")
	require.NoError(t, cfg.Validate())
}

func TestLoad_DevFallsBackToDevSecret(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("JWT_SECRET", "")

	cfg := Load()

	assert.True(t, cfg.UsingDevSecret())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ParsesOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("ADMIN_CODE", "letmein")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL())
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.OTelEnabled)
	assert.Equal(t, "letmein", cfg.AdminCode)
	assert.False(t, cfg.UsingDevSecret())
}

func TestValidate_RejectsBadConfig(t *testing.T) {
	cfg := Config{
		Port:         0,
		StoreDriver:  "mongo",
		JWTSecret:    "",
		JWTTTLHours:  0,
		MaxBodyBytes: 0,
	}

	err := cfg.Validate()
	require.Error(t, err)

	for _, want := range []string{"PORT", "STORE_DRIVER", "JWT_SECRET", "JWT_TTL_HOURS", "MAX_BODY_BYTES"} {
		assert.Contains(t, err.Error(), want)
	}
}
