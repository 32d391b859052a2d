package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "*", cfg.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "receipts", cfg.S3Bucket)
	assert.False(t, cfg.S3UseSSL)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("S3_USE_SSL", "true")
	t.Setenv("ENVIRONMENT", "production")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.True(t, cfg.S3UseSSL)
	assert.True(t, cfg.IsProduction())
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("JWT_EXPIRY_HOURS", "soon")
	t.Setenv("S3_USE_SSL", "definitely")

	cfg := Load()

	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.False(t, cfg.S3UseSSL)
}
