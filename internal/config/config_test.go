package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_FILE", "/tmp/booking-test/session.json")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "file", cfg.Session.Store)
	assert.Equal(t, "/tmp/booking-test/session.json", cfg.Session.File)
	assert.Equal(t, "sqlite", cfg.Stub.DBDriver)
	assert.Equal(t, 60, cfg.Stub.SlotDaysAhead)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://booking.example.com/api")
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_DB", "4")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://booking.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, 4, cfg.Session.RedisDB)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero timeout", "HTTP_TIMEOUT_SECONDS", "0"},
		{"unknown store", "SESSION_STORE", "sqlite"},
		{"negative jwt expiry", "JWT_EXPIRATION_MINUTES", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
