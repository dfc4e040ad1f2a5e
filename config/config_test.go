package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, 50.0, cfg.GPSAccuracyThreshold)
	assert.Equal(t, 8*time.Hour, cfg.ScanSessionTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTRefreshTTL)
	assert.Equal(t, ActivePolicyAllow, cfg.ScanActivePolicy)
	assert.Equal(t, "3001", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("GPS_ACCURACY_THRESHOLD", "25.5")
	t.Setenv("SCAN_SESSION_TTL", "30m")
	t.Setenv("SCAN_ACTIVE_POLICY", "reject")
	t.Setenv("APP_ENV", "development")

	cfg, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, 25.5, cfg.GPSAccuracyThreshold)
	assert.Equal(t, 30*time.Minute, cfg.ScanSessionTTL)
	assert.Equal(t, ActivePolicyReject, cfg.ScanActivePolicy)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadEnvRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown policy", "SCAN_ACTIVE_POLICY", "sometimes"},
		{"zero threshold", "GPS_ACCURACY_THRESHOLD", "0"},
		{"unparsable ttl", "SCAN_SESSION_TTL", "eight hours"},
		{"refresh shorter than access", "JWT_REFRESH_TTL", "1h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "secret")
			t.Setenv(tt.key, tt.val)

			_, err := LoadEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadEnvRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadEnv()
	assert.ErrorContains(t, err, "JWT_SECRET")
}
