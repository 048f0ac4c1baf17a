package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/shop")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 700*time.Millisecond, cfg.PersistDebounce)
	assert.Equal(t, 4, cfg.LockoutThreshold)
	assert.Equal(t, []time.Duration{time.Minute, 5 * time.Minute, 15 * time.Minute, 30 * time.Minute, time.Hour}, cfg.LockoutDurations)
	assert.Equal(t, LockoutStoreMemory, cfg.LockoutStore)
	assert.Empty(t, cfg.RemoteStoreURL)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LOCKOUT_DURATIONS", "30s,2m")
	t.Setenv("LOCKOUT_STORE", "sqlite")
	t.Setenv("REMOTE_STORE_URL", "http://mock-remote:8081")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{30 * time.Second, 2 * time.Minute}, cfg.LockoutDurations)
	assert.Equal(t, LockoutStoreSQLite, cfg.LockoutStore)
	assert.Equal(t, "http://mock-remote:8081", cfg.RemoteStoreURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown lockout store", key: "LOCKOUT_STORE", val: "redis"},
		{name: "zero threshold", key: "LOCKOUT_THRESHOLD", val: "0"},
		{name: "negative duration", key: "LOCKOUT_DURATIONS", val: "1m,-5m"},
		{name: "zero debounce", key: "PERSIST_DEBOUNCE", val: "0s"},
		{name: "bad duration", key: "JWT_EXPIRY", val: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}
