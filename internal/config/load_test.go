package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "access-secret-that-is-long-enough-for-testing"
	testRefreshSecret = "refresh-secret-that-is-long-enough-for-testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LISTKEEPER_DATABASE_URL", "postgres://localhost:5432/listkeeper_test")
	t.Setenv("LISTKEEPER_AUTH_ACCESS_SECRET", testAccessSecret)
	t.Setenv("LISTKEEPER_AUTH_REFRESH_SECRET", testRefreshSecret)
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8060, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 60, cfg.Auth.AccessTokenLifetimeMinutes)
	assert.Equal(t, 10080, cfg.Auth.RefreshTokenLifetimeMinutes)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 30, cfg.Expiry.InactivityDays)
	assert.Equal(t, "127.0.0.1", cfg.Relay.Host)
	assert.Equal(t, 54321, cfg.Relay.Port)
	assert.Equal(t, 60, cfg.Notify.RatePerMinute)
	assert.Equal(t, 2, cfg.Job.WorkerCount)
	assert.Equal(t, 100, cfg.Job.QueueSize)
	assert.Equal(t, 5, cfg.Job.PollIntervalSeconds)
	assert.Equal(t, 30, cfg.Job.StuckAgeMinutes)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LISTKEEPER_SERVER_PORT", "9000")
	t.Setenv("LISTKEEPER_SERVER_LOG_LEVEL", "debug")
	t.Setenv("LISTKEEPER_EXPIRY_INACTIVITY_DAYS", "7")
	t.Setenv("LISTKEEPER_NOTIFY_RATE_PER_MINUTE", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 7, cfg.Expiry.InactivityDays)
	assert.Equal(t, 10, cfg.Notify.RatePerMinute)
	assert.Equal(t, "postgres://localhost:5432/listkeeper_test", cfg.Database.URL)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T)
	}{
		{
			name: "missing database URL",
			setup: func(t *testing.T) {
				t.Setenv("LISTKEEPER_AUTH_ACCESS_SECRET", testAccessSecret)
				t.Setenv("LISTKEEPER_AUTH_REFRESH_SECRET", testRefreshSecret)
			},
		},
		{
			name: "access secret too short",
			setup: func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("LISTKEEPER_AUTH_ACCESS_SECRET", "short")
			},
		},
		{
			name: "identical secrets",
			setup: func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("LISTKEEPER_AUTH_REFRESH_SECRET", testAccessSecret)
			},
		},
		{
			name: "invalid log level",
			setup: func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("LISTKEEPER_SERVER_LOG_LEVEL", "verbose")
			},
		},
		{
			name: "zero inactivity window",
			setup: func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("LISTKEEPER_EXPIRY_INACTIVITY_DAYS", "0")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
