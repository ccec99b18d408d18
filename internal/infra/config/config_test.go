package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/installments")
	t.Setenv("JOB_TRIGGER_SECRET", "s3cret")
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JOB_TRIGGER_SECRET", "s3cret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRequiresTriggerSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/installments")
	t.Setenv("JOB_TRIGGER_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JOB_TRIGGER_SECRET")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("CRON_SPEC_OVERDUE_CHECK", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("METRICS_ENABLED", "")
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("ADMIN_TELEGRAM_ID", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "*/30 * * * *", cfg.CronSpecOverdueCheck)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.MetricsEnabled)
}

func TestLoadTelegramRequiresAdminID(t *testing.T) {
	setRequired(t)
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("ADMIN_TELEGRAM_ID", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_TELEGRAM_ID")
}

func TestLoadTelegramWithAdminID(t *testing.T) {
	setRequired(t)
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("ADMIN_TELEGRAM_ID", "42")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.AdminTelegramID)
}

func TestLoadInvalidAdminID(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_TELEGRAM_ID", "not-a-number")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_TELEGRAM_ID")
}
