package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("ADMIN_ID", "123456")
	t.Setenv("USE_MOCK_DB", "true")
}

func TestLoadFromEnvRequiredFields(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("ADMIN_ID", "")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")

	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	_, err = LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_ID")
}

func TestLoadFromEnvDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.TelegramToken)
	assert.Equal(t, int64(123456), cfg.AdminID)
	assert.True(t, cfg.UseMockDB)
	assert.False(t, cfg.WebhookMode)
	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.AnalyticsEnabled())
}

func TestLoadFromEnvPostgresDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("ADMIN_ID", "123456")
	t.Setenv("USE_MOCK_DB", "")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_SSLMODE", "")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, "trainbot", cfg.DBName)
	assert.Equal(t, "postgres", cfg.DBUser)
	assert.Equal(t, "disable", cfg.DBSSLMode)
}

func TestLoadFromEnvMissingDBHost(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("ADMIN_ID", "123456")
	t.Setenv("USE_MOCK_DB", "")
	t.Setenv("DB_HOST", "")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST")
}

func TestLoadFromEnvWebhookMode(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WEBHOOK_MODE", "true")
	t.Setenv("WEBHOOK_URL", "")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEBHOOK_URL")

	t.Setenv("WEBHOOK_URL", "https://bot.example.com")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.WebhookMode)
	assert.Equal(t, "https://bot.example.com", cfg.WebhookURL)
}

func TestLoadFromEnvClickHouse(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CLICKHOUSE_HOST", "ch.example.com")
	t.Setenv("CLICKHOUSE_PORT", "")
	t.Setenv("CLICKHOUSE_DATABASE", "")
	t.Setenv("CLICKHOUSE_USER", "")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.AnalyticsEnabled())
	assert.Equal(t, "ch.example.com", cfg.ClickHouseHost)
	assert.Equal(t, 9000, cfg.ClickHousePort)
	assert.Equal(t, "default", cfg.ClickHouseDatabase)
	assert.Equal(t, "default", cfg.ClickHouseUser)
}
