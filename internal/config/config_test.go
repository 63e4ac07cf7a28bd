package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DEVELOPMENT", "true")
	t.Setenv("ADMIN_TELEGRAM_IDS", "42, 7,oops")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "https://t.me/your_bot", cfg.PaymentReturnURL)
	assert.Equal(t, []int64{42, 7}, cfg.AdminTelegramIDs)
	assert.Equal(t, 256, cfg.NotifyQueueSize)
}

func TestValidateRequiresSecretOutsideDevelopment(t *testing.T) {
	cfg := &Config{
		PostgresDB:          "sadaqa",
		PostgresHost:        "localhost",
		APIPort:             8000,
		NotifyQueueSize:     1,
		ExpirySweepInterval: 1,
	}
	require.Error(t, cfg.Validate())

	cfg.TelegramSecretKey = "token"
	require.NoError(t, cfg.Validate())

	cfg.InMemory = true
	require.Error(t, cfg.Validate())
}

func TestIsAdmin(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.IsAdmin(1), "empty list outside development denies")

	cfg.Development = true
	assert.True(t, cfg.IsAdmin(1), "empty list in development allows")

	cfg.AdminTelegramIDs = []int64{5}
	assert.True(t, cfg.IsAdmin(5))
	assert.False(t, cfg.IsAdmin(1))
}
