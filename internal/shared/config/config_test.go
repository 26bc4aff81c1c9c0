package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("BOT_OPERATOR_IDS", "1001, 1002")
	t.Setenv("API_BASE_URL", "https://api.example.com/api/")
	t.Setenv("SESSION_STORE", "memory")
	t.Setenv("BOT_MODE", "polling")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int64{1001, 1002}, cfg.Bot.OperatorIDs)
	assert.Equal(t, "https://api.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Payouts.RefreshInterval)
	assert.Equal(t, 5*time.Second, cfg.Payouts.NotificationTTL)
	assert.Equal(t, "Bulk rejection by admin", cfg.Payouts.BulkRejectReason)
	assert.True(t, cfg.IsOperator(1002))
	assert.False(t, cfg.IsOperator(42))
}

func TestLoad_EncryptedStoreNeedsKey(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("ENCRYPTION_KEY", "tooshort")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENCRYPTION_KEY")

	t.Setenv("ENCRYPTION_KEY", strings.Repeat("ab", 32))
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Session.Store)
}

func TestLoad_InvalidOperatorID(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BOT_OPERATOR_IDS", "1001,bob")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bob")
}

func TestLoad_WebhookModeNeedsURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BOT_MODE", "webhook")
	t.Setenv("BOT_WEBHOOK_URL", "")

	_, err := Load()
	require.Error(t, err)
}
