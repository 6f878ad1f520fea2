package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pos-terminal/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("UPSTREAM_BASE_URL", "https://erp.example.com/api")
	t.Setenv("UPSTREAM_ORG_ID", "org-1")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "IDR", cfg.CurrencyCode)
	require.Equal(t, 3, cfg.RetryMaxAttempts)
	require.Equal(t, "pos", cfg.ObsMetricsNamespace)
	require.True(t, cfg.ObsMetricsEnabled)
	require.True(t, cfg.IsDevelopment())
}

func TestLoadRequiresUpstream(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("UPSTREAM_BASE_URL", "")
	t.Setenv("UPSTREAM_ORG_ID", "org-1")

	_, err := config.Load()
	require.ErrorContains(t, err, "UPSTREAM_BASE_URL")
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("CART_TTL", "30m")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("OBS_METRICS_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://pos.example.com, https://admin.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, "30m0s", cfg.CartTTL.String())
	require.Equal(t, 5, cfg.RetryMaxAttempts)
	require.False(t, cfg.ObsMetricsEnabled)
	require.Equal(t, []string{"https://pos.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
}
