package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(Params{})
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
	require.Equal(t, "join_and_log", cfg.Capacity.Policy)
	require.Equal(t, "mixed", cfg.Pricing.DefaultMaterial)
	require.Contains(t, cfg.Pricing.Rates, "plastic")
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("DATABASE_QUERY_TIMEOUT", "2s")
	t.Setenv("CAPACITY_POLICY", "log_only")

	cfg, err := LoadConfig(Params{})
	require.NoError(t, err)

	require.Equal(t, "sqlite", cfg.Database.Type)
	require.Equal(t, 2*time.Second, cfg.Database.QueryTimeout)
	require.Equal(t, "log_only", cfg.Capacity.Policy)
}
