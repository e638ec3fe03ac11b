package db

import (
	"testing"

	"community-recycle-tracker/pkg/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestDialectSelection(t *testing.T) {
	cases := map[string]string{
		"postgres": "postgres",
		"mysql":    "mysql",
		"sqlite":   "sqlite",
	}

	for typ, want := range cases {
		cfg := &config.Config{}
		cfg.Database.Type = typ
		d, err := Dialect(cfg)
		require.NoError(t, err)
		require.Equal(t, want, d.Name())
	}
}

func TestDialectUnsupported(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Type = "oracle"
	_, err := Dialect(cfg)
	require.Error(t, err)
}

func TestNewSqlite(t *testing.T) {
	cfg := &config.Config{AppEnv: "test"}
	cfg.Database.Type = "sqlite"
	cfg.Database.DBNAME = "file:db_test?mode=memory&cache=shared"

	d, err := Dialect(cfg)
	require.NoError(t, err)

	gdb, err := New(cfg, d)
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())
	require.NoError(t, sqlDB.Close())
}
