package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultTemporalHost, cfg.Temporal.Host)
	assert.False(t, cfg.Temporal.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Temporal.Grace)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://cafe@localhost/cafe")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("TEMPORAL_ENABLED", "true")
	t.Setenv("TEMPORAL_GRACE", "2m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "postgres://cafe@localhost/cafe", cfg.DatabaseURL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.True(t, cfg.Temporal.Enabled)
	assert.Equal(t, 2*time.Minute, cfg.Temporal.Grace)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "7000"
catalog:
  path: configs/catalog.yaml
log:
  pretty: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "configs/catalog.yaml", cfg.CatalogPath)
	assert.True(t, cfg.LogPretty)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("postgres without url", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "postgres")
		_, err := Load("")
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		_, err := Load("")
		assert.ErrorContains(t, err, "unknown store driver")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
