package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "app:\n  env: prod\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":9980", cfg.App.HTTPAddr)
	assert.Equal(t, "configs/scenario.yaml", cfg.Scenario.Path)
	assert.Equal(t, 100000, cfg.Engine.DefaultPaths)
	assert.Equal(t, 252, cfg.Engine.DefaultSteps)
	assert.Equal(t, 2, cfg.Engine.MaxConcurrent)
	assert.False(t, cfg.Market.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `app:
  log_level: debug
  http_addr: ":8080"
scenario:
  path: /tmp/scenario.yaml
  watch: true
market:
  enabled: true
  symbol: ETHUSDT
  refresh_seconds: 5
  histvol_enabled: true
  histvol_interval: 15m
engine:
  default_paths: 2000
  workers: 4
  antithetic: true
store:
  runs_db: /tmp/runs.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.True(t, cfg.Scenario.Watch)
	assert.Equal(t, "ETHUSDT", cfg.Market.Symbol)
	assert.Equal(t, 5, cfg.Market.RefreshSeconds)
	assert.Equal(t, "15m", cfg.Market.HistVolInterval)
	assert.Equal(t, 2000, cfg.Engine.DefaultPaths)
	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.True(t, cfg.Engine.Antithetic)
	assert.Equal(t, "/tmp/runs.db", cfg.Store.RunsDB)
	assert.Equal(t, "/data/db/path_points.db", cfg.Store.PathsDB)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := writeConfig(t, "app:\n  log_level: loud\n")
	_, err = Load(path)
	require.Error(t, err)

	path = writeConfig(t, "market:\n  enabled: true\n  symbol: \" \"\n")
	_, err = Load(path)
	require.Error(t, err)
}
