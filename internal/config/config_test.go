package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/climate-viewer/internal/climate"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "climate-viewer", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 10*time.Second, cfg.App.ShutdownTimeout)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, "./data", cfg.Dataset.Dir)
	assert.Equal(t, "http://localhost:8080", cfg.Dataset.BaseURL)
	assert.Equal(t, 1, cfg.Cache.Version)
	assert.Equal(t, "meteo", cfg.Cache.Redis.Prefix)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.SessionTTL)
	assert.Equal(t, climate.Query{From: 1881, To: 2006}, cfg.Period.Borders())
	assert.Equal(t, 800, cfg.Chart.Width)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := `
app:
  port: "9090"
  log_level: debug
cache:
  driver: redis
  redis:
    addr: "redis:6379"
dataset:
  base_url: "https://example.org"
period:
  from: 1900
  to: 1950
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("CACHE_REDIS_ADDR", "cache:6380")
	t.Setenv("SCHEDULER_WARM_INTERVAL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "cache:6380", cfg.Cache.Redis.Addr)
	assert.Equal(t, "https://example.org", cfg.Dataset.BaseURL)
	assert.Equal(t, time.Hour, cfg.Scheduler.WarmInterval)
	assert.Equal(t, climate.Query{From: 1900, To: 1950}, cfg.Period.Borders())
}

func TestLoadRejectsInvalid(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("CACHE_DRIVER", "indexeddb")
	_, err := Load()
	assert.ErrorContains(t, err, "cache.driver")
}
