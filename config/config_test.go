package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "NVDA", cfg.Run.Ticker)
	assert.Equal(t, 4, cfg.Strategy.EntryThreshold)
	assert.Equal(t, 2, cfg.Strategy.HoldThreshold)
	assert.InDelta(t, 0.20, cfg.Strategy.TargetVolatility, 1e-12)
	assert.InDelta(t, 0.0005, cfg.Strategy.TradingCostRate, 1e-12)
	assert.InDelta(t, 0.3, cfg.Strategy.SellCeilingMultiplier, 1e-12)
	assert.Equal(t, 50, cfg.Strategy.TrendFastWindow)
	assert.Equal(t, 200, cfg.Strategy.TrendSlowWindow)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "trendbot.db", cfg.Storage.DSN)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
run:
  ticker: AMD
  train_end: 2020-12-31
  val_end: 2022-06-30
strategy:
  entry_threshold: 5
  target_volatility: 0.15
log:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "AMD", cfg.Run.Ticker)
	assert.Equal(t, 5, cfg.Strategy.EntryThreshold)
	assert.InDelta(t, 0.15, cfg.Strategy.TargetVolatility, 1e-12)
	assert.Equal(t, "debug", cfg.Log.Level)

	// lo no especificado conserva el default
	assert.Equal(t, 2, cfg.Strategy.HoldThreshold)
	assert.Equal(t, 20, cfg.Strategy.VolatilityWindow)

	trainEnd, err := cfg.TrainEndDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC), trainEnd)

	valEnd, err := cfg.ValEndDate()
	require.NoError(t, err)
	assert.True(t, trainEnd.Before(valEnd))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("ALPHA_VANTAGE_API_KEY", "secret-key")
	t.Setenv("TRENDBOT_DSN", "/tmp/test.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "secret-key", cfg.API.Key)
	assert.Equal(t, "/tmp/test.db", cfg.Storage.DSN)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("run: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_BadDates(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	cfg.Run.TrainEnd = "31/12/2020"
	_, err = cfg.TrainEndDate()
	assert.Error(t, err)
}
