package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexbaden/triton/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		config, err := LoadConfig("../../fixtures/tests/config/valid_config.yaml")
		require.NoError(t, err)
		require.NotNil(t, config)

		assert.Equal(t, "debug", config.Logger.Verbosity)
		assert.Equal(t, "console", config.Logger.Encoding)
		assert.Equal(t, []string{"hip", "cpu"}, config.Drivers.Preferred)
		assert.Equal(t, "hip", config.Drivers.Emulate)
		assert.Equal(t, 5*time.Millisecond, config.Benchmark.Warmup)
		assert.Equal(t, 20*time.Millisecond, config.Benchmark.Rep)
		assert.Equal(t, "median", config.Benchmark.ReturnMode)
		assert.Equal(t, []float64{0.5, 0.2, 0.8}, config.Benchmark.Quantiles)
		assert.False(t, config.Host.RawStreams)
		require.Len(t, config.Host.Devices, 2)
		assert.Equal(t, "gfx90a", config.Host.Devices[1].Arch)
		assert.Equal(t, 64, config.Host.Devices[1].WarpSize)
		assert.Equal(t, "127.0.0.1:9191", config.Metrics.ListenAddress)
	})

	t.Run("template matches defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, fixtures.ConfigTemplate, 0644))

		config, err := LoadConfig(path)
		require.NoError(t, err)

		def := Default()
		assert.Equal(t, def.Drivers.Preferred, config.Drivers.Preferred)
		assert.Equal(t, def.Benchmark.Warmup, config.Benchmark.Warmup)
		assert.Equal(t, def.Host.Devices, config.Host.Devices)
	})

	t.Run("partial config keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("logger:\n  verbosity: warn\n"), 0644))

		config, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "warn", config.Logger.Verbosity)
		assert.Equal(t, []string{"cuda", "hip", "cpu"}, config.Drivers.Preferred)
		assert.Equal(t, 100*time.Millisecond, config.Benchmark.Rep)
	})

	t.Run("non-existent file", func(t *testing.T) {
		_, err := LoadConfig("non-existent-file.yaml")
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		dir, err := os.Getwd()
		require.NoError(t, err)

		configPath := filepath.Join(dir, "..", "..", "fixtures", "tests", "invalid_config", "config.yaml")
		_, err = LoadConfig(configPath)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty preferred", func(c *Config) { c.Drivers.Preferred = nil }},
		{"negative warmup", func(c *Config) { c.Benchmark.Warmup = -time.Millisecond }},
		{"quantile above one", func(c *Config) { c.Benchmark.Quantiles = []float64{0.5, 1.5} }},
		{"zero warp size", func(c *Config) { c.Host.Devices[0].WarpSize = 0 }},
	}

	require.NoError(t, Default().Validate())

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
