package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexbaden/triton/internal/config"
	"github.com/alexbaden/triton/internal/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(&out)
	err := app.Run(append([]string{"tritondrv", "--verbosity", "error"}, args...))
	return out.String(), err
}

func TestDriversCommand(t *testing.T) {
	out, err := run(t, "drivers")
	require.NoError(t, err)
	assert.Contains(t, out, "BACKEND")
	assert.Regexp(t, `cpu\s+true`, out)
	assert.Contains(t, out, "cuda")
	assert.Contains(t, out, "hip")
}

func TestMapTypeCommand(t *testing.T) {
	t.Run("emulated cuda", func(t *testing.T) {
		out, err := run(t, "--emulate", "cuda", "map-type", "*fp16", "i32", "nvTmaDesc")
		require.NoError(t, err)
		assert.Regexp(t, `\*fp16\s+CUdeviceptr`, out)
		assert.Regexp(t, `i32\s+int32_t`, out)
		assert.Regexp(t, `nvTmaDesc\s+CUtensorMap`, out)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := run(t, "--emulate", "hip", "map-type", "nvTmaDesc")
		assert.ErrorIs(t, err, driver.ErrUnsupportedType)
	})

	t.Run("no arguments", func(t *testing.T) {
		_, err := run(t, "map-type")
		assert.Error(t, err)
	})
}

func TestTargetCommand(t *testing.T) {
	cfgPath := filepath.Join("..", "..", "fixtures", "tests", "config", "valid_config.yaml")

	out, err := run(t, "--config", cfgPath, "target", "--device", "1")
	require.NoError(t, err)

	var res struct {
		Backend string        `json:"backend"`
		Target  driver.Target `json:"target"`
		Device  driver.Device `json:"device"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "hip", res.Backend)
	assert.Equal(t, driver.Target{Backend: "hip", Arch: "gfx90a", WarpSize: 64}, res.Target)
	assert.Equal(t, driver.Device{Type: "hip", Index: 1}, res.Device)

	_, err = run(t, "--config", cfgPath, "target", "--device", "9")
	assert.Error(t, err)
}

func TestBenchCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("benchmark:\n  warmup: 1ms\n  rep: 2ms\n"), 0644))

	out, err := run(t, "--config", cfgPath, "--emulate", "cuda", "bench", "--size", "8", "--quantile", "0.5", "--quantile", "0.2")
	require.NoError(t, err)
	assert.Contains(t, out, "GFLOPS")
	assert.Contains(t, out, "p50")
	assert.Contains(t, out, "p20")

	out, err = run(t, "--config", cfgPath, "bench", "--size", "8", "--return-mode", "min")
	require.NoError(t, err)
	assert.Contains(t, out, "min")

	_, err = run(t, "--config", cfgPath, "bench", "--size", "0")
	assert.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tritondrv.yaml")

	out, err := run(t, "init", "--out", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "wrote "))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Drivers.Preferred, cfg.Drivers.Preferred)

	_, err = run(t, "init", "--out", path)
	assert.Error(t, err, "existing file must not be overwritten")

	_, err = run(t, "init", "--out", path, "--force")
	assert.NoError(t, err)
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, "--config", "non-existent-file.yaml", "drivers")
	assert.Error(t, err)
}

func TestServeMux(t *testing.T) {
	cfg := config.Default()
	cfg.Drivers.Emulate = "cuda"
	m, err := driver.NewManager(cfg, zap.NewNop())
	require.NoError(t, err)

	srv := httptest.NewServer(newMux(m, zap.NewNop()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/target")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var target driver.Target
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&target))
	assert.Equal(t, driver.Target{Backend: "cuda", Arch: "80", WarpSize: 32}, target)

	metricsResp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	var body bytes.Buffer
	_, err = body.ReadFrom(metricsResp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), `driver_target_info{arch="80",backend="cuda",warp_size="32"} 1`)
}
