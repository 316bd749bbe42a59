package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// HostDevice describes one emulated device.
type HostDevice struct {
	Name     string `yaml:"name"`
	Major    int    `yaml:"major"`
	Minor    int    `yaml:"minor"`
	Arch     string `yaml:"arch"`
	WarpSize int    `yaml:"warpSize"`
}

type Config struct {
	Logger struct {
		Verbosity string `yaml:"verbosity"`
		Encoding  string `yaml:"encoding"`
	} `yaml:"logger"`
	Drivers struct {
		// Preferred is the order in which backends are probed.
		Preferred []string `yaml:"preferred"`
		// Emulate binds the named vendor driver to the host runtime instead
		// of the vendor runtime. Empty disables emulation.
		Emulate string `yaml:"emulate"`
	} `yaml:"drivers"`
	Benchmark struct {
		Warmup     time.Duration `yaml:"warmup"`
		Rep        time.Duration `yaml:"rep"`
		ReturnMode string        `yaml:"returnMode"`
		Quantiles  []float64     `yaml:"quantiles"`
	} `yaml:"benchmark"`
	Host struct {
		Devices    []HostDevice `yaml:"devices"`
		RawStreams bool         `yaml:"rawStreams"`
	} `yaml:"host"`
	Metrics struct {
		ListenAddress string `yaml:"listenAddress"`
	} `yaml:"metrics"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.Logger.Verbosity = "info"
	cfg.Logger.Encoding = "json"
	cfg.Drivers.Preferred = []string{"cuda", "hip", "cpu"}
	cfg.Benchmark.Warmup = 25 * time.Millisecond
	cfg.Benchmark.Rep = 100 * time.Millisecond
	cfg.Benchmark.ReturnMode = "mean"
	cfg.Host.Devices = []HostDevice{
		{Name: "emulated-0", Major: 8, Minor: 0, Arch: "sm_80", WarpSize: 32},
	}
	cfg.Host.RawStreams = true
	cfg.Metrics.ListenAddress = ":9090"
	return &cfg
}

// LoadConfig reads a YAML file on top of Default.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// Validate checks values that cannot be caught by the YAML decoder.
func (c *Config) Validate() error {
	if len(c.Drivers.Preferred) == 0 {
		return fmt.Errorf("drivers.preferred must not be empty")
	}
	if c.Benchmark.Warmup < 0 || c.Benchmark.Rep < 0 {
		return fmt.Errorf("benchmark durations must not be negative")
	}
	for _, q := range c.Benchmark.Quantiles {
		if !(q >= 0 && q <= 1) {
			return fmt.Errorf("benchmark quantile %v out of [0,1]", q)
		}
	}
	for i, d := range c.Host.Devices {
		if d.WarpSize <= 0 {
			return fmt.Errorf("host.devices[%d].warpSize must be positive", i)
		}
	}
	return nil
}
