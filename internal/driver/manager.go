package driver

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/alexbaden/triton/internal/accel"
	"github.com/alexbaden/triton/internal/config"
	"github.com/alexbaden/triton/internal/metrics"
	"go.uber.org/zap"
)

// Manager handles backend selection and hands the selected driver to the
// compiler.
type Manager struct {
	mu     sync.RWMutex
	driver Driver
	name   string

	cfg *config.Config
	log *zap.Logger
}

// NewManager selects the first active backend in cfg.Drivers.Preferred, or
// the emulated backend when cfg.Drivers.Emulate is set.
func NewManager(cfg *config.Config, log *zap.Logger) (*Manager, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}

	m := &Manager{
		cfg: cfg,
		log: log.Named("manager"),
	}

	if err := m.detectAndInitialize(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Manager) detectAndInitialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name := m.cfg.Drivers.Emulate; name != "" {
		return m.emulate(name)
	}

	for _, name := range m.cfg.Drivers.Preferred {
		b, err := Lookup(name)
		if err != nil {
			return err
		}
		if !b.IsActive() {
			m.log.Debug("Skipping inactive backend", zap.String("backend", name))
			continue
		}
		d, err := b.New(m.log)
		if err != nil {
			return fmt.Errorf("failed to initialize %s backend: %w", name, err)
		}
		m.set(name, d)
		return nil
	}

	// Fall back to CPU
	m.log.Warn("No preferred backend is active, falling back to cpu",
		zap.Strings("preferred", m.cfg.Drivers.Preferred))
	m.set("cpu", NewCPUDriver(m.log))
	return nil
}

func (m *Manager) emulate(name string) error {
	b, err := Lookup(name)
	if err != nil {
		return err
	}
	if b.FromRuntime == nil {
		return fmt.Errorf("backend %s cannot be emulated", name)
	}
	rt := accel.NewHostRuntime(HostConfig(m.cfg))
	m.log.Info("Emulating backend on host runtime",
		zap.String("backend", name),
		zap.Int("devices", len(m.cfg.Host.Devices)))
	m.set(name, b.FromRuntime(rt, m.log))
	return nil
}

func (m *Manager) set(name string, d Driver) {
	m.driver = d
	m.name = name
	metrics.DriverSelected.WithLabelValues(name).Inc()
	m.log.Info("Selected backend", zap.String("backend", name))
}

// HostConfig converts the configured host devices for accel.NewHostRuntime.
func HostConfig(cfg *config.Config) accel.HostConfig {
	hc := accel.HostConfig{Name: "host", RawStreams: cfg.Host.RawStreams}
	for _, d := range cfg.Host.Devices {
		hc.Devices = append(hc.Devices, accel.HostDevice{
			Name:     d.Name,
			Major:    d.Major,
			Minor:    d.Minor,
			Arch:     d.Arch,
			WarpSize: d.WarpSize,
		})
	}
	return hc
}

// Select forces the named backend. It fails with ErrInactiveBackend if the
// backend's probe reports it unusable.
func (m *Manager) Select(name string) error {
	b, err := Lookup(name)
	if err != nil {
		return err
	}
	if !b.IsActive() {
		return fmt.Errorf("%w: %s", ErrInactiveBackend, name)
	}
	d, err := b.New(m.log)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(name, d)
	return nil
}

// Driver returns the selected driver.
func (m *Manager) Driver() Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.driver
}

// BackendName returns the name of the selected backend.
func (m *Manager) BackendName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.name
}

// MapTypes maps a kernel signature. It stops at the first unsupported type.
func (m *Manager) MapTypes(tys []TypeString) ([]string, error) {
	d, name := m.current()
	out := make([]string, len(tys))
	for i, ty := range tys {
		native, err := d.MapType(ty)
		if err != nil {
			if errors.Is(err, ErrUnsupportedType) {
				metrics.DriverUnsupportedType.WithLabelValues(name).Inc()
			}
			return nil, err
		}
		out[i] = native
	}
	return out, nil
}

// Benchmarker returns the driver's benchmarker with unset options filled
// from the configuration and outcomes recorded in metrics.
func (m *Manager) Benchmarker() Benchmarker {
	d, name := m.current()
	inner := d.Benchmarker()
	defaults := m.cfg.Benchmark
	return func(call KernelCall, cfg BenchConfig) ([]float64, error) {
		if cfg.Warmup == 0 {
			cfg.Warmup = defaults.Warmup
		}
		if cfg.Rep == 0 {
			cfg.Rep = defaults.Rep
		}
		if len(cfg.Quantiles) == 0 && cfg.ReturnMode == "" {
			cfg.Quantiles = defaults.Quantiles
			cfg.ReturnMode = defaults.ReturnMode
		}

		res, err := inner(call, cfg)
		if err != nil {
			metrics.BenchmarkRuns.WithLabelValues(name, "error").Inc()
			return nil, err
		}
		metrics.BenchmarkRuns.WithLabelValues(name, "ok").Inc()
		if len(res) > 0 {
			metrics.BenchmarkDuration.WithLabelValues(name).Observe(res[0])
		}
		return res, nil
	}
}

// PublishTarget reads the current target and exports it as a metric.
func (m *Manager) PublishTarget() (Target, error) {
	d, _ := m.current()
	t, err := d.CurrentTarget()
	if err != nil {
		return Target{}, err
	}
	metrics.TargetInfo.Reset()
	metrics.TargetInfo.WithLabelValues(t.Backend, t.Arch, strconv.Itoa(t.WarpSize)).Set(1)
	return t, nil
}

func (m *Manager) current() (Driver, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.driver, m.name
}
