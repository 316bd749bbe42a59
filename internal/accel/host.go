package accel

import (
	"sync"
	"sync/atomic"
)

// HostDevice describes one emulated device of a HostRuntime.
type HostDevice struct {
	Name     string
	Major    int
	Minor    int
	Arch     string
	WarpSize int
}

// HostConfig configures a HostRuntime.
type HostConfig struct {
	Name    string
	Devices []HostDevice
	// RawStreams exposes the RawStreamer fast path.
	RawStreams bool
}

// DefaultHostConfig returns a single emulated sm_80 device.
func DefaultHostConfig() HostConfig {
	return HostConfig{
		Name: "host",
		Devices: []HostDevice{
			{Name: "emulated-0", Major: 8, Minor: 0, Arch: "sm_80", WarpSize: 32},
		},
		RawStreams: true,
	}
}

var nextStreamHandle atomic.Uintptr

func init() {
	Register("host", func() (Runtime, error) {
		return NewHostRuntime(DefaultHostConfig()), nil
	})
}

type hostStream struct {
	handle StreamHandle
}

func (s *hostStream) Handle() StreamHandle {
	return s.handle
}

// HostRuntime is an in-process runtime emulating a set of devices. Each device
// owns a single stream for the lifetime of the runtime, and the current device
// is shared by every caller of the runtime.
type HostRuntime struct {
	name    string
	devices []HostDevice
	streams []*hostStream

	mu      sync.Mutex
	current int
	syncs   []uint64
}

type rawHostRuntime struct {
	*HostRuntime
}

// CurrentRawStream returns the stream handle of the device at idx.
func (r rawHostRuntime) CurrentRawStream(idx int) (StreamHandle, error) {
	if err := r.check(idx); err != nil {
		return 0, err
	}
	return r.streams[idx].handle, nil
}

// NewHostRuntime builds an emulated runtime. When cfg.RawStreams is set the
// returned value also implements RawStreamer.
func NewHostRuntime(cfg HostConfig) Runtime {
	h := newHostRuntime(cfg)
	if cfg.RawStreams {
		return rawHostRuntime{h}
	}
	return h
}

func newHostRuntime(cfg HostConfig) *HostRuntime {
	name := cfg.Name
	if name == "" {
		name = "host"
	}
	h := &HostRuntime{
		name:    name,
		devices: append([]HostDevice(nil), cfg.Devices...),
		streams: make([]*hostStream, len(cfg.Devices)),
		syncs:   make([]uint64, len(cfg.Devices)),
	}
	for i := range h.streams {
		h.streams[i] = &hostStream{handle: StreamHandle(nextStreamHandle.Add(1))}
	}
	return h
}

func (h *HostRuntime) Name() string {
	return h.name
}

func (h *HostRuntime) DeviceCount() (int, error) {
	return len(h.devices), nil
}

func (h *HostRuntime) DeviceCapability(idx int) (Capability, error) {
	if err := h.check(idx); err != nil {
		return Capability{}, err
	}
	d := h.devices[idx]
	return Capability{Name: d.Name, Major: d.Major, Minor: d.Minor, Arch: d.Arch, WarpSize: d.WarpSize}, nil
}

func (h *HostRuntime) CurrentDevice() (int, error) {
	if len(h.devices) == 0 {
		return 0, &DeviceIndexError{Index: 0, Count: 0}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current, nil
}

func (h *HostRuntime) SetDevice(idx int) error {
	if err := h.check(idx); err != nil {
		return err
	}
	h.mu.Lock()
	h.current = idx
	h.mu.Unlock()
	return nil
}

func (h *HostRuntime) CurrentStream(idx int) (Stream, error) {
	if err := h.check(idx); err != nil {
		return nil, err
	}
	return h.streams[idx], nil
}

// Synchronize returns immediately; host work completes before the launch
// closure returns.
func (h *HostRuntime) Synchronize(idx int) error {
	if err := h.check(idx); err != nil {
		return err
	}
	h.mu.Lock()
	h.syncs[idx]++
	h.mu.Unlock()
	return nil
}

// Syncs returns how many times the device at idx was synchronized, or 0 for
// an index outside the device range.
func (h *HostRuntime) Syncs(idx int) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.check(idx) != nil {
		return 0
	}
	return h.syncs[idx]
}

func (h *HostRuntime) check(idx int) error {
	if idx < 0 || idx >= len(h.devices) {
		return &DeviceIndexError{Index: idx, Count: len(h.devices)}
	}
	return nil
}
