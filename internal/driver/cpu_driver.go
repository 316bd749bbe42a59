package driver

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/alexbaden/triton/internal/accel"
	"go.uber.org/zap"
	"golang.org/x/sys/cpu"
)

// CPUDriver runs kernels on the host. It is always active and is the
// fallback when no accelerator backend is.
type CPUDriver struct {
	*GPUDriver
}

// NewCPUDriver binds a single-device host runtime.
func NewCPUDriver(log *zap.Logger) *CPUDriver {
	rt := accel.NewHostRuntime(accel.HostConfig{
		Name: "cpu",
		Devices: []accel.HostDevice{
			{Name: fmt.Sprintf("CPU (%s)", runtime.GOARCH), Arch: runtime.GOARCH, WarpSize: 1},
		},
		RawStreams: true,
	})
	return &CPUDriver{GPUDriver: newGPUDriver(rt, "cpu", log)}
}

func (d *CPUDriver) IsActive() bool {
	return true
}

func (d *CPUDriver) MapType(ty TypeString) (string, error) {
	return cpuTypes.Map(ty)
}

// CurrentTarget reports GOARCH plus the vector extensions the host supports,
// e.g. amd64+avx2+fma.
func (d *CPUDriver) CurrentTarget() (Target, error) {
	c, err := d.currentCapability()
	if err != nil {
		return Target{}, err
	}
	arch := c.Arch
	if features := cpuFeatures(); len(features) > 0 {
		arch += "+" + strings.Join(features, "+")
	}
	return Target{Backend: "cpu", Arch: arch, WarpSize: c.WarpSize}, nil
}

func cpuFeatures() []string {
	var features []string
	add := func(ok bool, name string) {
		if ok {
			features = append(features, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasAVX, "avx")
		add(cpu.X86.HasAVX2, "avx2")
		add(cpu.X86.HasFMA, "fma")
		add(cpu.X86.HasAVX512F, "avx512f")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "neon")
		add(cpu.ARM64.HasSVE, "sve")
		add(cpu.ARM64.HasFPHP, "fp16")
	}
	sort.Strings(features)
	return features
}
