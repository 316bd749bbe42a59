package driver

import (
	"strings"

	"github.com/alexbaden/triton/internal/accel"
	"go.uber.org/zap"
)

// HIPIsActive reports whether the HIP runtime is linked and sees a device.
func HIPIsActive() bool {
	return accel.Available("hip")
}

// HIPDriver targets AMD GPUs through the HIP runtime.
type HIPDriver struct {
	*GPUDriver
}

// NewHIPDriver binds the HIP runtime. Build with -tags hip.
func NewHIPDriver(log *zap.Logger) (*HIPDriver, error) {
	base, err := NewGPUDriver("hip", log)
	if err != nil {
		return nil, err
	}
	return &HIPDriver{GPUDriver: base}, nil
}

func NewHIPDriverFromRuntime(rt accel.Runtime, log *zap.Logger) *HIPDriver {
	return &HIPDriver{GPUDriver: newGPUDriver(rt, "hip", log)}
}

func (d *HIPDriver) IsActive() bool {
	return HIPIsActive()
}

func (d *HIPDriver) MapType(ty TypeString) (string, error) {
	return hipTypes.Map(ty)
}

// CurrentTarget uses the gcn architecture name without feature flags,
// e.g. gfx90a, and the device's wavefront size.
func (d *HIPDriver) CurrentTarget() (Target, error) {
	c, err := d.currentCapability()
	if err != nil {
		return Target{}, err
	}
	arch := c.Arch
	if i := strings.IndexByte(arch, ':'); i >= 0 {
		arch = arch[:i]
	}
	return Target{
		Backend:  "hip",
		Arch:     arch,
		WarpSize: c.WarpSize,
	}, nil
}
