package driver

import (
	"strconv"

	"github.com/alexbaden/triton/internal/accel"
	"go.uber.org/zap"
)

// CUDAIsActive reports whether libcudart is linked and sees a device.
func CUDAIsActive() bool {
	return accel.Available("cuda")
}

// CUDADriver targets NVIDIA GPUs through the CUDA runtime.
type CUDADriver struct {
	*GPUDriver
}

// NewCUDADriver binds the CUDA runtime. Build with -tags cuda.
func NewCUDADriver(log *zap.Logger) (*CUDADriver, error) {
	base, err := NewGPUDriver("cuda", log)
	if err != nil {
		return nil, err
	}
	return &CUDADriver{GPUDriver: base}, nil
}

// NewCUDADriverFromRuntime binds a CUDA driver to rt, typically an emulated
// host runtime.
func NewCUDADriverFromRuntime(rt accel.Runtime, log *zap.Logger) *CUDADriver {
	return &CUDADriver{GPUDriver: newGPUDriver(rt, "cuda", log)}
}

func (d *CUDADriver) IsActive() bool {
	return CUDAIsActive()
}

func (d *CUDADriver) MapType(ty TypeString) (string, error) {
	return cudaTypes.Map(ty)
}

// CurrentTarget encodes the compute capability as major*10+minor, e.g. 80.
func (d *CUDADriver) CurrentTarget() (Target, error) {
	c, err := d.currentCapability()
	if err != nil {
		return Target{}, err
	}
	return Target{
		Backend:  "cuda",
		Arch:     strconv.Itoa(c.Major*10 + c.Minor),
		WarpSize: 32,
	}, nil
}
