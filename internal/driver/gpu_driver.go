package driver

import (
	"github.com/alexbaden/triton/internal/accel"
	"go.uber.org/zap"
)

// GPUDriver holds the device/stream accessors of a CUDA-like runtime. They
// are resolved once at construction; the driver never caches what they
// return and never wraps their errors.
type GPUDriver struct {
	GetDeviceCapability func(idx int) (accel.Capability, error)
	GetCurrentStream    func(idx int) (accel.StreamHandle, error)
	GetCurrentDevice    func() (int, error)
	SetCurrentDevice    func(idx int) error

	synchronize func(idx int) error
	deviceType  string
	log         *zap.Logger
}

// NewGPUDriver opens the named runtime and binds its accessors. If the
// runtime is not linked the error matches ErrMissingRuntime and no driver
// is returned.
func NewGPUDriver(runtimeName string, log *zap.Logger) (*GPUDriver, error) {
	rt, err := accel.Open(runtimeName)
	if err != nil {
		return nil, err
	}
	return newGPUDriver(rt, runtimeName, log), nil
}

func newGPUDriver(rt accel.Runtime, deviceType string, log *zap.Logger) *GPUDriver {
	if log == nil {
		log = zap.NewNop()
	}
	d := &GPUDriver{
		GetDeviceCapability: rt.DeviceCapability,
		GetCurrentDevice:    rt.CurrentDevice,
		SetCurrentDevice:    rt.SetDevice,
		synchronize:         rt.Synchronize,
		deviceType:          deviceType,
		log:                 log.Named("driver").With(zap.String("runtime", rt.Name())),
	}

	if raw, ok := rt.(accel.RawStreamer); ok {
		d.GetCurrentStream = raw.CurrentRawStream
		d.log.Debug("Using raw stream accessor")
	} else {
		d.GetCurrentStream = func(idx int) (accel.StreamHandle, error) {
			s, err := rt.CurrentStream(idx)
			if err != nil {
				return 0, err
			}
			return s.Handle(), nil
		}
		d.log.Debug("Raw stream accessor unavailable, using stream object")
	}

	return d
}

// SetDevice makes idx the runtime's current device.
func (d *GPUDriver) SetDevice(idx int) error {
	return d.SetCurrentDevice(idx)
}

// ActiveDevice returns the runtime's current device.
func (d *GPUDriver) ActiveDevice() (Device, error) {
	idx, err := d.GetCurrentDevice()
	if err != nil {
		return Device{}, err
	}
	return Device{Type: d.deviceType, Index: idx}, nil
}

// Benchmarker returns DoBench synchronizing whichever device is current when
// each launch completes.
func (d *GPUDriver) Benchmarker() Benchmarker {
	return DoBench(func() error {
		idx, err := d.GetCurrentDevice()
		if err != nil {
			return err
		}
		return d.synchronize(idx)
	})
}

// AssembleTensormapToArg returns args unchanged.
// TODO: drop once tensor descriptors are passed as regular arguments.
func (d *GPUDriver) AssembleTensormapToArg(info []TensormapInfo, args []any) []any {
	return args
}

// currentCapability reads the current device and its capability.
func (d *GPUDriver) currentCapability() (accel.Capability, error) {
	idx, err := d.GetCurrentDevice()
	if err != nil {
		return accel.Capability{}, err
	}
	return d.GetDeviceCapability(idx)
}
