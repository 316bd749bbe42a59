//go:build hip
// +build hip

package accel

/*
#cgo CFLAGS: -D__HIP_PLATFORM_AMD__
#cgo LDFLAGS: -lamdhip64
#include <hip/hip_runtime_api.h>

static hipStream_t per_thread_stream(void) { return hipStreamPerThread; }
static hipError_t device_props(hipDeviceProp_t *prop, int dev) { return hipGetDeviceProperties(prop, dev); }
*/
import "C"
import (
	"fmt"
	"strings"
	"unsafe"
)

func init() {
	Register("hip", func() (Runtime, error) {
		return hipRuntime{}, nil
	})
}

// HIPError is a hipError_t returned by the HIP runtime.
type HIPError struct {
	Code int
	Op   string
}

func (e *HIPError) Error() string {
	return fmt.Sprintf("%s: %s (%d)", e.Op, C.GoString(C.hipGetErrorString(C.hipError_t(e.Code))), e.Code)
}

func hipCheck(op string, res C.hipError_t) error {
	if res == C.hipSuccess {
		return nil
	}
	return &HIPError{Code: int(res), Op: op}
}

type hipStream struct {
	handle StreamHandle
}

func (s hipStream) Handle() StreamHandle {
	return s.handle
}

type hipRuntime struct{}

func (hipRuntime) Name() string {
	return "hip"
}

func (hipRuntime) DeviceCount() (int, error) {
	var n C.int
	if err := hipCheck("hipGetDeviceCount", C.hipGetDeviceCount(&n)); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (hipRuntime) DeviceCapability(idx int) (Capability, error) {
	var prop C.hipDeviceProp_t
	if err := hipCheck("hipGetDeviceProperties", C.device_props(&prop, C.int(idx))); err != nil {
		return Capability{}, err
	}
	arch := C.GoString(&prop.gcnArchName[0])
	// gcnArchName carries target features, e.g. gfx90a:sramecc+:xnack-
	if i := strings.IndexByte(arch, ':'); i >= 0 {
		arch = arch[:i]
	}
	return Capability{
		Name:     C.GoString(&prop.name[0]),
		Major:    int(prop.major),
		Minor:    int(prop.minor),
		Arch:     arch,
		WarpSize: int(prop.warpSize),
	}, nil
}

func (hipRuntime) CurrentDevice() (int, error) {
	var dev C.int
	if err := hipCheck("hipGetDevice", C.hipGetDevice(&dev)); err != nil {
		return 0, err
	}
	return int(dev), nil
}

func (hipRuntime) SetDevice(idx int) error {
	return hipCheck("hipSetDevice", C.hipSetDevice(C.int(idx)))
}

func (r hipRuntime) CurrentStream(idx int) (Stream, error) {
	h, err := r.CurrentRawStream(idx)
	if err != nil {
		return nil, err
	}
	return hipStream{handle: h}, nil
}

// CurrentRawStream returns the per-thread default stream handle, which the
// runtime resolves against the device current on the calling thread.
func (r hipRuntime) CurrentRawStream(idx int) (StreamHandle, error) {
	n, err := r.DeviceCount()
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= n {
		return 0, &DeviceIndexError{Index: idx, Count: n}
	}
	return StreamHandle(uintptr(unsafe.Pointer(C.per_thread_stream()))), nil
}

func (hipRuntime) Synchronize(idx int) error {
	var prev C.int
	if err := hipCheck("hipGetDevice", C.hipGetDevice(&prev)); err != nil {
		return err
	}
	if int(prev) != idx {
		if err := hipCheck("hipSetDevice", C.hipSetDevice(C.int(idx))); err != nil {
			return err
		}
		defer C.hipSetDevice(prev)
	}
	return hipCheck("hipDeviceSynchronize", C.hipDeviceSynchronize())
}
