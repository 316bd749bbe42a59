//go:build cuda
// +build cuda

package accel

/*
#cgo LDFLAGS: -lcudart
#include <cuda_runtime.h>

static cudaStream_t per_thread_stream(void) { return cudaStreamPerThread; }
static cudaError_t device_props(struct cudaDeviceProp *prop, int dev) { return cudaGetDeviceProperties(prop, dev); }
*/
import "C"
import (
	"fmt"
	"unsafe"
)

func init() {
	Register("cuda", func() (Runtime, error) {
		return cudaRuntime{}, nil
	})
}

// CUDAError is a cudaError_t returned by the CUDA runtime.
type CUDAError struct {
	Code int
	Op   string
}

func (e *CUDAError) Error() string {
	return fmt.Sprintf("%s: %s (%d)", e.Op, C.GoString(C.cudaGetErrorString(C.cudaError_t(e.Code))), e.Code)
}

func cudaCheck(op string, res C.cudaError_t) error {
	if res == C.cudaSuccess {
		return nil
	}
	return &CUDAError{Code: int(res), Op: op}
}

type cudaStream struct {
	handle StreamHandle
}

func (s cudaStream) Handle() StreamHandle {
	return s.handle
}

// cudaRuntime binds libcudart. It holds no state of its own.
type cudaRuntime struct{}

func (cudaRuntime) Name() string {
	return "cuda"
}

func (cudaRuntime) DeviceCount() (int, error) {
	var n C.int
	if err := cudaCheck("cudaGetDeviceCount", C.cudaGetDeviceCount(&n)); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (cudaRuntime) DeviceCapability(idx int) (Capability, error) {
	var major, minor, warp C.int
	dev := C.int(idx)
	if err := cudaCheck("cudaDeviceGetAttribute", C.cudaDeviceGetAttribute(&major, C.cudaDevAttrComputeCapabilityMajor, dev)); err != nil {
		return Capability{}, err
	}
	if err := cudaCheck("cudaDeviceGetAttribute", C.cudaDeviceGetAttribute(&minor, C.cudaDevAttrComputeCapabilityMinor, dev)); err != nil {
		return Capability{}, err
	}
	if err := cudaCheck("cudaDeviceGetAttribute", C.cudaDeviceGetAttribute(&warp, C.cudaDevAttrWarpSize, dev)); err != nil {
		return Capability{}, err
	}
	var prop C.struct_cudaDeviceProp
	if err := cudaCheck("cudaGetDeviceProperties", C.device_props(&prop, dev)); err != nil {
		return Capability{}, err
	}
	return Capability{
		Name:     C.GoString(&prop.name[0]),
		Major:    int(major),
		Minor:    int(minor),
		Arch:     fmt.Sprintf("sm_%d%d", int(major), int(minor)),
		WarpSize: int(warp),
	}, nil
}

func (cudaRuntime) CurrentDevice() (int, error) {
	var dev C.int
	if err := cudaCheck("cudaGetDevice", C.cudaGetDevice(&dev)); err != nil {
		return 0, err
	}
	return int(dev), nil
}

func (cudaRuntime) SetDevice(idx int) error {
	return cudaCheck("cudaSetDevice", C.cudaSetDevice(C.int(idx)))
}

func (r cudaRuntime) CurrentStream(idx int) (Stream, error) {
	h, err := r.CurrentRawStream(idx)
	if err != nil {
		return nil, err
	}
	return cudaStream{handle: h}, nil
}

// CurrentRawStream returns the per-thread default stream handle, which the
// runtime resolves against the device current on the calling thread.
func (r cudaRuntime) CurrentRawStream(idx int) (StreamHandle, error) {
	n, err := r.DeviceCount()
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= n {
		return 0, &DeviceIndexError{Index: idx, Count: n}
	}
	return StreamHandle(uintptr(unsafe.Pointer(C.per_thread_stream()))), nil
}

func (cudaRuntime) Synchronize(idx int) error {
	var prev C.int
	if err := cudaCheck("cudaGetDevice", C.cudaGetDevice(&prev)); err != nil {
		return err
	}
	if int(prev) != idx {
		if err := cudaCheck("cudaSetDevice", C.cudaSetDevice(C.int(idx))); err != nil {
			return err
		}
		defer C.cudaSetDevice(prev)
	}
	return cudaCheck("cudaDeviceSynchronize", C.cudaDeviceSynchronize())
}
