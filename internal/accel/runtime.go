// Package accel describes the downstream accelerator runtimes a driver is bound
// to. A runtime owns the notion of the "current" device and stream; callers
// only read and set that state through the Runtime interface.
//
// Vendor runtimes are linked with build tags and register themselves at init:
//   - cuda: go build -tags cuda (links libcudart)
//   - hip:  go build -tags hip  (links libamdhip64)
//
// The current device of CUDA-like runtimes is scoped to the OS thread. Callers
// that switch devices should pin their goroutine with runtime.LockOSThread.
package accel

import "fmt"

// StreamHandle is the native handle of an execution queue (cudaStream_t, hipStream_t).
type StreamHandle uintptr

// Stream is the public stream object of a runtime.
type Stream interface {
	Handle() StreamHandle
}

// Capability describes the architecture of a single device.
type Capability struct {
	Name     string
	Major    int
	Minor    int
	Arch     string // vendor architecture name, e.g. gfx90a
	WarpSize int
}

// String returns the capability in major.minor form.
func (c Capability) String() string {
	return fmt.Sprintf("%d.%d", c.Major, c.Minor)
}

// Runtime is the surface of an accelerator runtime that drivers consume.
// Implementations must not cache the current device or stream.
type Runtime interface {
	// Name returns the registry name of the runtime, e.g. "cuda".
	Name() string

	// DeviceCount returns the number of devices the runtime can enumerate.
	DeviceCount() (int, error)

	// DeviceCapability returns the capability of the device at idx.
	DeviceCapability(idx int) (Capability, error)

	// CurrentDevice returns the index of the active device.
	CurrentDevice() (int, error)

	// SetDevice makes idx the active device.
	SetDevice(idx int) error

	// CurrentStream returns the public stream object for the device at idx.
	// The CUDA and HIP runtimes return the per-thread default stream, which
	// resolves against the device current on the calling thread at launch
	// time; idx is only range checked. Callers that need the stream of
	// another device must SetDevice first.
	CurrentStream(idx int) (Stream, error)

	// Synchronize blocks until all work queued on the device at idx completes.
	Synchronize(idx int) error
}

// RawStreamer is implemented by runtimes that can return the raw stream
// handle without materializing a Stream object. The handle follows the same
// device rules as Runtime.CurrentStream.
type RawStreamer interface {
	CurrentRawStream(idx int) (StreamHandle, error)
}

// DeviceIndexError is returned for a device index the runtime does not have.
type DeviceIndexError struct {
	Index int
	Count int
}

func (e *DeviceIndexError) Error() string {
	return fmt.Sprintf("invalid device index %d (device count %d)", e.Index, e.Count)
}
