package driver

// Driver is the capability contract every backend satisfies. The compiler
// uses nothing else from a backend.
//
// Implementation notes:
//   - Drivers hold no device or stream state; every query re-reads the runtime
//   - Runtime errors are returned unchanged
//   - MapType must be pure and total over the backend's vocabulary
type Driver interface {
	// IsActive reports whether the backend's runtime is usable in this
	// process. It is the same probe the backend registers, see Backend.
	IsActive() bool

	// MapType converts a compiler type string such as "i32", "*fp16" or
	// "fp32" to the backend's native type name used in launcher code.
	// Unknown tokens yield an error matching ErrUnsupportedType.
	MapType(ty TypeString) (string, error)

	// CurrentTarget describes the device that is active right now.
	CurrentTarget() (Target, error)

	// ActiveDevice returns the active device, the same one CurrentTarget
	// describes.
	ActiveDevice() (Device, error)

	// Benchmarker returns the measurement function this backend uses by default.
	Benchmarker() Benchmarker

	// AssembleTensormapToArg injects launch-ABI descriptor arguments derived
	// from compile-time metadata. The returned slice keeps the order and
	// count of every argument the backend does not transform.
	AssembleTensormapToArg(info []TensormapInfo, args []any) []any
}

// TensormapInfo is compile-time metadata describing a block-addressed tensor
// descriptor argument. Its interpretation belongs to the backend.
type TensormapInfo struct {
	ArgIndex int
	Meta     map[string]any
}

// DeviceSetter is implemented by drivers that can switch the active device.
type DeviceSetter interface {
	SetDevice(idx int) error
}
