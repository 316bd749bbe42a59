// Package driver is the seam between the kernel compiler and accelerator
// backends. A Driver maps the compiler's type strings to a backend's native
// types, identifies the active target, exposes the active device and hands
// out a Benchmarker for timing kernel launches.
//
// GPUDriver carries the device/stream plumbing shared by CUDA-like backends;
// CUDADriver, HIPDriver and CPUDriver add type mapping and target
// identification on top of it. Manager picks the first active backend.
package driver
