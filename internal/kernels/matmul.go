// Package kernels holds host reference kernels used to exercise drivers and
// benchmarkers without a device toolchain.
package kernels

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MatMul computes C = A * B where A is m×k and B is k×n.
type MatMul struct {
	m, k, n int
	a, b, c *mat.Dense
}

// NewMatMul allocates deterministic operands of the given shape.
func NewMatMul(m, k, n int) (*MatMul, error) {
	if m <= 0 || k <= 0 || n <= 0 {
		return nil, fmt.Errorf("invalid matmul shape %dx%dx%d", m, k, n)
	}
	a := make([]float64, m*k)
	b := make([]float64, k*n)
	for i := range a {
		a[i] = float64(i%100) / 100.0
	}
	for i := range b {
		b[i] = float64((i+1)%100) / 100.0
	}
	return FromData(m, k, n, a, b)
}

// FromData wraps row-major operands.
func FromData(m, k, n int, a, b []float64) (*MatMul, error) {
	if len(a) != m*k {
		return nil, fmt.Errorf("matrix A size mismatch: expected %d, got %d", m*k, len(a))
	}
	if len(b) != k*n {
		return nil, fmt.Errorf("matrix B size mismatch: expected %d, got %d", k*n, len(b))
	}
	return &MatMul{
		m: m, k: k, n: n,
		a: mat.NewDense(m, k, a),
		b: mat.NewDense(k, n, b),
		c: mat.NewDense(m, n, nil),
	}, nil
}

// Launch runs the kernel once. It has the shape of a driver.KernelCall.
func (mm *MatMul) Launch() error {
	mm.c.Mul(mm.a, mm.b)
	return nil
}

// Result returns C in row-major order.
func (mm *MatMul) Result() []float64 {
	return mat.DenseCopyOf(mm.c).RawMatrix().Data
}

// FLOPs is the floating point operation count of one launch.
func (mm *MatMul) FLOPs() float64 {
	return 2 * float64(mm.m) * float64(mm.k) * float64(mm.n)
}

// GFLOPS converts a launch duration in milliseconds to throughput.
func (mm *MatMul) GFLOPS(ms float64) float64 {
	if ms <= 0 {
		return 0
	}
	return mm.FLOPs() / (ms / 1e3) / 1e9
}
