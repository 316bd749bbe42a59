package driver

import (
	"fmt"
	"sort"
	"sync"

	"github.com/alexbaden/triton/internal/accel"
	"go.uber.org/zap"
)

// Backend registers a driver implementation. IsActive is the instance-free
// probe used during selection; it must be cheap and must not panic.
type Backend struct {
	Name     string
	IsActive func() bool
	New      func(log *zap.Logger) (Driver, error)
	// FromRuntime binds the driver to an explicit runtime. Nil when the
	// backend cannot be emulated.
	FromRuntime func(rt accel.Runtime, log *zap.Logger) Driver
}

var (
	backendsMu sync.RWMutex
	backends   = make(map[string]Backend)
)

func init() {
	Register(Backend{
		Name:     "cuda",
		IsActive: CUDAIsActive,
		New: func(log *zap.Logger) (Driver, error) {
			return NewCUDADriver(log)
		},
		FromRuntime: func(rt accel.Runtime, log *zap.Logger) Driver {
			return NewCUDADriverFromRuntime(rt, log)
		},
	})
	Register(Backend{
		Name:     "hip",
		IsActive: HIPIsActive,
		New: func(log *zap.Logger) (Driver, error) {
			return NewHIPDriver(log)
		},
		FromRuntime: func(rt accel.Runtime, log *zap.Logger) Driver {
			return NewHIPDriverFromRuntime(rt, log)
		},
	})
	Register(Backend{
		Name:     "cpu",
		IsActive: func() bool { return true },
		New: func(log *zap.Logger) (Driver, error) {
			return NewCPUDriver(log), nil
		},
	})
}

// Register adds or replaces a backend.
func Register(b Backend) {
	if b.Name == "" || b.IsActive == nil || b.New == nil {
		panic(fmt.Sprintf("driver: incomplete backend registration %q", b.Name))
	}
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[b.Name] = b
}

// Lookup returns the backend registered under name.
func Lookup(name string) (Backend, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	b, ok := backends[name]
	if !ok {
		return Backend{}, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
	return b, nil
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
