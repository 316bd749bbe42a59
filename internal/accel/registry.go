package accel

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrMissingRuntime is returned when a runtime is not linked into the binary.
var ErrMissingRuntime = errors.New("accelerator runtime not available")

// OpenFunc opens a linked runtime.
type OpenFunc func() (Runtime, error)

var (
	mu      sync.RWMutex
	openers = make(map[string]OpenFunc)
)

// Register makes a runtime available under name. It is meant to be called
// from init functions of build-tagged runtime bindings.
func Register(name string, open OpenFunc) {
	mu.Lock()
	defer mu.Unlock()
	openers[name] = open
}

// Open returns the runtime registered under name. If none is linked the
// error matches ErrMissingRuntime.
func Open(name string) (Runtime, error) {
	mu.RLock()
	open, ok := openers[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRuntime, name)
	}
	return open()
}

// Available reports whether the runtime is linked and enumerates at least one
// device. It never panics and never returns an error.
func Available(name string) bool {
	rt, err := Open(name)
	if err != nil {
		return false
	}
	n, err := rt.DeviceCount()
	return err == nil && n > 0
}

// Names returns the names of all linked runtimes, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(openers))
	for name := range openers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
