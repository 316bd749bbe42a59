package driver

import (
	"sort"
	"strings"
)

// TypeString is the compiler's vendor-agnostic token for a scalar or pointer
// type, e.g. "i32", "fp16" or "*bf16".
type TypeString string

// IsPointer reports whether t denotes a pointer.
func (t TypeString) IsPointer() bool {
	return strings.HasPrefix(string(t), "*")
}

// Pointee returns the element type of a pointer token.
func (t TypeString) Pointee() TypeString {
	return TypeString(strings.TrimPrefix(string(t), "*"))
}

// Launch arguments are marshalled through the host ABI: sub-word integers
// keep their width, floating point scalars are passed as double.
var scalarTypes = map[TypeString]string{
	"i1":   "int32_t",
	"i8":   "int8_t",
	"i16":  "int16_t",
	"i32":  "int32_t",
	"i64":  "int64_t",
	"u1":   "uint32_t",
	"u8":   "uint8_t",
	"u16":  "uint16_t",
	"u32":  "uint32_t",
	"u64":  "uint64_t",
	"fp16": "double",
	"bf16": "double",
	"fp32": "double",
	"f32":  "double",
	"fp64": "double",
}

// fp8 element types only ever appear behind a pointer.
var fp8Types = []TypeString{"fp8e4nv", "fp8e4b8", "fp8e4b15", "fp8e5", "fp8e5b16"}

var pointeeTypes = func() map[TypeString]struct{} {
	m := make(map[TypeString]struct{}, len(scalarTypes)+len(fp8Types))
	for ty := range scalarTypes {
		m[ty] = struct{}{}
	}
	for _, ty := range fp8Types {
		m[ty] = struct{}{}
	}
	return m
}()

// TypeMap maps type strings to a backend's native type names.
// The zero value maps nothing.
type TypeMap struct {
	backend  string
	pointer  string
	scalars  map[TypeString]string
	pointees map[TypeString]struct{}
}

// NewTypeMap builds the common scalar table with the given native pointer
// type. extra adds or overrides backend-specific scalars; each extra scalar
// is also accepted behind a pointer.
func NewTypeMap(backend, pointer string, extra map[TypeString]string) *TypeMap {
	scalars := make(map[TypeString]string, len(scalarTypes)+len(extra))
	for ty, native := range scalarTypes {
		scalars[ty] = native
	}
	pointees := make(map[TypeString]struct{}, len(pointeeTypes)+len(extra))
	for ty := range pointeeTypes {
		pointees[ty] = struct{}{}
	}
	for ty, native := range extra {
		scalars[ty] = native
		pointees[ty] = struct{}{}
	}
	return &TypeMap{backend: backend, pointer: pointer, scalars: scalars, pointees: pointees}
}

// withOpaque adds a by-value type that is never accepted behind a pointer.
func (m *TypeMap) withOpaque(ty TypeString, native string) *TypeMap {
	m.scalars[ty] = native
	return m
}

// Map returns the native type for ty or an *UnsupportedTypeError.
func (m *TypeMap) Map(ty TypeString) (string, error) {
	if ty.IsPointer() {
		if _, ok := m.pointees[ty.Pointee()]; ok && m.pointer != "" {
			return m.pointer, nil
		}
		return "", &UnsupportedTypeError{Backend: m.backend, Type: ty}
	}
	if native, ok := m.scalars[ty]; ok {
		return native, nil
	}
	return "", &UnsupportedTypeError{Backend: m.backend, Type: ty}
}

// Vocabulary lists every token the map accepts, sorted.
func (m *TypeMap) Vocabulary() []TypeString {
	vocab := make([]TypeString, 0, len(m.scalars)+len(m.pointees))
	for ty := range m.scalars {
		vocab = append(vocab, ty)
	}
	if m.pointer != "" {
		for ty := range m.pointees {
			vocab = append(vocab, "*"+ty)
		}
	}
	sort.Slice(vocab, func(i, j int) bool { return vocab[i] < vocab[j] })
	return vocab
}

var (
	cudaTypes = NewTypeMap("cuda", "CUdeviceptr", nil).withOpaque("nvTmaDesc", "CUtensorMap")
	hipTypes = NewTypeMap("hip", "hipDeviceptr_t", nil)
	cpuTypes = NewTypeMap("cpu", "void*", nil)
)
