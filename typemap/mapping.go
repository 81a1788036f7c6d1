// Package typemap converts between host Go aggregates and their native
// struct layouts, and bridges boxed numbers to host numeric types.
package typemap

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/chazu/dynamic/typeenc"
)

// Mapping pairs a Go type with a native struct encoding.
type Mapping struct {
	GoType     reflect.Type
	Descriptor *typeenc.Descriptor
}

// Registry maps Go types to native encodings and back.
// Safe for concurrent registration and lookup.
type Registry struct {
	mu         sync.RWMutex
	byType     map[reflect.Type]*Mapping
	byEncoding map[string]*Mapping
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byType:     make(map[reflect.Type]*Mapping),
		byEncoding: make(map[string]*Mapping),
	}
}

// NewDefaultRegistry creates a registry holding the built-in geometry and
// Foundation aggregate mappings.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.mustRegister(reflect.TypeFor[Point](), PointEncoding)
	r.mustRegister(reflect.TypeFor[Vector](), VectorEncoding)
	r.mustRegister(reflect.TypeFor[Size](), SizeEncoding)
	r.mustRegister(reflect.TypeFor[Rect](), RectEncoding)
	r.mustRegister(reflect.TypeFor[AffineTransform](), AffineTransformEncoding)
	r.mustRegister(reflect.TypeFor[EdgeInsets](), EdgeInsetsEncoding)
	r.mustRegister(reflect.TypeFor[Offset](), OffsetEncoding)
	r.mustRegister(reflect.TypeFor[Transform3D](), Transform3DEncoding)
	r.mustRegister(reflect.TypeFor[Range](), RangeEncoding)
	r.mustRegister(reflect.TypeFor[OperatingSystemVersion](), OperatingSystemVersionEncoding)
	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry with the built-in mappings.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewDefaultRegistry()
	})
	return defaultRegistry
}

// Register adds a mapping. The Go type's size and alignment must match the
// encoding's layout. Re-registering the same pair is a no-op.
func (r *Registry) Register(goType reflect.Type, encoding string) error {
	d, err := typeenc.Parse(encoding)
	if err != nil {
		return err
	}
	if d.Category != typeenc.CategoryStruct {
		return fmt.Errorf("typemap: %s is not an aggregate encoding", encoding)
	}
	if goType.Size() != d.Size || uintptr(goType.Align()) != d.Align {
		return fmt.Errorf("typemap: %s (size=%d align=%d) does not match %s (size=%d align=%d): %w",
			goType, goType.Size(), goType.Align(), encoding, d.Size, d.Align, typeenc.ErrTypeMismatch)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byType[goType]; ok {
		if existing.Descriptor.Encoding == d.Encoding {
			return nil
		}
		return fmt.Errorf("typemap: %s already mapped to %s", goType, existing.Descriptor.Encoding)
	}
	m := &Mapping{GoType: goType, Descriptor: d}
	r.byType[goType] = m
	r.byEncoding[d.Encoding] = m
	return nil
}

func (r *Registry) mustRegister(goType reflect.Type, encoding string) {
	if err := r.Register(goType, encoding); err != nil {
		panic(err)
	}
}

// Lookup returns the mapping for a Go type.
func (r *Registry) Lookup(goType reflect.Type) (*Mapping, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byType[goType]
	return m, ok
}

// LookupEncoding returns the mapping for a native encoding.
func (r *Registry) LookupEncoding(encoding string) (*Mapping, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byEncoding[encoding]
	return m, ok
}

// Len returns the number of mappings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byType)
}

// ConvertToNative returns the native layout of a mapped host aggregate.
// It reports false for values whose type is not mapped; such values are
// passed through unchanged by callers.
func (r *Registry) ConvertToNative(value any) (*typeenc.Boxed, bool) {
	if value == nil {
		return nil, false
	}
	m, ok := r.Lookup(reflect.TypeOf(value))
	if !ok {
		return nil, false
	}
	data, err := typeenc.Encode(m.Descriptor, value)
	if err != nil {
		return nil, false
	}
	return typeenc.NewBoxed(m.Descriptor, data), true
}

// NativeType returns the native descriptor registered for a host type.
func (r *Registry) NativeType(hostType reflect.Type) (*typeenc.Descriptor, bool) {
	m, ok := r.Lookup(hostType)
	if !ok {
		return nil, false
	}
	return m.Descriptor, true
}

// ConvertFromNative converts a boxed native aggregate to the host value
// registered for its encoding.
func (r *Registry) ConvertFromNative(object any) (any, bool) {
	box, ok := object.(*typeenc.Boxed)
	if !ok {
		return nil, false
	}
	m, ok := r.LookupEncoding(box.Encoding())
	if !ok {
		return nil, false
	}
	v, ok := typeenc.DecodeValue(box.Descriptor(), box.Bytes(), m.GoType)
	if !ok {
		return nil, false
	}
	return v.Interface(), true
}
