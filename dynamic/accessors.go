package dynamic

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/chazu/dynamic/invoke"
	"github.com/chazu/dynamic/typeenc"
	"github.com/chazu/dynamic/typemap"
)

// AsAnyObject resolves the reference and returns its value, including
// class identities and captured errors.
func (r *Ref) AsAnyObject() any {
	return r.ResolvedObject()
}

// AsObject is AsAnyObject without class identities.
func (r *Ref) AsObject() any {
	obj := r.AsAnyObject()
	if invoke.IsClass(obj) {
		return nil
	}
	return obj
}

// Err returns the captured error, or nil.
func (r *Ref) Err() error {
	o := r.resolve()
	r.env.log.End()
	return o.err
}

// IsError reports whether the reference resolves to an error.
func (r *Ref) IsError() bool {
	return r.Err() != nil
}

// IsNil reports whether the reference resolves to no object. A scalar
// return counts as nil.
func (r *Ref) IsNil() bool {
	return r.AsAnyObject() == nil
}

// AsString returns a string value as is and describes any other object
// with its description message.
func (r *Ref) AsString() (string, bool) {
	o := r.resolve().then(func(v any) outcome {
		if s, isStr := v.(string); isStr {
			return success(s)
		}
		return success(r.describeObject(v))
	})
	r.env.log.End()

	switch o.kind {
	case kindOk:
		return o.value.(string), true
	case kindError:
		return o.err.Error(), true
	}
	return "", false
}

func (r *Ref) describeObject(v any) string {
	inv, err := invoke.New(r.env.rt, v, "description", invoke.WithMappings(r.env.mappings))
	if err == nil {
		inv.Invoke()
		if s, isStr := inv.ReturnedObject().(string); isStr {
			return s
		}
	}
	if s, isStringer := v.(fmt.Stringer); isStringer {
		return s.String()
	}
	return fmt.Sprint(v)
}

// AsArray returns the resolved value if it is an array.
func (r *Ref) AsArray() ([]any, bool) {
	a, ok := r.AsAnyObject().([]any)
	return a, ok
}

// AsDictionary returns the resolved value if it is a dictionary.
func (r *Ref) AsDictionary() (map[string]any, bool) {
	d, ok := r.AsAnyObject().(map[string]any)
	return d, ok
}

// AsBoxed returns the value as a native box: a resolved *typeenc.Boxed,
// or the raw return of a scalar or aggregate message.
func (r *Ref) AsBoxed() (*typeenc.Boxed, bool) {
	o := r.resolve()
	r.env.log.End()
	if o.kind == kindError {
		return nil, false
	}
	if b, isBox := o.value.(*typeenc.Boxed); isBox {
		return b, true
	}
	if r.inv == nil || !r.inv.IsInvoked() || r.inv.ReturnsObject() || !r.inv.ReturnsAny() {
		return nil, false
	}
	buf := make([]byte, r.inv.ReturnLength())
	r.inv.GetReturnValue(buf)
	return typeenc.NewBoxed(r.inv.ReturnDescriptor(), buf), true
}

func (r *Ref) AsInt8() (int8, bool)     { return Unwrap[int8](r) }
func (r *Ref) AsUInt8() (uint8, bool)   { return Unwrap[uint8](r) }
func (r *Ref) AsInt16() (int16, bool)   { return Unwrap[int16](r) }
func (r *Ref) AsUInt16() (uint16, bool) { return Unwrap[uint16](r) }
func (r *Ref) AsInt32() (int32, bool)   { return Unwrap[int32](r) }
func (r *Ref) AsUInt32() (uint32, bool) { return Unwrap[uint32](r) }
func (r *Ref) AsInt64() (int64, bool)   { return Unwrap[int64](r) }
func (r *Ref) AsUInt64() (uint64, bool) { return Unwrap[uint64](r) }
func (r *Ref) AsInt() (int, bool)       { return Unwrap[int](r) }
func (r *Ref) AsUInt() (uint, bool)     { return Unwrap[uint](r) }
func (r *Ref) AsFloat() (float32, bool) { return Unwrap[float32](r) }
func (r *Ref) AsDouble() (float64, bool) {
	return Unwrap[float64](r)
}
func (r *Ref) AsBool() (bool, bool) { return Unwrap[bool](r) }

func (r *Ref) AsSelector() (invoke.Selector, bool) {
	return Unwrap[invoke.Selector](r)
}

func (r *Ref) AsPoint() (typemap.Point, bool)           { return Unwrap[typemap.Point](r) }
func (r *Ref) AsVector() (typemap.Vector, bool)         { return Unwrap[typemap.Vector](r) }
func (r *Ref) AsSize() (typemap.Size, bool)             { return Unwrap[typemap.Size](r) }
func (r *Ref) AsRect() (typemap.Rect, bool)             { return Unwrap[typemap.Rect](r) }
func (r *Ref) AsEdgeInsets() (typemap.EdgeInsets, bool) { return Unwrap[typemap.EdgeInsets](r) }
func (r *Ref) AsOffset() (typemap.Offset, bool)         { return Unwrap[typemap.Offset](r) }
func (r *Ref) AsAffineTransform() (typemap.AffineTransform, bool) {
	return Unwrap[typemap.AffineTransform](r)
}
func (r *Ref) AsTransform3D() (typemap.Transform3D, bool) {
	return Unwrap[typemap.Transform3D](r)
}

// AsInferred is Unwrap with the type taken from the destination.
func AsInferred[T any](r *Ref, dst *T) bool {
	v, ok := Unwrap[T](r)
	if ok {
		*dst = v
	}
	return ok
}

// Unwrap resolves r and returns its value as T. Object results are cast,
// converted through a registered aggregate mapping, or bridged between
// numeric kinds. Scalar and aggregate results decode only when T's size
// and alignment equal the return type's. Any mismatch, an error, or no
// value reports false.
func Unwrap[T any](r *Ref) (T, bool) {
	var zero T
	o := r.resolve()
	r.env.log.End()
	if o.kind == kindError {
		return zero, false
	}

	if r.inv == nil || !r.inv.IsInvoked() {
		return castObject[T](r.env.mappings, o.value)
	}
	if r.inv.ReturnsObject() {
		return castObject[T](r.env.mappings, r.inv.ReturnedObject())
	}
	if !r.inv.ReturnsAny() {
		return zero, false
	}
	buf := make([]byte, r.inv.ReturnLength())
	r.inv.GetReturnValue(buf)
	return typeenc.Decode[T](r.inv.ReturnDescriptor(), buf)
}

func castObject[T any](mappings *typemap.Registry, obj any) (T, bool) {
	var zero T
	if obj == nil {
		return zero, false
	}
	if v, ok := obj.(T); ok {
		return v, true
	}

	t := reflect.TypeFor[T]()
	if want, mapped := mappings.NativeType(t); mapped {
		if box, isBox := obj.(*typeenc.Boxed); isBox && box.Encoding() == want.Encoding {
			if v, ok := mappings.ConvertFromNative(box); ok {
				return v.(T), true
			}
		}
		return zero, false
	}

	if v, ok := typemap.Bridge(obj, t); ok {
		return v.(T), true
	}
	return zero, false
}

// IsNotUnderstood reports whether err is a message the target did not
// understand.
func IsNotUnderstood(err error) bool {
	return errors.Is(err, invoke.ErrNotFound)
}
