package typeenc

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
)

var order = binary.LittleEndian

// Encode converts a host value to the native layout described by d.
// The host type's size and alignment must equal the descriptor's, and for
// scalars the numeric class (integer, float, bool) must agree. Host types
// that carry pointers are refused. A *Boxed is accepted when its layout
// matches.
func Encode(d *Descriptor, v any) ([]byte, error) {
	if d == nil || d.Category == CategoryVoid || d.Category == CategoryObject {
		return nil, fmt.Errorf("%w: cannot encode %T as raw %v", ErrTypeMismatch, v, d)
	}
	if v == nil {
		return nil, fmt.Errorf("%w: nil for %s", ErrTypeMismatch, d.Encoding)
	}
	if b, ok := v.(*Boxed); ok {
		if b.desc.Size != d.Size || b.desc.Align != d.Align {
			return nil, fmt.Errorf("%w: boxed %s for %s", ErrTypeMismatch, b.desc.Encoding, d.Encoding)
		}
		return b.Bytes(), nil
	}

	rv := reflect.ValueOf(v)
	t := rv.Type()
	if t.Size() != d.Size || uintptr(t.Align()) != d.Align {
		return nil, fmt.Errorf("%w: %s (size=%d align=%d) for %s (size=%d align=%d)",
			ErrTypeMismatch, t, t.Size(), t.Align(), d.Encoding, d.Size, d.Align)
	}
	if !plain(t) || !compatible(t, d) {
		return nil, fmt.Errorf("%w: %s for %s", ErrTypeMismatch, t, d.Encoding)
	}

	buf := make([]byte, d.Size)
	writeValue(buf, rv)
	return buf, nil
}

// Decode reinterprets native bytes as a host value of type T. It reports
// false when T's size or alignment differs from the descriptor's, when T is
// not plain data, or when buf is too short.
func Decode[T any](d *Descriptor, buf []byte) (T, bool) {
	var out T
	v, ok := DecodeValue(d, buf, reflect.TypeFor[T]())
	if !ok {
		return out, false
	}
	return v.Interface().(T), true
}

// DecodeValue is the reflective form of Decode.
func DecodeValue(d *Descriptor, buf []byte, t reflect.Type) (reflect.Value, bool) {
	if d == nil || d.Size == 0 || t == nil {
		return reflect.Value{}, false
	}
	if t.Size() != d.Size || uintptr(t.Align()) != d.Align {
		return reflect.Value{}, false
	}
	if !plain(t) || uintptr(len(buf)) < d.Size {
		return reflect.Value{}, false
	}
	v := reflect.New(t).Elem()
	readValue(buf, v)
	return v, true
}

// Coerce encodes v for d, converting between numeric representations as
// needed. Runtimes use it to write return values; callers marshaling
// arguments use the strict Encode instead.
func Coerce(d *Descriptor, v any) ([]byte, error) {
	switch d.Category {
	case CategoryVoid:
		return nil, nil
	case CategoryObject:
		return nil, fmt.Errorf("%w: objects travel as handles", ErrTypeMismatch)
	case CategoryStruct:
		if v == nil {
			return make([]byte, d.Size), nil
		}
		return Encode(d, v)
	}

	buf := make([]byte, d.Size)
	if v == nil {
		return buf, nil
	}
	rv := reflect.ValueOf(v)
	var (
		i     int64
		f     float64
		isFlt bool
	)
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			i = 1
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i = rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		i = int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		f, isFlt = rv.Float(), true
	default:
		return nil, fmt.Errorf("%w: %T for %s", ErrTypeMismatch, v, d.Encoding)
	}

	switch {
	case d.Kind == BoolChar:
		if (isFlt && f != 0) || (!isFlt && i != 0) {
			buf[0] = 1
		}
	case d.Kind == Float:
		if !isFlt {
			f = float64(i)
		}
		order.PutUint32(buf, math.Float32bits(float32(f)))
	case d.Kind == Double:
		if !isFlt {
			f = float64(i)
		}
		order.PutUint64(buf, math.Float64bits(f))
	default:
		if isFlt {
			i = int64(f)
		}
		putUint(buf, uint64(i), d.Size)
	}
	return buf, nil
}

// Unmarshal decodes native bytes into the canonical Go value for d:
// sized integers and floats for scalars, bool, *Boxed for aggregates and
// Handle for objects.
func Unmarshal(d *Descriptor, buf []byte) (any, error) {
	if uintptr(len(buf)) < d.Size {
		return nil, fmt.Errorf("%w: %d bytes for %s", ErrTypeMismatch, len(buf), d.Encoding)
	}
	switch d.Category {
	case CategoryVoid:
		return nil, nil
	case CategoryObject:
		return GetHandle(buf), nil
	case CategoryStruct:
		return NewBoxed(d, buf), nil
	}
	switch d.Kind {
	case Char:
		return int8(buf[0]), nil
	case UChar:
		return buf[0], nil
	case BoolChar:
		return buf[0] != 0, nil
	case Short:
		return int16(order.Uint16(buf)), nil
	case UShort:
		return order.Uint16(buf), nil
	case Int, Long:
		return int32(order.Uint32(buf)), nil
	case UInt, ULong:
		return order.Uint32(buf), nil
	case LongLong:
		return int64(order.Uint64(buf)), nil
	case ULongLong:
		return order.Uint64(buf), nil
	case Float:
		return math.Float32frombits(order.Uint32(buf)), nil
	case Double:
		return math.Float64frombits(order.Uint64(buf)), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrBadEncoding, d.Encoding)
}

// PutHandle stores an object handle in an 8-byte slot.
func PutHandle(buf []byte, h Handle) {
	order.PutUint64(buf, uint64(h))
}

// GetHandle reads an object handle from an 8-byte slot.
func GetHandle(buf []byte) Handle {
	if len(buf) < 8 {
		return 0
	}
	return Handle(order.Uint64(buf))
}

// plain reports whether t is pointer-free data whose fields are all
// reachable through reflection.
func plain(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Array:
		return plain(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Name != "_" && !f.IsExported() {
				return false
			}
			if !plain(f.Type) {
				return false
			}
		}
		return true
	}
	return false
}

type numClass int

const (
	classOther numClass = iota
	classInt
	classFloat
	classBool
)

func kindClass(k reflect.Kind) numClass {
	switch k {
	case reflect.Bool:
		return classBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return classInt
	case reflect.Float32, reflect.Float64:
		return classFloat
	}
	return classOther
}

func compatible(t reflect.Type, d *Descriptor) bool {
	switch d.Category {
	case CategoryStruct:
		return t.Kind() == reflect.Struct || t.Kind() == reflect.Array
	case CategoryBool:
		return t.Kind() == reflect.Bool
	case CategoryScalar:
		c := kindClass(t.Kind())
		switch {
		case d.IsFloat():
			return c == classFloat
		case d.Kind == Char:
			// 'c' doubles as the legacy BOOL encoding.
			return c == classInt || c == classBool
		default:
			return c == classInt
		}
	}
	return false
}

func putUint(buf []byte, u uint64, size uintptr) {
	switch size {
	case 1:
		buf[0] = byte(u)
	case 2:
		order.PutUint16(buf, uint16(u))
	case 4:
		order.PutUint32(buf, uint32(u))
	case 8:
		order.PutUint64(buf, u)
	}
}

func getUint(buf []byte, size uintptr) uint64 {
	switch size {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(order.Uint16(buf))
	case 4:
		return uint64(order.Uint32(buf))
	case 8:
		return order.Uint64(buf)
	}
	return 0
}

func writeValue(buf []byte, v reflect.Value) {
	t := v.Type()
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			buf[0] = 1
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		putUint(buf, uint64(v.Int()), t.Size())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		putUint(buf, v.Uint(), t.Size())
	case reflect.Float32:
		order.PutUint32(buf, math.Float32bits(float32(v.Float())))
	case reflect.Float64:
		order.PutUint64(buf, math.Float64bits(v.Float()))
	case reflect.Array:
		es := t.Elem().Size()
		for i := 0; i < v.Len(); i++ {
			writeValue(buf[uintptr(i)*es:], v.Index(i))
		}
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Name == "_" {
				continue
			}
			writeValue(buf[f.Offset:], v.Field(i))
		}
	}
}

func readValue(buf []byte, v reflect.Value) {
	t := v.Type()
	switch v.Kind() {
	case reflect.Bool:
		v.SetBool(buf[0] != 0)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		u := getUint(buf, t.Size())
		// sign-extend from the stored width
		shift := 64 - 8*t.Size()
		v.SetInt(int64(u<<shift) >> shift)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		v.SetUint(getUint(buf, t.Size()))
	case reflect.Float32:
		v.SetFloat(float64(math.Float32frombits(order.Uint32(buf))))
	case reflect.Float64:
		v.SetFloat(math.Float64frombits(order.Uint64(buf)))
	case reflect.Array:
		es := t.Elem().Size()
		for i := 0; i < v.Len(); i++ {
			readValue(buf[uintptr(i)*es:], v.Index(i))
		}
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Name == "_" {
				continue
			}
			readValue(buf[f.Offset:], v.Field(i))
		}
	}
}
