package typemap

import (
	"reflect"
)

// Bridge converts a boxed object to the requested host type the way a
// number or collection bridges across a runtime boundary: numbers and
// booleans convert between numeric kinds, strings convert to string kinds,
// and []any / map[string]any convert element-wise. It reports false when
// no conversion applies.
func Bridge(object any, to reflect.Type) (any, bool) {
	if object == nil || to == nil {
		return nil, false
	}
	v, ok := bridgeValue(reflect.ValueOf(object), to)
	if !ok {
		return nil, false
	}
	return v.Interface(), true
}

func bridgeValue(v reflect.Value, to reflect.Type) (reflect.Value, bool) {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Type().AssignableTo(to) {
		out := reflect.New(to).Elem()
		out.Set(v)
		return out, true
	}

	switch {
	case numeric(v.Kind()) && numeric(to.Kind()):
		return v.Convert(to), true
	case v.Kind() == reflect.Bool && to.Kind() == reflect.Bool:
		return v.Convert(to), true
	case v.Kind() == reflect.Bool && numeric(to.Kind()):
		n := 0
		if v.Bool() {
			n = 1
		}
		return reflect.ValueOf(n).Convert(to), true
	case numeric(v.Kind()) && to.Kind() == reflect.Bool:
		return reflect.ValueOf(!v.IsZero()).Convert(to), true
	case v.Kind() == reflect.String && to.Kind() == reflect.String:
		return v.Convert(to), true
	case v.Kind() == reflect.Slice && to.Kind() == reflect.Slice:
		out := reflect.MakeSlice(to, v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			e, ok := bridgeValue(v.Index(i), to.Elem())
			if !ok {
				return reflect.Value{}, false
			}
			out.Index(i).Set(e)
		}
		return out, true
	case v.Kind() == reflect.Map && to.Kind() == reflect.Map:
		out := reflect.MakeMapWithSize(to, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			k, ok := bridgeValue(iter.Key(), to.Key())
			if !ok {
				return reflect.Value{}, false
			}
			e, ok := bridgeValue(iter.Value(), to.Elem())
			if !ok {
				return reflect.Value{}, false
			}
			out.SetMapIndex(k, e)
		}
		return out, true
	}
	return reflect.Value{}, false
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
