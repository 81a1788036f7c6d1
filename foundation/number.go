package foundation

import (
	"reflect"
	"strconv"
)

var numberTypes = []reflect.Type{
	reflect.TypeFor[int](),
	reflect.TypeFor[int8](),
	reflect.TypeFor[int16](),
	reflect.TypeFor[int32](),
	reflect.TypeFor[int64](),
	reflect.TypeFor[uint](),
	reflect.TypeFor[uint8](),
	reflect.TypeFor[uint16](),
	reflect.TypeFor[uint32](),
	reflect.TypeFor[uint64](),
	reflect.TypeFor[float32](),
	reflect.TypeFor[float64](),
}

func installNumber(f *Foundation) {
	m := f.Space.NewMethodTable()

	identity := func(self any, _ []any) (any, error) { return self, nil }
	first := func(_ any, args []any) (any, error) { return args[0], nil }

	m.AddClassMethod("numberWithChar:", "@20@0:8c16", first)
	m.AddClassMethod("numberWithShort:", "@20@0:8s16", first)
	m.AddClassMethod("numberWithInt:", "@20@0:8i16", first)
	m.AddClassMethod("numberWithInteger:", "@24@0:8q16", first)
	m.AddClassMethod("numberWithLongLong:", "@24@0:8q16", first)
	m.AddClassMethod("numberWithUnsignedInt:", "@20@0:8I16", first)
	m.AddClassMethod("numberWithUnsignedInteger:", "@24@0:8Q16", first)
	m.AddClassMethod("numberWithFloat:", "@20@0:8f16", first)
	m.AddClassMethod("numberWithDouble:", "@24@0:8d16", first)
	m.AddClassMethod("numberWithBool:", "@20@0:8B16", first)

	// The runtime converts the receiver to each accessor's return type.
	m.AddInstanceMethod("charValue", "c16@0:8", identity)
	m.AddInstanceMethod("unsignedCharValue", "C16@0:8", identity)
	m.AddInstanceMethod("shortValue", "s16@0:8", identity)
	m.AddInstanceMethod("unsignedShortValue", "S16@0:8", identity)
	m.AddInstanceMethod("intValue", "i16@0:8", identity)
	m.AddInstanceMethod("unsignedIntValue", "I16@0:8", identity)
	m.AddInstanceMethod("integerValue", "q16@0:8", identity)
	m.AddInstanceMethod("longLongValue", "q16@0:8", identity)
	m.AddInstanceMethod("unsignedIntegerValue", "Q16@0:8", identity)
	m.AddInstanceMethod("unsignedLongLongValue", "Q16@0:8", identity)
	m.AddInstanceMethod("floatValue", "f16@0:8", identity)
	m.AddInstanceMethod("doubleValue", "d16@0:8", identity)
	m.AddInstanceMethod("boolValue", "B16@0:8", identity)

	m.AddInstanceMethod("stringValue", "@16@0:8", func(self any, _ []any) (any, error) {
		return formatNumber(self), nil
	})
	m.AddInstanceMethod("description", "@16@0:8", func(self any, _ []any) (any, error) {
		return formatNumber(self), nil
	})
	m.AddInstanceMethod("isEqualToNumber:", "B24@0:8@16", func(self any, args []any) (any, error) {
		return isNumber(args[0]) && compareNumbers(self, args[0]) == 0, nil
	})
	m.AddInstanceMethod("isEqual:", "B24@0:8@16", func(self any, args []any) (any, error) {
		return isNumber(args[0]) && compareNumbers(self, args[0]) == 0, nil
	})
	m.AddInstanceMethod("compare:", "q24@0:8@16", func(self any, args []any) (any, error) {
		if !isNumber(args[0]) {
			raise(InvalidArgumentException, "compare: with %T", args[0])
		}
		return int64(compareNumbers(self, args[0])), nil
	})

	f.Space.RegisterGoType("NSNumber", "NSObject", reflect.TypeFor[bool](), func() any { return int64(0) }, m)
	for _, t := range numberTypes {
		f.Space.Bind(t, "NSNumber")
	}
}

func formatNumber(v any) string {
	switch n := v.(type) {
	case bool:
		if n {
			return "1"
		}
		return "0"
	case float32:
		return strconv.FormatFloat(float64(n), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	i, _ := int64Arg(v)
	if u, ok := v.(uint64); ok {
		return strconv.FormatUint(u, 10)
	}
	return strconv.FormatInt(i, 10)
}

func compareNumbers(a, b any) int {
	x, _ := float64Arg(a)
	y, _ := float64Arg(b)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}
