package script

import (
	"reflect"
)

// binary evaluates arithmetic and comparison on plain numbers and , on
// strings. ok is false when the operands or selector are not handled here.
func binary(selector string, a, b any) (result any, ok bool, err error) {
	if sa, isStr := a.(string); isStr {
		if sb, isStr := b.(string); isStr {
			switch selector {
			case ",":
				return sa + sb, true, nil
			case "=":
				return sa == sb, true, nil
			case "~=":
				return sa != sb, true, nil
			}
		}
		return nil, false, nil
	}

	if !isNumber(a) || !isNumber(b) {
		return nil, false, nil
	}
	if isFloat(a) || isFloat(b) {
		return floatOp(selector, toFloat(a), toFloat(b))
	}
	return intOp(selector, toInt(a), toInt(b))
}

func intOp(selector string, x, y int64) (any, bool, error) {
	switch selector {
	case "+":
		return x + y, true, nil
	case "-":
		return x - y, true, nil
	case "*":
		return x * y, true, nil
	case "/", "//", "\\\\":
		if y == 0 {
			return nil, true, ErrZeroDivide
		}
		switch selector {
		case "/":
			if x%y != 0 {
				return float64(x) / float64(y), true, nil
			}
			return x / y, true, nil
		case "//":
			return floorDiv(x, y), true, nil
		}
		return x - floorDiv(x, y)*y, true, nil
	}
	return compare(selector, cmpInt(x, y))
}

// floorDiv rounds toward negative infinity.
func floorDiv(x, y int64) int64 {
	q := x / y
	if (x%y != 0) && ((x < 0) != (y < 0)) {
		q--
	}
	return q
}

func floatOp(selector string, x, y float64) (any, bool, error) {
	switch selector {
	case "+":
		return x + y, true, nil
	case "-":
		return x - y, true, nil
	case "*":
		return x * y, true, nil
	case "/":
		return x / y, true, nil
	}
	c := 0
	switch {
	case x < y:
		c = -1
	case x > y:
		c = 1
	}
	return compare(selector, c)
}

func cmpInt(x, y int64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func compare(selector string, c int) (any, bool, error) {
	switch selector {
	case "<":
		return c < 0, true, nil
	case ">":
		return c > 0, true, nil
	case "<=":
		return c <= 0, true, nil
	case ">=":
		return c >= 0, true, nil
	case "=":
		return c == 0, true, nil
	case "~=":
		return c != 0, true, nil
	}
	return nil, false, nil
}

func isNumber(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.CanInt() || rv.CanUint() || rv.CanFloat()
}

func isFloat(v any) bool {
	return reflect.ValueOf(v).CanFloat()
}

func toInt(v any) int64 {
	rv := reflect.ValueOf(v)
	if rv.CanUint() {
		return int64(rv.Uint())
	}
	return rv.Int()
}

func toFloat(v any) float64 {
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanFloat():
		return rv.Float()
	case rv.CanUint():
		return float64(rv.Uint())
	}
	return float64(rv.Int())
}
