package foundation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/chazu/dynamic/invoke"
)

// Exception names raised by the class library.
const (
	InvalidArgumentException = "NSInvalidArgumentException"
	RangeException           = "NSRangeException"
	GenericException         = "NSGenericException"
)

// raise panics with a new exception. The invocation layer recovers it and
// captures it as a raised error.
func raise(name, format string, args ...any) {
	panic(NewException(name, fmt.Sprintf(format, args...), nil))
}

func stringArg(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case invoke.Selector:
		return string(s)
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}

func int64Arg(v any) (int64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float()), true
	case reflect.Bool:
		if rv.Bool() {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func float64Arg(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	i, ok := int64Arg(v)
	return float64(i), ok
}

func isNumber(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func environMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
