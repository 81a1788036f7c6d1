package foundation

import (
	"reflect"
	"strconv"
	"strings"
	"unicode/utf16"
)

func installString(f *Foundation) {
	m := f.Space.NewMethodTable()

	m.AddClassMethod("string", "@16@0:8", func(any, []any) (any, error) {
		return "", nil
	})
	m.AddClassMethod("stringWithString:", "@24@0:8@16", func(_ any, args []any) (any, error) {
		return stringArg(args[0]), nil
	})

	m.AddInstanceMethod("initWithString:", "@24@0:8@16", func(_ any, args []any) (any, error) {
		return stringArg(args[0]), nil
	})
	m.AddInstanceMethod("length", "Q16@0:8", func(self any, _ []any) (any, error) {
		return uint64(len(utf16.Encode([]rune(self.(string))))), nil
	})
	m.AddInstanceMethod("characterAtIndex:", "S24@0:8Q16", func(self any, args []any) (any, error) {
		units := utf16.Encode([]rune(self.(string)))
		i := args[0].(uint64)
		if i >= uint64(len(units)) {
			raise(RangeException, "index %d beyond bounds %d", i, len(units))
		}
		return units[i], nil
	})
	m.AddInstanceMethod("description", "@16@0:8", func(self any, _ []any) (any, error) {
		return self, nil
	})
	m.AddInstanceMethod("UTF8String", "*16@0:8", func(self any, _ []any) (any, error) {
		return self, nil
	})
	m.AddInstanceMethod("uppercaseString", "@16@0:8", func(self any, _ []any) (any, error) {
		return strings.ToUpper(self.(string)), nil
	})
	m.AddInstanceMethod("lowercaseString", "@16@0:8", func(self any, _ []any) (any, error) {
		return strings.ToLower(self.(string)), nil
	})
	m.AddInstanceMethod("stringByAppendingString:", "@24@0:8@16", func(self any, args []any) (any, error) {
		return self.(string) + stringArg(args[0]), nil
	})
	m.AddInstanceMethod("stringByTrimmingWhitespace", "@16@0:8", func(self any, _ []any) (any, error) {
		return strings.TrimSpace(self.(string)), nil
	})
	m.AddInstanceMethod("componentsSeparatedByString:", "@24@0:8@16", func(self any, args []any) (any, error) {
		parts := strings.Split(self.(string), stringArg(args[0]))
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return out, nil
	})
	m.AddInstanceMethod("hasPrefix:", "B24@0:8@16", func(self any, args []any) (any, error) {
		return strings.HasPrefix(self.(string), stringArg(args[0])), nil
	})
	m.AddInstanceMethod("hasSuffix:", "B24@0:8@16", func(self any, args []any) (any, error) {
		return strings.HasSuffix(self.(string), stringArg(args[0])), nil
	})
	m.AddInstanceMethod("containsString:", "B24@0:8@16", func(self any, args []any) (any, error) {
		return strings.Contains(self.(string), stringArg(args[0])), nil
	})
	m.AddInstanceMethod("isEqualToString:", "B24@0:8@16", func(self any, args []any) (any, error) {
		s, ok := args[0].(string)
		return ok && s == self.(string), nil
	})
	m.AddInstanceMethod("intValue", "i16@0:8", func(self any, _ []any) (any, error) {
		return int32(leadingInt(self.(string))), nil
	})
	m.AddInstanceMethod("integerValue", "q16@0:8", func(self any, _ []any) (any, error) {
		return leadingInt(self.(string)), nil
	})
	m.AddInstanceMethod("longLongValue", "q16@0:8", func(self any, _ []any) (any, error) {
		return leadingInt(self.(string)), nil
	})
	m.AddInstanceMethod("doubleValue", "d16@0:8", func(self any, _ []any) (any, error) {
		v, _ := strconv.ParseFloat(strings.TrimSpace(self.(string)), 64)
		return v, nil
	})
	m.AddInstanceMethod("floatValue", "f16@0:8", func(self any, _ []any) (any, error) {
		v, _ := strconv.ParseFloat(strings.TrimSpace(self.(string)), 32)
		return float32(v), nil
	})
	m.AddInstanceMethod("boolValue", "B16@0:8", func(self any, _ []any) (any, error) {
		s := strings.TrimLeft(self.(string), " \t0+-")
		return s != "" && strings.ContainsRune("YyTt123456789", rune(s[0])), nil
	})

	f.Space.RegisterGoType("NSString", "NSObject", reflect.TypeFor[string](), func() any { return "" }, m)
}

// leadingInt parses the integer prefix of s, skipping leading whitespace,
// and returns 0 when there is none.
func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || (end == 0 && (c == '-' || c == '+')) {
			end++
			continue
		}
		break
	}
	v, _ := strconv.ParseInt(s[:end], 10, 64)
	return v
}
