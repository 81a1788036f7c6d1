package foundation

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"reflect"
)

func installData(f *Foundation) {
	m := f.Space.NewMethodTable()

	m.AddClassMethod("data", "@16@0:8", func(any, []any) (any, error) {
		return []byte{}, nil
	})
	m.AddClassMethod("dataWithData:", "@24@0:8@16", func(_ any, args []any) (any, error) {
		return bytes.Clone(dataArg(args[0])), nil
	})

	m.AddInstanceMethod("initWithBase64EncodedString:options:", "@32@0:8@16Q24", func(_ any, args []any) (any, error) {
		b, err := base64.StdEncoding.DecodeString(stringArg(args[0]))
		if err != nil {
			return nil, nil
		}
		return b, nil
	})
	m.AddInstanceMethod("length", "Q16@0:8", func(self any, _ []any) (any, error) {
		return uint64(len(self.([]byte))), nil
	})
	m.AddInstanceMethod("base64EncodedStringWithOptions:", "@24@0:8Q16", func(self any, _ []any) (any, error) {
		return base64.StdEncoding.EncodeToString(self.([]byte)), nil
	})
	m.AddInstanceMethod("isEqualToData:", "B24@0:8@16", func(self any, args []any) (any, error) {
		other, ok := args[0].([]byte)
		return ok && bytes.Equal(self.([]byte), other), nil
	})
	m.AddInstanceMethod("subdataWithRange:", "@32@0:8{_NSRange=QQ}16", func(self any, args []any) (any, error) {
		data := self.([]byte)
		r := rangeArg(args[0])
		if r.Location+r.Length > uint64(len(data)) {
			raise(RangeException, "range {%d, %d} exceeds data length %d", r.Location, r.Length, len(data))
		}
		return bytes.Clone(data[r.Location : r.Location+r.Length]), nil
	})
	m.AddInstanceMethod("description", "@16@0:8", func(self any, _ []any) (any, error) {
		return "<" + hex.EncodeToString(self.([]byte)) + ">", nil
	})

	f.Space.RegisterGoType("NSData", "NSObject", reflect.TypeFor[[]byte](), func() any { return []byte{} }, m)
}

func dataArg(v any) []byte {
	switch d := v.(type) {
	case []byte:
		return d
	case string:
		return []byte(d)
	}
	return nil
}
