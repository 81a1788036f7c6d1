package foundation

import (
	"reflect"

	"github.com/chazu/dynamic/typeenc"
	"github.com/chazu/dynamic/typemap"
)

func installValue(f *Foundation) {
	m := f.Space.NewMethodTable()
	boxed := func(_ any, args []any) (any, error) { return args[0], nil }
	unboxed := func(self any, _ []any) (any, error) { return self, nil }

	m.AddClassMethod("valueWithPoint:", "@32@0:8"+typemap.PointEncoding+"16", boxed)
	m.AddClassMethod("valueWithCGPoint:", "@32@0:8"+typemap.PointEncoding+"16", boxed)
	m.AddClassMethod("valueWithSize:", "@32@0:8"+typemap.SizeEncoding+"16", boxed)
	m.AddClassMethod("valueWithCGSize:", "@32@0:8"+typemap.SizeEncoding+"16", boxed)
	m.AddClassMethod("valueWithRect:", "@48@0:8"+typemap.RectEncoding+"16", boxed)
	m.AddClassMethod("valueWithCGRect:", "@48@0:8"+typemap.RectEncoding+"16", boxed)
	m.AddClassMethod("valueWithCGVector:", "@32@0:8"+typemap.VectorEncoding+"16", boxed)
	m.AddClassMethod("valueWithCGAffineTransform:", "@64@0:8"+typemap.AffineTransformEncoding+"16", boxed)
	m.AddClassMethod("valueWithUIEdgeInsets:", "@48@0:8"+typemap.EdgeInsetsEncoding+"16", boxed)
	m.AddClassMethod("valueWithUIOffset:", "@32@0:8"+typemap.OffsetEncoding+"16", boxed)
	m.AddClassMethod("valueWithCATransform3D:", "@144@0:8"+typemap.Transform3DEncoding+"16", boxed)
	m.AddClassMethod("valueWithRange:", "@32@0:8"+typemap.RangeEncoding+"16", boxed)

	// Accessors return the box itself; the runtime refuses a box whose
	// layout differs from the accessor's return type.
	m.AddInstanceMethod("pointValue", typemap.PointEncoding+"16@0:8", unboxed)
	m.AddInstanceMethod("CGPointValue", typemap.PointEncoding+"16@0:8", unboxed)
	m.AddInstanceMethod("sizeValue", typemap.SizeEncoding+"16@0:8", unboxed)
	m.AddInstanceMethod("CGSizeValue", typemap.SizeEncoding+"16@0:8", unboxed)
	m.AddInstanceMethod("rectValue", typemap.RectEncoding+"16@0:8", unboxed)
	m.AddInstanceMethod("CGRectValue", typemap.RectEncoding+"16@0:8", unboxed)
	m.AddInstanceMethod("CGVectorValue", typemap.VectorEncoding+"16@0:8", unboxed)
	m.AddInstanceMethod("CGAffineTransformValue", typemap.AffineTransformEncoding+"16@0:8", unboxed)
	m.AddInstanceMethod("UIEdgeInsetsValue", typemap.EdgeInsetsEncoding+"16@0:8", unboxed)
	m.AddInstanceMethod("UIOffsetValue", typemap.OffsetEncoding+"16@0:8", unboxed)
	m.AddInstanceMethod("CATransform3DValue", typemap.Transform3DEncoding+"16@0:8", unboxed)
	m.AddInstanceMethod("rangeValue", typemap.RangeEncoding+"16@0:8", unboxed)

	m.AddInstanceMethod("objCType", "*16@0:8", func(self any, _ []any) (any, error) {
		return self.(*typeenc.Boxed).Encoding(), nil
	})
	m.AddInstanceMethod("isEqualToValue:", "B24@0:8@16", func(self any, args []any) (any, error) {
		other, ok := args[0].(*typeenc.Boxed)
		return ok && self.(*typeenc.Boxed).Equal(other), nil
	})
	m.AddInstanceMethod("isEqual:", "B24@0:8@16", func(self any, args []any) (any, error) {
		other, ok := args[0].(*typeenc.Boxed)
		return ok && self.(*typeenc.Boxed).Equal(other), nil
	})
	m.AddInstanceMethod("description", "@16@0:8", func(self any, _ []any) (any, error) {
		return self.(*typeenc.Boxed).String(), nil
	})

	f.Space.RegisterGoType("NSValue", "NSObject", reflect.TypeFor[*typeenc.Boxed](), nil, m)
}

// rangeArg reads an NSRange argument.
func rangeArg(v any) typemap.Range {
	if b, ok := v.(*typeenc.Boxed); ok {
		if r, ok := typeenc.Unbox[typemap.Range](b); ok {
			return r
		}
	}
	raise(InvalidArgumentException, "expected a range, got %T", v)
	return typemap.Range{}
}
