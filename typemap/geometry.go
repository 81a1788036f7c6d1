package typemap

// Host-side aggregates with a registered native layout.

type Point struct {
	X, Y float64
}

type Vector struct {
	DX, DY float64
}

type Size struct {
	Width, Height float64
}

type Rect struct {
	Origin Point
	Size   Size
}

type AffineTransform struct {
	A, B, C, D, TX, TY float64
}

type EdgeInsets struct {
	Top, Left, Bottom, Right float64
}

type Offset struct {
	Horizontal, Vertical float64
}

type Transform3D struct {
	M11, M12, M13, M14 float64
	M21, M22, M23, M24 float64
	M31, M32, M33, M34 float64
	M41, M42, M43, M44 float64
}

type Range struct {
	Location, Length uint64
}

type OperatingSystemVersion struct {
	Major, Minor, Patch int64
}

// AtLeast reports whether v is the same as or newer than o.
func (v OperatingSystemVersion) AtLeast(o OperatingSystemVersion) bool {
	if v.Major != o.Major {
		return v.Major > o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor > o.Minor
	}
	return v.Patch >= o.Patch
}

// Native encodings for the built-in mappings.
const (
	PointEncoding                  = "{CGPoint=dd}"
	VectorEncoding                 = "{CGVector=dd}"
	SizeEncoding                   = "{CGSize=dd}"
	RectEncoding                   = "{CGRect={CGPoint=dd}{CGSize=dd}}"
	AffineTransformEncoding        = "{CGAffineTransform=dddddd}"
	EdgeInsetsEncoding             = "{UIEdgeInsets=dddd}"
	OffsetEncoding                 = "{UIOffset=dd}"
	Transform3DEncoding            = "{CATransform3D=dddddddddddddddd}"
	RangeEncoding                  = "{_NSRange=QQ}"
	OperatingSystemVersionEncoding = "{NSOperatingSystemVersion=qqq}"
)
