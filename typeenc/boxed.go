package typeenc

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Boxed holds a native value together with its descriptor. Runtimes use it
// for aggregates passed by value, and as the payload of value objects.
type Boxed struct {
	desc *Descriptor
	data []byte
}

// NewBoxed copies data into a new box sized for d.
func NewBoxed(d *Descriptor, data []byte) *Boxed {
	buf := make([]byte, d.Size)
	copy(buf, data)
	return &Boxed{desc: d, data: buf}
}

// Box encodes a host value under the given encoding.
func Box(enc string, v any) (*Boxed, error) {
	d, err := Parse(enc)
	if err != nil {
		return nil, err
	}
	data, err := Encode(d, v)
	if err != nil {
		return nil, err
	}
	return &Boxed{desc: d, data: data}, nil
}

// Unbox decodes a box as T under the same rules as Decode.
func Unbox[T any](b *Boxed) (T, bool) {
	if b == nil {
		var zero T
		return zero, false
	}
	return Decode[T](b.desc, b.data)
}

func (b *Boxed) Descriptor() *Descriptor { return b.desc }
func (b *Boxed) Encoding() string        { return b.desc.Encoding }

// Bytes returns a copy of the native bytes.
func (b *Boxed) Bytes() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Equal reports whether two boxes have the same encoding and bytes.
func (b *Boxed) Equal(o *Boxed) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.desc.Encoding == o.desc.Encoding && bytes.Equal(b.data, o.data)
}

func (b *Boxed) String() string {
	return fmt.Sprintf("<%s %s>", b.desc.Encoding, hex.EncodeToString(b.data))
}
