// Package typeenc interprets runtime type-encoding strings and converts
// values to and from their native binary layout.
//
// Encodings follow the compact one-character grammar used by Objective-C
// style runtimes: "i" is a 32-bit int, "d" a double, "@" an object,
// "{CGPoint=dd}" a struct of two doubles, and so on. Native layout is
// little-endian with C alignment rules, which on 64-bit hosts coincides
// with Go's own layout for pointer-free types.
//
// This package is the only place in the module that reads or writes raw
// argument and return bytes.
package typeenc

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Category classifies a descriptor for marshaling purposes.
type Category int

const (
	CategoryVoid Category = iota
	CategoryScalar
	CategoryBool
	CategoryObject
	CategoryStruct
)

func (c Category) String() string {
	switch c {
	case CategoryVoid:
		return "void"
	case CategoryScalar:
		return "scalar"
	case CategoryBool:
		return "bool"
	case CategoryObject:
		return "object"
	case CategoryStruct:
		return "struct"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Encoding characters.
const (
	Char      = 'c'
	Int       = 'i'
	Short     = 's'
	Long      = 'l'
	LongLong  = 'q'
	UChar     = 'C'
	UInt      = 'I'
	UShort    = 'S'
	ULong     = 'L'
	ULongLong = 'Q'
	Float     = 'f'
	Double    = 'd'
	BoolChar  = 'B'
	VoidChar  = 'v'
	ObjectChr = '@'
	ClassChr  = '#'
	SelChr    = ':'
	CString   = '*'
	Unknown   = '?'
	Pointer   = '^'
)

// ErrTypeMismatch is returned when a host value's layout does not agree
// with a descriptor.
var ErrTypeMismatch = errors.New("type mismatch")

// ErrBadEncoding is returned for malformed or unsupported encodings.
var ErrBadEncoding = errors.New("bad type encoding")

// Descriptor is decoded type-encoding metadata.
type Descriptor struct {
	Encoding string
	Size     uintptr
	Align    uintptr
	Category Category

	// Kind is the scalar encoding character ('i', 'd', 'B', ...). For
	// aggregates it is '{', '(' or '['; for objects the leading character.
	Kind byte

	// Name is the aggregate tag, e.g. "CGPoint".
	Name    string
	Fields  []*Descriptor
	Offsets []uintptr
}

// IsSigned reports whether a scalar descriptor holds a signed integer.
func (d *Descriptor) IsSigned() bool {
	switch d.Kind {
	case Char, Int, Short, Long, LongLong:
		return true
	}
	return false
}

// IsFloat reports whether a scalar descriptor holds a floating point value.
func (d *Descriptor) IsFloat() bool {
	return d.Kind == Float || d.Kind == Double
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s(%s size=%d align=%d)", d.Category, d.Encoding, d.Size, d.Align)
}

// descriptorCache interns parsed encodings. Descriptors are immutable once
// published, so they are shared freely.
type descriptorCache struct {
	mu     sync.RWMutex
	byText map[string]*Descriptor
}

var cache = &descriptorCache{byText: make(map[string]*Descriptor)}

func (c *descriptorCache) get(enc string) (*Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.byText[enc]
	return d, ok
}

func (c *descriptorCache) put(enc string, d *Descriptor) *Descriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.byText[enc]; ok {
		return existing
	}
	c.byText[enc] = d
	return d
}

// Parse decodes one complete type encoding.
func Parse(enc string) (*Descriptor, error) {
	if d, ok := cache.get(enc); ok {
		return d, nil
	}
	p := &parser{src: enc}
	d, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipDigits()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("%w: trailing %q in %q", ErrBadEncoding, p.src[p.pos:], enc)
	}
	return cache.put(enc, d), nil
}

// MustParse is like Parse but panics on error. Intended for static tables.
func MustParse(enc string) *Descriptor {
	d, err := Parse(enc)
	if err != nil {
		panic(err)
	}
	return d
}

// SizeAndAlignment returns the native size and alignment of an encoding.
func SizeAndAlignment(enc string) (size, align uintptr, err error) {
	d, err := Parse(enc)
	if err != nil {
		return 0, 0, err
	}
	return d.Size, d.Align, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipQualifiers() {
	for p.pos < len(p.src) && strings.IndexByte("rnNoORVAj", p.src[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *parser) skipDigits() {
	for p.pos < len(p.src) && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '-') {
		p.pos++
	}
}

// maxArrayLength bounds [N T] so element counts and sizes cannot overflow.
const maxArrayLength = 1 << 20

func (p *parser) readArrayLength() (int, error) {
	start := p.pos
	n := 0
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		n = n*10 + int(p.src[p.pos]-'0')
		p.pos++
		if n > maxArrayLength {
			return 0, fmt.Errorf("%w: array length exceeds %d in %q", ErrBadEncoding, maxArrayLength, p.src)
		}
	}
	if p.pos == start {
		return 0, fmt.Errorf("%w: array without length in %q", ErrBadEncoding, p.src)
	}
	return n, nil
}

// skipAggregate moves past a balanced {...}, (...) or [...] starting at
// p.pos without laying it out. Pointer targets may be opaque.
func (p *parser) skipAggregate() error {
	depth := 0
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; c {
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			depth--
		case '"':
			end := strings.IndexByte(p.src[p.pos+1:], '"')
			if end < 0 {
				return fmt.Errorf("%w: unterminated name in %q", ErrBadEncoding, p.src)
			}
			p.pos += end + 1
		}
		p.pos++
		if depth == 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: unterminated aggregate in %q", ErrBadEncoding, p.src)
}

func scalar(kind byte, size uintptr) *Descriptor {
	cat := CategoryScalar
	if kind == BoolChar {
		cat = CategoryBool
	}
	return &Descriptor{Encoding: string(kind), Size: size, Align: size, Category: cat, Kind: kind}
}

func object(enc string, kind byte) *Descriptor {
	return &Descriptor{Encoding: enc, Size: 8, Align: 8, Category: CategoryObject, Kind: kind}
}

func (p *parser) parseType() (*Descriptor, error) {
	p.skipQualifiers()
	start := p.pos
	c := p.peek()
	if c == 0 {
		return nil, fmt.Errorf("%w: unexpected end of %q", ErrBadEncoding, p.src)
	}
	p.pos++

	switch c {
	case Char, BoolChar, UChar:
		return scalar(c, 1), nil
	case Short, UShort:
		return scalar(c, 2), nil
	case Int, UInt, Long, ULong, Float:
		return scalar(c, 4), nil
	case LongLong, ULongLong, Double:
		return scalar(c, 8), nil
	case VoidChar:
		return &Descriptor{Encoding: "v", Size: 0, Align: 1, Category: CategoryVoid, Kind: VoidChar}, nil
	case ObjectChr:
		// "@?" is a block; "@\"NSString\"" carries a class hint.
		if p.peek() == Unknown {
			p.pos++
		} else if p.peek() == '"' {
			end := strings.IndexByte(p.src[p.pos+1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated class hint in %q", ErrBadEncoding, p.src)
			}
			p.pos += end + 2
		}
		return object(p.src[start:p.pos], ObjectChr), nil
	case ClassChr, SelChr, CString, Unknown:
		return object(string(c), c), nil
	case Pointer:
		p.skipQualifiers()
		switch p.peek() {
		case '{', '(', '[':
			if err := p.skipAggregate(); err != nil {
				return nil, err
			}
		default:
			if _, err := p.parseType(); err != nil {
				return nil, err
			}
		}
		return object(p.src[start:p.pos], Pointer), nil
	case 'b':
		return nil, fmt.Errorf("%w: bitfields are not supported", ErrBadEncoding)
	case '{', '(':
		return p.parseAggregate(start, c)
	case '[':
		n, err := p.readArrayLength()
		if err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if p.peek() != ']' {
			return nil, fmt.Errorf("%w: unterminated array in %q", ErrBadEncoding, p.src)
		}
		p.pos++
		d := &Descriptor{
			Encoding: p.src[start:p.pos],
			Size:     elem.Size * uintptr(n),
			Align:    elem.Align,
			Category: CategoryStruct,
			Kind:     '[',
		}
		for i := 0; i < n; i++ {
			d.Fields = append(d.Fields, elem)
			d.Offsets = append(d.Offsets, elem.Size*uintptr(i))
		}
		return d, nil
	}
	return nil, fmt.Errorf("%w: unknown code %q in %q", ErrBadEncoding, c, p.src)
}

func (p *parser) parseAggregate(start int, open byte) (*Descriptor, error) {
	closeCh := byte('}')
	if open == '(' {
		closeCh = ')'
	}

	nameStart := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '=' && p.src[p.pos] != closeCh {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("%w: unterminated aggregate in %q", ErrBadEncoding, p.src)
	}
	d := &Descriptor{Name: p.src[nameStart:p.pos], Category: CategoryStruct, Kind: open}
	if p.src[p.pos] == '=' {
		p.pos++
		for p.peek() != closeCh {
			if p.peek() == 0 {
				return nil, fmt.Errorf("%w: unterminated aggregate in %q", ErrBadEncoding, p.src)
			}
			// Field names may appear quoted: {CGPoint="x"d"y"d}
			if p.peek() == '"' {
				end := strings.IndexByte(p.src[p.pos+1:], '"')
				if end < 0 {
					return nil, fmt.Errorf("%w: unterminated field name in %q", ErrBadEncoding, p.src)
				}
				p.pos += end + 2
			}
			f, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if f.Category == CategoryVoid {
				return nil, fmt.Errorf("%w: void field in %q", ErrBadEncoding, p.src)
			}
			d.Fields = append(d.Fields, f)
		}
	}
	p.pos++
	d.Encoding = p.src[start:p.pos]
	if len(d.Fields) == 0 {
		return nil, fmt.Errorf("%w: opaque aggregate %q has no layout", ErrBadEncoding, d.Encoding)
	}
	layoutAggregate(d, open == '(')
	return d, nil
}

// layoutAggregate computes C layout: each field at the next offset aligned
// to its own alignment, total size rounded up to the widest alignment.
func layoutAggregate(d *Descriptor, union bool) {
	var off uintptr
	maxAlign := uintptr(1)
	d.Offsets = make([]uintptr, len(d.Fields))
	for i, f := range d.Fields {
		if f.Align > maxAlign {
			maxAlign = f.Align
		}
		if union {
			d.Offsets[i] = 0
			if f.Size > off {
				off = f.Size
			}
			continue
		}
		off = alignUp(off, f.Align)
		d.Offsets[i] = off
		off += f.Size
	}
	d.Align = maxAlign
	d.Size = alignUp(off, maxAlign)
}

func alignUp(n, a uintptr) uintptr {
	if a <= 1 {
		return n
	}
	return (n + a - 1) &^ (a - 1)
}
