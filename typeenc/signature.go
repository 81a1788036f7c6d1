package typeenc

import (
	"fmt"
	"sync"
)

// Signature is a parsed method type string: the return type, the implicit
// receiver and selector, then one entry per explicit parameter.
//
//	"v@:@"   -> returns void, takes one object
//	"d24@0:8q16" -> frame offsets are accepted and ignored
type Signature struct {
	Types  string
	Return *Descriptor
	Args   []*Descriptor
}

// NumArguments returns the number of explicit parameters.
func (s *Signature) NumArguments() int {
	return len(s.Args)
}

var signatures sync.Map // string -> *Signature

// ParseSignature decodes a method type string.
func ParseSignature(types string) (*Signature, error) {
	if s, ok := signatures.Load(types); ok {
		return s.(*Signature), nil
	}

	p := &parser{src: types}
	var all []*Descriptor
	for p.pos < len(p.src) {
		d, err := p.parseType()
		if err != nil {
			return nil, fmt.Errorf("signature %q: %w", types, err)
		}
		p.skipDigits()
		all = append(all, d)
	}
	if len(all) < 3 {
		return nil, fmt.Errorf("%w: signature %q lacks receiver and selector", ErrBadEncoding, types)
	}
	if recv := all[1].Kind; recv != ObjectChr && recv != ClassChr {
		return nil, fmt.Errorf("%w: signature %q receiver must be @ or #", ErrBadEncoding, types)
	}
	if all[2].Kind != SelChr {
		return nil, fmt.Errorf("%w: signature %q second slot must be :", ErrBadEncoding, types)
	}
	for _, a := range all[3:] {
		if a.Category == CategoryVoid {
			return nil, fmt.Errorf("%w: signature %q has a void parameter", ErrBadEncoding, types)
		}
	}

	s := &Signature{Types: types, Return: all[0], Args: all[3:]}
	actual, _ := signatures.LoadOrStore(types, s)
	return actual.(*Signature), nil
}

// MustParseSignature is like ParseSignature but panics on error.
func MustParseSignature(types string) *Signature {
	s, err := ParseSignature(types)
	if err != nil {
		panic(err)
	}
	return s
}
