package objspace

import (
	"fmt"
	"strings"

	"github.com/chazu/dynamic/typeenc"
)

// MethodFunc implements a method. self is the receiver: an instance, a Go
// value bound to a class, or the *Class itself for class methods. args
// hold decoded values in declaration order: sized Go numbers and bools for
// scalars, *typeenc.Boxed for aggregates, and the referenced object (or
// nil) for object slots.
//
// A returned error is raised to the caller. Methods may also panic to
// raise; the invocation layer recovers it.
type MethodFunc func(self any, args []any) (any, error)

// MethodEntry describes a single method.
type MethodEntry struct {
	Selector string
	Types    string
	Impl     MethodFunc
	sig      *typeenc.Signature
}

// Signature returns the parsed type signature.
func (m *MethodEntry) Signature() *typeenc.Signature {
	return m.sig
}

// NewMethodEntry parses types and checks the parameter count against the
// selector's keywords.
func NewMethodEntry(selector, types string, impl MethodFunc) (*MethodEntry, error) {
	sig, err := typeenc.ParseSignature(types)
	if err != nil {
		return nil, fmt.Errorf("method %s: %w", selector, err)
	}
	if n := strings.Count(selector, ":"); n != sig.NumArguments() {
		return nil, fmt.Errorf("method %s: %d keywords but %q declares %d parameters",
			selector, n, types, sig.NumArguments())
	}
	return &MethodEntry{Selector: selector, Types: types, Impl: impl, sig: sig}, nil
}

// MethodTable holds instance and class methods for a class, keyed by
// interned selector ID.
type MethodTable struct {
	selectors       *SelectorTable
	InstanceMethods map[int]*MethodEntry
	ClassMethods    map[int]*MethodEntry
}

// NewMethodTable creates an empty method table interning into st.
func NewMethodTable(st *SelectorTable) *MethodTable {
	return &MethodTable{
		selectors:       st,
		InstanceMethods: make(map[int]*MethodEntry),
		ClassMethods:    make(map[int]*MethodEntry),
	}
}

// AddInstanceMethod adds an instance method. It panics on a malformed
// signature, which is a programming error in the class definition.
func (mt *MethodTable) AddInstanceMethod(selector, types string, impl MethodFunc) *MethodTable {
	mt.InstanceMethods[mt.selectors.Intern(selector)] = mustEntry(selector, types, impl)
	return mt
}

// AddClassMethod adds a class method. It panics on a malformed signature.
func (mt *MethodTable) AddClassMethod(selector, types string, impl MethodFunc) *MethodTable {
	mt.ClassMethods[mt.selectors.Intern(selector)] = mustEntry(selector, types, impl)
	return mt
}

func mustEntry(selector, types string, impl MethodFunc) *MethodEntry {
	m, err := NewMethodEntry(selector, types, impl)
	if err != nil {
		panic(err)
	}
	return m
}

// LookupInstanceMethod finds an instance method.
func (mt *MethodTable) LookupInstanceMethod(selector string) *MethodEntry {
	if mt == nil {
		return nil
	}
	id := mt.selectors.Lookup(selector)
	if id < 0 {
		return nil
	}
	return mt.InstanceMethods[id]
}

// LookupClassMethod finds a class method.
func (mt *MethodTable) LookupClassMethod(selector string) *MethodEntry {
	if mt == nil {
		return nil
	}
	id := mt.selectors.Lookup(selector)
	if id < 0 {
		return nil
	}
	return mt.ClassMethods[id]
}
