// Package invoke prepares and executes a single message send against a
// runtime, marshaling arguments into native slots and capturing the raw
// return value.
package invoke

import (
	"github.com/chazu/dynamic/typeenc"
)

// Class is a class identity handed out by a ClassRegistry.
type Class interface {
	ClassName() string
}

// Selector is a message name carried as a value, e.g. the argument of
// respondsToSelector:.
type Selector string

func (s Selector) String() string { return string(s) }

// Dispatcher answers whether a target responds to a message and performs
// the send with marshaled argument bytes.
type Dispatcher interface {
	// Responds returns the message's signature, or false when the target
	// does not understand it.
	Responds(target any, selector string) (*typeenc.Signature, bool)

	// Send executes the message. args holds one native slot per explicit
	// parameter. The returned bytes are laid out per the signature's
	// return descriptor. A non-nil error is a raised native error.
	Send(target any, selector string, args [][]byte) ([]byte, error)
}

// ClassRegistry resolves symbolic class names.
type ClassRegistry interface {
	LookupClass(name string) (Class, bool)
}

// HandleTable maps objects to the handles stored in object slots.
type HandleTable interface {
	Retain(obj any) typeenc.Handle
	Lookup(h typeenc.Handle) (any, bool)
	Release(h typeenc.Handle)
}

// Runtime is everything the dispatch layer needs from a foreign runtime.
type Runtime interface {
	Dispatcher
	ClassRegistry
	HandleTable
}

// Resolver is implemented by reference wrappers that stand in for an
// underlying runtime object when passed as an argument.
type Resolver interface {
	ResolvedObject() any
}

// IsClass reports whether obj is a class identity.
func IsClass(obj any) bool {
	_, ok := obj.(Class)
	return ok
}
