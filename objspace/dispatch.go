package objspace

import (
	"fmt"
	"strings"

	"github.com/chazu/dynamic/invoke"
	"github.com/chazu/dynamic/typeenc"
)

const objectGetterTypes = "@16@0:8"

// Responds returns the signature of the method target would run for
// selector.
func (os *ObjectSpace) Responds(target any, selector string) (*typeenc.Signature, bool) {
	m, _ := os.resolve(target, selector)
	if m == nil {
		return nil, false
	}
	return m.sig, true
}

// Send dispatches a message with native argument slots and returns the
// native return bytes. Object arguments are looked up but not released;
// that is the sender's job. An object result is retained and its handle
// returned.
func (os *ObjectSpace) Send(target any, selector string, args [][]byte) ([]byte, error) {
	m, self := os.resolve(target, selector)
	if m == nil {
		return nil, &invoke.MessageNotUnderstoodError{Receiver: invoke.Describe(target), Selector: selector}
	}
	sig := m.sig
	if len(args) != len(sig.Args) {
		return nil, fmt.Errorf("%w: %s got %d arguments", invoke.ErrArity, selector, len(args))
	}

	values := make([]any, len(args))
	for i, d := range sig.Args {
		v, err := typeenc.Unmarshal(d, args[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d of %s: %w", i, selector, err)
		}
		if h, ok := v.(typeenc.Handle); ok {
			v, _ = os.Lookup(h)
		}
		values[i] = v
	}

	result, err := m.Impl(self, values)
	if err != nil {
		return nil, err
	}
	return os.encodeReturn(sig.Return, result)
}

// SendValues dispatches with already decoded arguments. Foundation methods
// use it to message other objects without a marshaling round trip.
func (os *ObjectSpace) SendValues(target any, selector string, args ...any) (any, error) {
	m, self := os.resolve(target, selector)
	if m == nil {
		return nil, &invoke.MessageNotUnderstoodError{Receiver: invoke.Describe(target), Selector: selector}
	}
	if len(args) != m.sig.NumArguments() {
		return nil, fmt.Errorf("%w: %s got %d arguments", invoke.ErrArity, selector, len(args))
	}
	return m.Impl(self, args)
}

func (os *ObjectSpace) encodeReturn(d *typeenc.Descriptor, result any) ([]byte, error) {
	switch d.Category {
	case typeenc.CategoryVoid:
		return nil, nil
	case typeenc.CategoryObject:
		buf := make([]byte, d.Size)
		typeenc.PutHandle(buf, os.Retain(result))
		return buf, nil
	}
	return typeenc.Coerce(d, result)
}

// resolve finds the method and receiver for a send. Class receivers try
// class methods first, then the alloc and new primitives, then alloc
// followed by an instance-side init.
func (os *ObjectSpace) resolve(target any, selector string) (*MethodEntry, any) {
	if target == nil {
		return nil, nil
	}
	if class, ok := target.(*Class); ok {
		if m := os.LookupMethod(class, selector, true); m != nil {
			return m, class
		}
		switch selector {
		case "alloc":
			return os.allocEntry(class), class
		case "new":
			return os.newEntry(class), class
		}
		if strings.HasPrefix(selector, "init") {
			if m := os.LookupMethod(class, selector, false); m != nil {
				return os.allocInitEntry(class, m), class
			}
		}
		return nil, nil
	}

	class := os.ClassOf(target)
	if m := os.LookupMethod(class, selector, false); m != nil {
		return m, target
	}
	return nil, nil
}

func (os *ObjectSpace) alloc(class *Class) (any, error) {
	if class.Alloc == nil {
		return nil, fmt.Errorf("%s cannot be allocated", class.Name)
	}
	return class.Alloc(), nil
}

func (os *ObjectSpace) allocEntry(class *Class) *MethodEntry {
	return mustEntry("alloc", objectGetterTypes, func(any, []any) (any, error) {
		return os.alloc(class)
	})
}

func (os *ObjectSpace) newEntry(class *Class) *MethodEntry {
	return mustEntry("new", objectGetterTypes, func(any, []any) (any, error) {
		obj, err := os.alloc(class)
		if err != nil {
			return nil, err
		}
		if m := os.LookupMethod(class, "init", false); m != nil {
			return m.Impl(obj, nil)
		}
		return obj, nil
	})
}

func (os *ObjectSpace) allocInitEntry(class *Class, initializer *MethodEntry) *MethodEntry {
	return &MethodEntry{
		Selector: initializer.Selector,
		Types:    initializer.Types,
		sig:      initializer.sig,
		Impl: func(_ any, args []any) (any, error) {
			obj, err := os.alloc(class)
			if err != nil {
				return nil, err
			}
			return initializer.Impl(obj, args)
		},
	}
}
