// Package protort exposes protobuf messages as runtime objects. Every
// message type in a registered file becomes a class; messages built from it
// are *dynamic.Message values that answer getter and setter messages named
// after their fields.
package protort

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"

	"github.com/chazu/dynamic/invoke"
	"github.com/chazu/dynamic/objspace"
	"github.com/chazu/dynamic/typeenc"
)

// Runtime dispatches messages to protobuf message classes and instances.
// Messages it does not know go to the fallback runtime, if any.
type Runtime struct {
	invoke.HandleTable

	fallback invoke.Runtime

	mu      sync.RWMutex
	classes map[string]*MessageClass
	byDesc  map[*desc.MessageDescriptor]*MessageClass

	classMethods    map[string]*objspace.MethodEntry
	instanceMethods map[string]*objspace.MethodEntry
}

var _ invoke.Runtime = (*Runtime)(nil)

// New creates a runtime with the messages of files registered.
func New(files ...*desc.FileDescriptor) *Runtime {
	return newRuntime(typeenc.NewHandles(), nil, files)
}

// NewWithFallback creates a runtime layered over fallback. Both share the
// fallback's handle table, so objects cross freely between them.
func NewWithFallback(fallback invoke.Runtime, files ...*desc.FileDescriptor) *Runtime {
	return newRuntime(fallback, fallback, files)
}

func newRuntime(handles invoke.HandleTable, fallback invoke.Runtime, files []*desc.FileDescriptor) *Runtime {
	r := &Runtime{
		HandleTable:     handles,
		fallback:        fallback,
		classes:         make(map[string]*MessageClass),
		byDesc:          make(map[*desc.MessageDescriptor]*MessageClass),
		classMethods:    make(map[string]*objspace.MethodEntry),
		instanceMethods: make(map[string]*objspace.MethodEntry),
	}
	r.installClassMethods()
	r.installInstanceMethods()
	for _, fd := range files {
		r.RegisterFile(fd)
	}
	return r
}

// RegisterFile registers every message type declared in fd, nested types
// included. Map entry types are skipped.
func (r *Runtime) RegisterFile(fd *desc.FileDescriptor) {
	for _, md := range fd.GetMessageTypes() {
		r.registerTree(md)
	}
}

func (r *Runtime) registerTree(md *desc.MessageDescriptor) {
	if md.IsMapEntry() {
		return
	}
	r.Register(md)
	for _, nested := range md.GetNestedMessageTypes() {
		r.registerTree(nested)
	}
}

// Register returns the class for md, creating it on first use. Classes are
// found by fully qualified name and, when unambiguous, by short name.
func (r *Runtime) Register(md *desc.MessageDescriptor) *MessageClass {
	r.mu.RLock()
	c, ok := r.byDesc[md]
	r.mu.RUnlock()
	if ok {
		return c
	}

	c = newMessageClass(md)
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byDesc[md]; ok {
		return existing
	}
	r.byDesc[md] = c
	r.classes[md.GetFullyQualifiedName()] = c
	if _, taken := r.classes[md.GetName()]; !taken {
		r.classes[md.GetName()] = c
	}
	return c
}

// LookupClass resolves a message class by full or short name, then asks
// the fallback.
func (r *Runtime) LookupClass(name string) (invoke.Class, bool) {
	r.mu.RLock()
	c, ok := r.classes[name]
	r.mu.RUnlock()
	if ok {
		return c, true
	}
	if r.fallback != nil {
		return r.fallback.LookupClass(name)
	}
	return nil, false
}

// Len returns the number of live handles when the table can count them.
func (r *Runtime) Len() int {
	if counter, ok := r.HandleTable.(interface{ Len() int }); ok {
		return counter.Len()
	}
	return 0
}

// ClassNames returns the fully qualified names of the registered classes.
func (r *Runtime) ClassNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byDesc))
	for md := range r.byDesc {
		names = append(names, md.GetFullyQualifiedName())
	}
	sort.Strings(names)
	return names
}

// Responds returns the signature of the method target would run for
// selector.
func (r *Runtime) Responds(target any, selector string) (*typeenc.Signature, bool) {
	m := r.resolve(target, selector)
	if m == nil {
		if r.fallback != nil {
			return r.fallback.Responds(target, selector)
		}
		return nil, false
	}
	return m.Signature(), true
}

// Send dispatches a message with native argument slots. Object results are
// retained and returned as handles.
func (r *Runtime) Send(target any, selector string, args [][]byte) ([]byte, error) {
	m := r.resolve(target, selector)
	if m == nil {
		if r.fallback != nil {
			return r.fallback.Send(target, selector, args)
		}
		return nil, &invoke.MessageNotUnderstoodError{Receiver: invoke.Describe(target), Selector: selector}
	}
	sig := m.Signature()
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
			v, _ = r.Lookup(h)
		}
		values[i] = v
	}

	result, err := m.Impl(target, values)
	if err != nil {
		return nil, err
	}

	switch sig.Return.Category {
	case typeenc.CategoryVoid:
		return nil, nil
	case typeenc.CategoryObject:
		buf := make([]byte, sig.Return.Size)
		typeenc.PutHandle(buf, r.Retain(result))
		return buf, nil
	}
	return typeenc.Coerce(sig.Return, result)
}

// resolve finds the method for a send. Field accessors shadow the common
// instance methods.
func (r *Runtime) resolve(target any, selector string) *objspace.MethodEntry {
	switch t := target.(type) {
	case *MessageClass:
		return r.classMethods[selector]
	case *dynamic.Message:
		c := r.Register(t.GetMessageDescriptor())
		if m, ok := c.accessors[selector]; ok {
			return m
		}
		return r.instanceMethods[selector]
	}
	return nil
}
