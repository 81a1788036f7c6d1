package invoke

import (
	"fmt"
	"strings"

	"github.com/chazu/dynamic/diag"
	"github.com/chazu/dynamic/typeenc"
	"github.com/chazu/dynamic/typemap"
)

// Invocation is one prepared message send against one target and selector.
// It owns its argument slots and return buffer. An Invocation is invoked at
// most once and is not safe for concurrent use.
type Invocation struct {
	rt       Runtime
	target   any
	selector string
	sig      *typeenc.Signature

	args     [][]byte
	retained []typeenc.Handle

	ret    []byte
	retObj any

	invoked bool
	err     error

	mappings *typemap.Registry
	log      diag.Logger
}

// Option configures an Invocation.
type Option func(*Invocation)

// WithMappings sets the aggregate mappings used to convert arguments.
func WithMappings(m *typemap.Registry) Option {
	return func(inv *Invocation) {
		if m != nil {
			inv.mappings = m
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l diag.Logger) Option {
	return func(inv *Invocation) {
		if l != nil {
			inv.log = l
		}
	}
}

// New looks up selector on target and allocates argument slots per its
// signature. It fails with a *MessageNotUnderstoodError when the target
// does not respond, and with ErrArity when the selector's keyword count
// disagrees with the signature.
func New(rt Runtime, target any, selector string, opts ...Option) (*Invocation, error) {
	sig, ok := rt.Responds(target, selector)
	if !ok {
		return nil, &MessageNotUnderstoodError{Receiver: Describe(target), Selector: selector}
	}
	if n := strings.Count(selector, ":"); n != sig.NumArguments() {
		return nil, fmt.Errorf("%w: %s takes %d, signature %q declares %d",
			ErrArity, selector, n, sig.Types, sig.NumArguments())
	}

	inv := &Invocation{
		rt:       rt,
		target:   target,
		selector: selector,
		sig:      sig,
		args:     make([][]byte, sig.NumArguments()),
		mappings: typemap.Default(),
		log:      diag.Nop,
	}
	for _, opt := range opts {
		opt(inv)
	}
	for i, d := range sig.Args {
		inv.args[i] = make([]byte, d.Size)
	}
	return inv, nil
}

func (inv *Invocation) Target() any                   { return inv.target }
func (inv *Invocation) Selector() string              { return inv.selector }
func (inv *Invocation) Signature() *typeenc.Signature { return inv.sig }
func (inv *Invocation) NumArguments() int             { return len(inv.args) }
func (inv *Invocation) IsInvoked() bool               { return inv.invoked }

// Err returns the error raised by the send, if any.
func (inv *Invocation) Err() error { return inv.err }

func (inv *Invocation) ReturnDescriptor() *typeenc.Descriptor { return inv.sig.Return }
func (inv *Invocation) ReturnEncoding() string                { return inv.sig.Return.Encoding }
func (inv *Invocation) ReturnLength() int                     { return int(inv.sig.Return.Size) }

// ReturnsObject reports whether the return value is an object reference.
func (inv *Invocation) ReturnsObject() bool {
	return inv.sig.Return.Category == typeenc.CategoryObject
}

// ReturnsAny reports whether the message returns a value at all.
func (inv *Invocation) ReturnsAny() bool {
	return inv.sig.Return.Category != typeenc.CategoryVoid
}

// SetArgument writes value into the slot at pos. Reference wrappers are
// replaced by their underlying object and mapped host aggregates by their
// native layout. Object slots receive a handle. Other slots require the
// value's size and alignment to match the slot; on mismatch the slot is
// left zero-filled and a *TypeMismatchError is returned.
func (inv *Invocation) SetArgument(value any, pos int) error {
	if inv.invoked {
		return ErrInvoked
	}
	if pos < 0 || pos >= len(inv.args) {
		return fmt.Errorf("%w: %d of %d", ErrArgumentIndex, pos, len(inv.args))
	}

	slot := inv.args[pos]
	clear(slot)
	d := inv.sig.Args[pos]

	if r, ok := value.(Resolver); ok {
		value = r.ResolvedObject()
	}

	if d.Category == typeenc.CategoryObject {
		if box, ok := inv.mappings.ConvertToNative(value); ok {
			value = box
		}
		h := inv.rt.Retain(value)
		if h != 0 {
			inv.retained = append(inv.retained, h)
		}
		typeenc.PutHandle(slot, h)
		return nil
	}

	if box, ok := inv.mappings.ConvertToNative(value); ok {
		value = box
	}
	data, err := typeenc.Encode(d, value)
	if err != nil {
		inv.log.Log("Argument", pos, "mismatch:", err)
		return &TypeMismatchError{Position: pos, Encoding: d.Encoding, Value: value, Cause: err}
	}
	copy(slot, data)
	return nil
}

// Invoke performs the send. Only the first call has any effect. A raised
// native error, whether returned by the runtime or panicked by the target,
// is captured and reported by Err.
func (inv *Invocation) Invoke() {
	if inv.invoked {
		return
	}
	inv.invoked = true
	defer inv.releaseArguments()

	inv.log.Log("Invoke:", fmt.Sprintf("[%s %s]", Describe(inv.target), inv.selector))

	out, err := inv.send()
	if err != nil {
		inv.err = err
		inv.log.Log("Raised:", err)
		return
	}

	ret := inv.returnBuffer()
	copy(ret, out)
	if inv.ReturnsObject() {
		h := typeenc.GetHandle(ret)
		if obj, ok := inv.rt.Lookup(h); ok {
			inv.retObj = obj
		}
		inv.rt.Release(h)
	}
}

func (inv *Invocation) send() (out []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			raised := &RaiseError{Selector: inv.selector, Value: p}
			if e, ok := p.(error); ok {
				raised.Cause = e
			}
			out, err = nil, raised
		}
	}()

	out, err = inv.rt.Send(inv.target, inv.selector, inv.args)
	if err != nil {
		if _, ok := err.(*RaiseError); !ok {
			err = &RaiseError{Selector: inv.selector, Value: err, Cause: err}
		}
	}
	return out, err
}

func (inv *Invocation) releaseArguments() {
	for _, h := range inv.retained {
		inv.rt.Release(h)
	}
	inv.retained = nil
}

// returnBuffer allocates the return buffer on first use, sized exactly to
// the return descriptor.
func (inv *Invocation) returnBuffer() []byte {
	if inv.ret == nil {
		inv.ret = make([]byte, inv.sig.Return.Size)
	}
	return inv.ret
}

// ReturnedObject returns the object produced by an object-returning
// message, or nil before invocation or for non-object returns.
func (inv *Invocation) ReturnedObject() any {
	if !inv.invoked || !inv.ReturnsObject() {
		return nil
	}
	return inv.retObj
}

// GetReturnValue copies the raw return bytes into out and returns the
// number of bytes copied. The caller is responsible for matching layout.
func (inv *Invocation) GetReturnValue(out []byte) int {
	return copy(out, inv.returnBuffer())
}

// Describe renders a receiver for diagnostics.
func Describe(obj any) string {
	switch v := obj.(type) {
	case nil:
		return "<nil>"
	case Class:
		return v.ClassName()
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprintf("%T", obj)
}
