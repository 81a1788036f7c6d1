package invoke

import (
	"errors"
	"fmt"

	"github.com/chazu/dynamic/typeenc"
)

var (
	// ErrNotFound is matched by MessageNotUnderstoodError.
	ErrNotFound = errors.New("message not understood")

	// ErrUnresolvedSymbol reports a class or member name unknown to the runtime.
	ErrUnresolvedSymbol = errors.New("unresolved symbol")

	ErrArity         = errors.New("argument count does not match selector")
	ErrInvoked       = errors.New("invocation already performed")
	ErrArgumentIndex = errors.New("argument index out of range")

	// ErrTypeMismatch is shared with typeenc so either can be matched.
	ErrTypeMismatch = typeenc.ErrTypeMismatch
)

// MessageNotUnderstoodError is returned when a target does not respond to
// a selector.
type MessageNotUnderstoodError struct {
	Receiver string
	Selector string
}

func (e *MessageNotUnderstoodError) Error() string {
	return fmt.Sprintf("%s does not understand %s", e.Receiver, e.Selector)
}

func (e *MessageNotUnderstoodError) Is(target error) bool {
	return target == ErrNotFound
}

// RaiseError carries a native error raised while a message executed.
// Value is whatever was raised; Cause is set when that value is an error.
type RaiseError struct {
	Selector string
	Value    any
	Cause    error
}

func (e *RaiseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s raised: %v", e.Selector, e.Cause)
	}
	return fmt.Sprintf("%s raised: %v", e.Selector, e.Value)
}

func (e *RaiseError) Unwrap() error {
	return e.Cause
}

// TypeMismatchError reports an argument that could not be written to its
// slot. The slot is left zero-filled.
type TypeMismatchError struct {
	Position int
	Encoding string
	Value    any
	Cause    error
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("argument %d: %T does not fit %s: %v", e.Position, e.Value, e.Encoding, e.Cause)
}

func (e *TypeMismatchError) Unwrap() error {
	return e.Cause
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}
