// Package dynamic sends messages to runtime objects by name. A Ref wraps an
// object and an optional pending member; member reads, writes and calls
// build new references lazily and failures travel through a chain as
// inert values instead of being raised.
package dynamic

import (
	"github.com/chazu/dynamic/diag"
	"github.com/chazu/dynamic/invoke"
	"github.com/chazu/dynamic/typemap"
)

// Env is the context shared by every reference created from it: the
// runtime that dispatches messages, the aggregate mappings and the
// diagnostic logger.
type Env struct {
	rt       invoke.Runtime
	mappings *typemap.Registry
	log      diag.Logger
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithLogger sets the diagnostic logger. The default discards everything.
func WithLogger(l diag.Logger) EnvOption {
	return func(e *Env) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMappings sets the aggregate mappings. The default is
// typemap.Default().
func WithMappings(m *typemap.Registry) EnvOption {
	return func(e *Env) {
		if m != nil {
			e.mappings = m
		}
	}
}

// NewEnv creates an environment over rt.
func NewEnv(rt invoke.Runtime, opts ...EnvOption) *Env {
	e := &Env{rt: rt, mappings: typemap.Default(), log: diag.Nop}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Env) Runtime() invoke.Runtime     { return e.rt }
func (e *Env) Mappings() *typemap.Registry { return e.mappings }
func (e *Env) Logger() diag.Logger         { return e.log }

// Wrap wraps an existing object.
func (e *Env) Wrap(obj any) *Ref {
	return e.WrapMember(obj, "")
}

// WrapMember wraps an object with a pending member that is read on first
// resolution.
func (e *Env) WrapMember(obj any, member string) *Ref {
	e.log.End().Start()
	e.log.Log("# Dynamic")
	e.log.Log("Object:", describe(obj)).Log("Member:", memberLabel(member))
	return &Ref{env: e, object: obj, member: member}
}

// Class resolves a class by name. An unknown name yields an absent
// reference on which every operation is a no-op.
func (e *Env) Class(name string) *Ref {
	e.log.End().Start()
	e.log.Log("# Dynamic")
	e.log.Log("Class:", name)

	class, ok := e.rt.LookupClass(name)
	if !ok {
		e.log.Log("Unresolved:", invoke.ErrUnresolvedSymbol, name)
		return &Ref{env: e}
	}
	return &Ref{env: e, object: class}
}

func (e *Env) ref(o outcome, member string) *Ref {
	return e.WrapMember(o.object(), member)
}

func describe(obj any) string {
	return invoke.Describe(obj)
}

func memberLabel(member string) string {
	if member == "" {
		return "<nil>"
	}
	return member
}
