package dynamic

import (
	"fmt"

	"github.com/chazu/dynamic/invoke"
)

// Ref is a lazily resolved reference to a runtime object, optionally with
// a pending member that is read when the reference is first resolved.
//
// A reference whose object is absent or that captured an error is
// terminal: every further member access or call returns a reference
// carrying the same error, and typed unwraps report false.
//
// A Ref memoises its single invocation and is not safe for concurrent use.
type Ref struct {
	env    *Env
	object any
	member string

	inv *invoke.Invocation
	err error
}

var _ invoke.Resolver = (*Ref)(nil)

// Env returns the environment the reference was created in.
func (r *Ref) Env() *Env { return r.env }

// Member reads a member. The current reference is resolved and the result
// becomes the object of a new reference with name pending.
func (r *Ref) Member(name string) *Ref {
	r.env.log.Log("Get:", r.String()+"."+name)
	o := r.resolve()
	r.env.log.End()
	return r.env.ref(o, name)
}

// Set writes a member by sending set<Name>: with value. A *Ref value is
// resolved first. The returned reference holds the setter's outcome.
func (r *Ref) Set(name string, value any) *Ref {
	r.env.log.Log("Set:", r.String()+"."+name)
	o := r.resolve()
	r.env.log.End()

	if v, ok := value.(*Ref); ok {
		value = v.ResolvedObject()
	}
	return r.env.ref(o, setterName(name)).Call(Positional(value))
}

// Instantiate sends new to a class reference with no pending member and
// wraps the created instance. Any other reference is returned unchanged.
func (r *Ref) Instantiate() *Ref {
	if !invoke.IsClass(r.object) || r.member != "" {
		return r
	}
	r.env.log.Log("Init:", describe(r.object)+".new")
	r.env.log.End()

	created := &Ref{env: r.env, object: r.object, member: "new"}
	created.dispatch("new", nil)
	return r.env.ref(created.resolve(), "")
}

// Call sends the pending member with keyword arguments. On a class
// reference with no pending member, no arguments instantiate and
// arguments select an initWith initialiser. With no pending member
// otherwise, Call returns r.
func (r *Ref) Call(args ...Arg) *Ref {
	if invoke.IsClass(r.object) && r.member == "" {
		if len(args) == 0 {
			return r.Instantiate()
		}
		return r.send(keywordSelector("initWith", args), values(args))
	}
	if r.member == "" {
		return r
	}
	return r.send(keywordSelector(r.member, args), values(args))
}

// Perform resolves r and sends an explicit selector to the result.
func (r *Ref) Perform(selector string, args ...any) *Ref {
	var next *Ref
	o := r.resolve().then(func(target any) outcome {
		next = r.env.WrapMember(target, selector).send(selector, args)
		return next.resolve()
	})
	if next != nil {
		return next
	}
	return r.env.ref(o, selector)
}

// ResolvedObject returns the resolved object, the captured error, or nil.
func (r *Ref) ResolvedObject() any {
	o := r.resolve()
	r.env.log.End()
	return o.object()
}

func (r *Ref) String() string {
	return describe(r.object)
}

func (r *Ref) terminal() bool {
	if r.object == nil || r.err != nil {
		return true
	}
	_, isErr := r.object.(error)
	return isErr
}

// send dispatches selector to r's object and returns a reference holding
// the invocation. Terminal references are returned as they are.
func (r *Ref) send(selector string, args []any) *Ref {
	if r.terminal() {
		return r
	}
	member := r.member
	if member == "" {
		member = selector
	}
	next := &Ref{env: r.env, object: r.object, member: member}
	next.dispatch(selector, args)
	return next
}

func (r *Ref) dispatch(selector string, args []any) {
	log := r.env.log
	log.Log(fmt.Sprintf("Call: [%s %s]", describe(r.object), selector))

	inv, err := invoke.New(r.env.rt, r.object, selector,
		invoke.WithMappings(r.env.mappings), invoke.WithLogger(log))
	if err != nil {
		log.Log("Error:", err)
		r.err = err
		return
	}
	r.inv = inv

	for i := 0; i < inv.NumArguments(); i++ {
		var arg any
		if i < len(args) {
			arg = args[i]
		}
		if err := inv.SetArgument(arg, i); err != nil {
			log.Log("Argument:", err)
		}
	}
	inv.Invoke()
	if err := inv.Err(); err != nil {
		r.err = err
	}
}

// resolve produces the reference's value, dispatching the pending member
// at most once:
//
//  1. a class with no pending member is its own value
//  2. an absent object resolves to nothing
//  3. an object returned by an earlier invocation is reused
//  4. an error object or a captured error is passed on
//  5. with no pending member the object itself is the value
//  6. otherwise the member is read with a zero-argument send
func (r *Ref) resolve() outcome {
	if invoke.IsClass(r.object) && r.member == "" {
		return success(r.object)
	}
	if r.object == nil {
		return outcome{}
	}
	if r.inv != nil {
		if obj := r.inv.ReturnedObject(); obj != nil {
			return success(obj)
		}
	}
	if err, isErr := r.object.(error); isErr {
		return failure(err)
	}
	if r.err != nil {
		return failure(r.err)
	}
	if r.member == "" {
		return success(r.object)
	}
	if r.inv == nil {
		r.dispatch(r.member, nil)
		if r.err != nil {
			return failure(r.err)
		}
	}
	return success(r.inv.ReturnedObject())
}
