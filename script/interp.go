// Package script evaluates a small message-send language on top of the
// dynamic layer:
//
//	| id |
//	id := NSUUID new.
//	id UUIDString.
//	(NSDateFormatter new) setDateFormat: 'yyyy'; stringFromDate: NSDate date
//
// Every value is a *dynamic.Ref, so a failed send becomes an inert error
// value that later sends pass along instead of aborting the script.
package script

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/chazu/dynamic/dynamic"
	"github.com/chazu/dynamic/invoke"
	"github.com/chazu/dynamic/typeenc"
)

var (
	// ErrUndefined reports a name that is neither a variable nor a class.
	ErrUndefined = errors.New("script: undefined name")

	// ErrZeroDivide reports integer division by zero.
	ErrZeroDivide = errors.New("script: division by zero")
)

// Closure is the value of a block literal. Calling it runs the block and
// returns the value of its last statement.
type Closure func() *dynamic.Ref

type scope struct {
	vars   map[string]*dynamic.Ref
	parent *scope
}

func newScope(parent *scope, names []string) *scope {
	s := &scope{vars: make(map[string]*dynamic.Ref, len(names)), parent: parent}
	for _, n := range names {
		s.vars[n] = nil
	}
	return s
}

func (s *scope) lookup(name string) (*dynamic.Ref, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// set assigns to the innermost scope declaring name, or to the outermost
// scope when none does.
func (s *scope) set(name string, v *dynamic.Ref) {
	sc := s
	for ; sc != nil; sc = sc.parent {
		if _, ok := sc.vars[name]; ok {
			sc.vars[name] = v
			return
		}
		if sc.parent == nil {
			break
		}
	}
	sc.vars[name] = v
}

// Interpreter evaluates scripts. Undeclared variables assigned at the top
// level persist across Eval calls. An Interpreter is not safe for
// concurrent use.
type Interpreter struct {
	env     *dynamic.Env
	globals *scope
}

// New creates an interpreter sending messages through env.
func New(env *dynamic.Env) *Interpreter {
	return &Interpreter{env: env, globals: newScope(nil, nil)}
}

// Env returns the environment messages are sent through.
func (in *Interpreter) Env() *dynamic.Env { return in.env }

// Eval parses and runs src and returns the value of its last statement.
// Only syntax errors are returned as errors; failed sends are values.
func (in *Interpreter) Eval(src string) (*dynamic.Ref, error) {
	prog, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return in.Run(prog), nil
}

// Run executes a parsed program.
func (in *Interpreter) Run(prog *Program) *dynamic.Ref {
	return in.run(prog, newScope(in.globals, prog.Temps))
}

func (in *Interpreter) run(prog *Program, sc *scope) *dynamic.Ref {
	result := in.env.Wrap(nil)
	for _, stmt := range prog.Statements {
		result = in.eval(stmt, sc)
	}
	return result
}

func (in *Interpreter) eval(n Node, sc *scope) *dynamic.Ref {
	switch n := n.(type) {
	case *Literal:
		return in.env.Wrap(literalValue(n.Value))

	case *DynamicArray:
		items := make([]any, len(n.Elements))
		for i, e := range n.Elements {
			v, err := Value(in.eval(e, sc))
			if err != nil {
				return in.env.Wrap(err)
			}
			items[i] = v
		}
		return in.env.Wrap(items)

	case *Variable:
		if v, ok := sc.lookup(n.Name); ok {
			if v == nil {
				return in.env.Wrap(nil)
			}
			return v
		}
		if _, ok := in.env.Runtime().LookupClass(n.Name); ok {
			return in.env.Class(n.Name)
		}
		return in.env.Wrap(fmt.Errorf("%w: %s", ErrUndefined, n.Name))

	case *Assignment:
		v := in.eval(n.Value, sc)
		sc.set(n.Name, v)
		return v

	case *Send:
		return in.send(in.eval(n.Receiver, sc), n.Selector, in.evalAll(n.Arguments, sc))

	case *Cascade:
		receiver := in.eval(n.Receiver, sc)
		result := receiver
		for _, m := range n.Messages {
			result = in.send(receiver, m.Selector, in.evalAll(m.Arguments, sc))
		}
		return result

	case *Block:
		body := n.Body
		return in.env.Wrap(Closure(func() *dynamic.Ref {
			return in.run(body, newScope(sc, body.Temps))
		}))
	}
	return in.env.Wrap(fmt.Errorf("script: cannot evaluate %T", n))
}

func (in *Interpreter) evalAll(nodes []Node, sc *scope) []*dynamic.Ref {
	refs := make([]*dynamic.Ref, len(nodes))
	for i, n := range nodes {
		refs[i] = in.eval(n, sc)
	}
	return refs
}

// send delivers selector to the value of receiver. Block evaluation,
// conditionals, arithmetic on plain numbers and string concatenation
// with , are evaluated directly; everything else goes through the
// runtime.
func (in *Interpreter) send(receiver *dynamic.Ref, selector string, args []*dynamic.Ref) *dynamic.Ref {
	recv, err := Value(receiver)
	if err != nil {
		return receiver
	}

	values := make([]any, len(args))
	for i, a := range args {
		v, err := Value(a)
		if err != nil {
			return a
		}
		values[i] = v
	}

	if result, ok := in.control(recv, selector, values); ok {
		return result
	}
	if len(values) == 1 {
		if result, ok, err := binary(selector, recv, values[0]); ok {
			if err != nil {
				return in.env.Wrap(err)
			}
			return in.env.Wrap(result)
		}
	}

	target := receiver
	if receiver.AsAnyObject() == nil {
		// Scalar results are rewrapped as objects.
		target = in.env.Wrap(recv)
	}
	return target.Perform(selector, in.fitArguments(recv, selector, values)...)
}

// fitArguments converts numeric literals to the sized types the target's
// signature expects. Sends marshal scalars strictly, so an int64 literal
// would not otherwise fill an int or float slot.
func (in *Interpreter) fitArguments(target any, selector string, values []any) []any {
	if target == nil || len(values) == 0 {
		return values
	}
	sig, ok := in.env.Runtime().Responds(target, selector)
	if !ok {
		return values
	}
	for i, d := range sig.Args {
		if i >= len(values) || !isNumber(values[i]) {
			continue
		}
		if d.Category != typeenc.CategoryScalar && d.Category != typeenc.CategoryBool {
			continue
		}
		buf, err := typeenc.Coerce(d, values[i])
		if err != nil {
			continue
		}
		if v, err := typeenc.Unmarshal(d, buf); err == nil {
			values[i] = v
		}
	}
	return values
}

// control evaluates block and conditional messages.
func (in *Interpreter) control(recv any, selector string, args []any) (*dynamic.Ref, bool) {
	switch recv := recv.(type) {
	case Closure:
		if selector == "value" {
			return recv(), true
		}
	case bool:
		var branch any
		switch selector {
		case "ifTrue:":
			if recv {
				branch = args[0]
			}
		case "ifFalse:":
			if !recv {
				branch = args[0]
			}
		case "ifTrue:ifFalse:":
			branch = args[1]
			if recv {
				branch = args[0]
			}
		case "ifFalse:ifTrue:":
			branch = args[0]
			if recv {
				branch = args[1]
			}
		case "not":
			return in.env.Wrap(!recv), true
		default:
			return nil, false
		}
		return in.yield(branch), true
	case int64:
		if selector == "timesRepeat:" {
			block, ok := args[0].(Closure)
			if !ok {
				return nil, false
			}
			for i := int64(0); i < recv; i++ {
				if r := block(); r.IsError() {
					return r, true
				}
			}
			return in.env.Wrap(recv), true
		}
	}
	return nil, false
}

// yield evaluates v if it is a block and wraps it otherwise.
func (in *Interpreter) yield(v any) *dynamic.Ref {
	if block, ok := v.(Closure); ok {
		return block()
	}
	return in.env.Wrap(v)
}

func literalValue(v any) any {
	switch v := v.(type) {
	case Symbol:
		return invoke.Selector(v)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			if s, ok := item.(Symbol); ok {
				items[i] = string(s)
				continue
			}
			items[i] = literalValue(item)
		}
		return items
	}
	return v
}

// Value returns the plain Go value of a reference: the resolved object,
// or the decoded return of a scalar message. Aggregates stay boxed.
func Value(r *dynamic.Ref) (any, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}
	if obj := r.AsAnyObject(); obj != nil {
		return obj, nil
	}
	box, ok := r.AsBoxed()
	if !ok {
		return nil, nil
	}
	if box.Descriptor().Category == typeenc.CategoryStruct {
		return box, nil
	}
	return typeenc.Unmarshal(box.Descriptor(), box.Bytes())
}

// Render formats a reference for display.
func Render(r *dynamic.Ref) string {
	v, err := Value(r)
	if err != nil {
		return "error: " + err.Error()
	}
	switch v := v.(type) {
	case nil:
		return "nil"
	case string:
		return v
	case invoke.Selector:
		return "#" + string(v)
	case *typeenc.Boxed:
		return v.String()
	case Closure:
		return "a block"
	}
	if isNumber(v) || reflect.TypeOf(v).Kind() == reflect.Bool {
		return fmt.Sprint(v)
	}
	s, _ := r.Env().Wrap(v).AsString()
	return s
}
