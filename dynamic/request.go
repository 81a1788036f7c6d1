package dynamic

// Request accumulates a message name and keyword arguments and sends them
// explicitly.
//
//	env.Class("NSException").
//		Message("exceptionWithName").
//		With("", name).With("reason", reason).With("userInfo", nil).
//		Send()
type Request struct {
	ref  *Ref
	name string
	args []Arg
}

// Message starts a request for the member name on r.
func (r *Ref) Message(name string) *Request {
	return &Request{ref: r, name: name}
}

// With appends a keyword argument.
func (q *Request) With(keyword string, value any) *Request {
	q.args = append(q.args, Named(keyword, value))
	return q
}

// Selector returns the selector Send will dispatch.
func (q *Request) Selector() string {
	return keywordSelector(q.name, q.args)
}

// Send reads the member and calls it with the accumulated arguments.
func (q *Request) Send() *Ref {
	return q.ref.Member(q.name).Call(q.args...)
}
