package dynamic

type outcomeKind int

const (
	kindEmpty outcomeKind = iota
	kindOk
	kindError
)

// outcome is the result of resolving a reference: a value, a captured
// error, or nothing.
type outcome struct {
	kind  outcomeKind
	value any
	err   error
}

func success(v any) outcome {
	if v == nil {
		return outcome{}
	}
	return outcome{kind: kindOk, value: v}
}

func failure(err error) outcome {
	return outcome{kind: kindError, err: err}
}

// then applies f to a value outcome. Errors and empties pass through
// untouched, so the first failure in a chain is the one that survives.
func (o outcome) then(f func(any) outcome) outcome {
	if o.kind != kindOk {
		return o
	}
	return f(o.value)
}

// object returns what the outcome surfaces as an object: the value, the
// error itself, or nil.
func (o outcome) object() any {
	switch o.kind {
	case kindOk:
		return o.value
	case kindError:
		return o.err
	}
	return nil
}
