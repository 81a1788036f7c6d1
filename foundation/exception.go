package foundation

import (
	"fmt"
	"reflect"
)

// Exception is an NSException. It is an object, not a Go error: sending
// raise panics with it and the invocation that made the send captures the
// panic.
type Exception struct {
	Name     string
	Reason   string
	UserInfo map[string]any
}

// NewException creates an exception.
func NewException(name, reason string, userInfo map[string]any) *Exception {
	return &Exception{Name: name, Reason: reason, UserInfo: userInfo}
}

func (e *Exception) String() string {
	if e.Reason == "" {
		return e.Name
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Reason)
}

func installException(f *Foundation) {
	m := f.Space.NewMethodTable()
	build := func(_ any, args []any) (any, error) {
		info, _ := args[2].(map[string]any)
		return NewException(stringArg(args[0]), stringArg(args[1]), info), nil
	}

	m.AddClassMethod("exceptionWithName:reason:userInfo:", "@40@0:8@16@24@32", build)
	m.AddInstanceMethod("initWithName:reason:userInfo:", "@40@0:8@16@24@32", build)

	m.AddInstanceMethod("name", "@16@0:8", func(self any, _ []any) (any, error) {
		return self.(*Exception).Name, nil
	})
	m.AddInstanceMethod("reason", "@16@0:8", func(self any, _ []any) (any, error) {
		return self.(*Exception).Reason, nil
	})
	m.AddInstanceMethod("userInfo", "@16@0:8", func(self any, _ []any) (any, error) {
		if info := self.(*Exception).UserInfo; info != nil {
			return info, nil
		}
		return nil, nil
	})
	m.AddInstanceMethod("raise", "v16@0:8", func(self any, _ []any) (any, error) {
		panic(self.(*Exception))
	})
	m.AddInstanceMethod("description", "@16@0:8", func(self any, _ []any) (any, error) {
		return self.(*Exception).String(), nil
	})

	f.Space.RegisterGoType("NSException", "NSObject", reflect.TypeFor[*Exception](),
		func() any { return &Exception{} }, m)
}
