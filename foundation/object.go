package foundation

import (
	"fmt"
	"hash/fnv"
	"reflect"

	"github.com/chazu/dynamic/objspace"
)

func installObject(f *Foundation) {
	space := f.Space
	m := space.NewMethodTable()

	m.AddClassMethod("class", "#16@0:8", func(self any, _ []any) (any, error) {
		return self, nil
	})
	m.AddClassMethod("className", "@16@0:8", func(self any, _ []any) (any, error) {
		return self.(*objspace.Class).Name, nil
	})
	m.AddClassMethod("description", "@16@0:8", func(self any, _ []any) (any, error) {
		return self.(*objspace.Class).Name, nil
	})
	m.AddClassMethod("superclass", "#16@0:8", func(self any, _ []any) (any, error) {
		if super := self.(*objspace.Class).SuperclassP; super != nil {
			return super, nil
		}
		return nil, nil
	})
	m.AddClassMethod("instancesRespondToSelector:", "B24@0:8:16", func(self any, args []any) (any, error) {
		return space.LookupMethod(self.(*objspace.Class), stringArg(args[0]), false) != nil, nil
	})

	m.AddInstanceMethod("init", "@16@0:8", func(self any, _ []any) (any, error) {
		return self, nil
	})
	m.AddInstanceMethod("class", "#16@0:8", func(self any, _ []any) (any, error) {
		return space.ClassOf(self), nil
	})
	m.AddInstanceMethod("className", "@16@0:8", func(self any, _ []any) (any, error) {
		return space.ClassOf(self).Name, nil
	})
	m.AddInstanceMethod("description", "@16@0:8", func(self any, _ []any) (any, error) {
		return describeObject(self), nil
	})
	m.AddInstanceMethod("debugDescription", "@16@0:8", func(self any, _ []any) (any, error) {
		return describeObject(self), nil
	})
	m.AddInstanceMethod("isEqual:", "B24@0:8@16", func(self any, args []any) (any, error) {
		return reflect.DeepEqual(self, args[0]), nil
	})
	m.AddInstanceMethod("hash", "Q16@0:8", func(self any, _ []any) (any, error) {
		h := fnv.New64a()
		fmt.Fprint(h, describeObject(self))
		return h.Sum64(), nil
	})
	m.AddInstanceMethod("isKindOfClass:", "B24@0:8#16", func(self any, args []any) (any, error) {
		class, ok := args[0].(*objspace.Class)
		if !ok {
			return false, nil
		}
		return space.ClassOf(self).IsSubclassOf(class), nil
	})
	m.AddInstanceMethod("isMemberOfClass:", "B24@0:8#16", func(self any, args []any) (any, error) {
		return space.ClassOf(self) == args[0], nil
	})
	m.AddInstanceMethod("respondsToSelector:", "B24@0:8:16", func(self any, args []any) (any, error) {
		_, ok := space.Responds(self, stringArg(args[0]))
		return ok, nil
	})
	m.AddInstanceMethod("performSelector:", "@24@0:8:16", func(self any, args []any) (any, error) {
		return space.SendValues(self, stringArg(args[0]))
	})
	m.AddInstanceMethod("performSelector:withObject:", "@32@0:8:16@24", func(self any, args []any) (any, error) {
		return space.SendValues(self, stringArg(args[0]), args[1])
	})
	m.AddInstanceMethod("performSelector:withObject:withObject:", "@40@0:8:16@24@32", func(self any, args []any) (any, error) {
		return space.SendValues(self, stringArg(args[0]), args[1], args[2])
	})

	space.RegisterClass("NSObject", "", nil, m)
}

// describeObject is NSObject's description.
func describeObject(obj any) string {
	switch v := obj.(type) {
	case nil:
		return "(null)"
	case *objspace.Instance:
		return fmt.Sprintf("<%s: %s>", v.Class.Name, v.ID)
	case fmt.Stringer:
		return v.String()
	case string:
		return v
	}
	return fmt.Sprint(obj)
}
