package foundation

import (
	"reflect"
	"strings"

	"github.com/google/uuid"
)

func installUUID(f *Foundation) {
	m := f.Space.NewMethodTable()

	m.AddClassMethod("UUID", "@16@0:8", func(any, []any) (any, error) {
		return uuid.New(), nil
	})

	m.AddInstanceMethod("init", "@16@0:8", func(any, []any) (any, error) {
		return uuid.New(), nil
	})
	m.AddInstanceMethod("initWithUUIDString:", "@24@0:8@16", func(_ any, args []any) (any, error) {
		id, err := uuid.Parse(stringArg(args[0]))
		if err != nil {
			return nil, nil
		}
		return id, nil
	})
	m.AddInstanceMethod("UUIDString", "@16@0:8", func(self any, _ []any) (any, error) {
		return strings.ToUpper(self.(uuid.UUID).String()), nil
	})
	m.AddInstanceMethod("description", "@16@0:8", func(self any, _ []any) (any, error) {
		return strings.ToUpper(self.(uuid.UUID).String()), nil
	})
	m.AddInstanceMethod("isEqual:", "B24@0:8@16", func(self any, args []any) (any, error) {
		other, ok := args[0].(uuid.UUID)
		return ok && other == self.(uuid.UUID), nil
	})

	f.Space.RegisterGoType("NSUUID", "NSObject", reflect.TypeFor[uuid.UUID](), func() any { return uuid.Nil }, m)
}
