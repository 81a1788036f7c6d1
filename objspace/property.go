package objspace

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/chazu/dynamic/typeenc"
)

// AddProperty synthesizes a getter and a set<Name>: setter backed by an
// instance variable of the same name. encoding is the property's type.
func (os *ObjectSpace) AddProperty(className, name, encoding string) error {
	if _, err := typeenc.Parse(encoding); err != nil {
		return err
	}
	if err := os.AddInstanceMethod(className, name, encoding+"16@0:8", func(self any, _ []any) (any, error) {
		inst, ok := self.(*Instance)
		if !ok {
			return nil, fmt.Errorf("%s: receiver %T has no instance variables", name, self)
		}
		return inst.GetVar(name), nil
	}); err != nil {
		return err
	}

	setter := SetterName(name)
	return os.AddInstanceMethod(className, setter, "v24@0:8"+encoding+"16", func(self any, args []any) (any, error) {
		inst, ok := self.(*Instance)
		if !ok {
			return nil, fmt.Errorf("%s: receiver %T has no instance variables", setter, self)
		}
		inst.SetVar(name, args[0])
		return nil, nil
	})
}

// SetterName returns "set" + the capitalised property name + ":".
func SetterName(property string) string {
	if property == "" {
		return "set:"
	}
	r, n := utf8.DecodeRuneInString(property)
	return "set" + string(unicode.ToUpper(r)) + property[n:] + ":"
}
