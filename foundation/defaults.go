package foundation

import (
	"reflect"
	"strconv"
	"strings"
)

// UserDefaults is the NSUserDefaults store. Values are archived with the
// keyed archiver, so anything archivable can be stored.
type UserDefaults struct {
	store    Store
	archiver *Archiver
}

// Object returns the value for key, nil when absent.
func (d *UserDefaults) Object(key string) (any, error) {
	data, ok, err := d.store.Get(key)
	if err != nil || !ok {
		return nil, err
	}
	return d.archiver.Unarchive(data)
}

// SetObject stores v under key. A nil v removes the key.
func (d *UserDefaults) SetObject(key string, v any) error {
	if v == nil {
		return d.store.Delete(key)
	}
	data, err := d.archiver.Archive(v)
	if err != nil {
		return err
	}
	return d.store.Set(key, data)
}

// Remove deletes key.
func (d *UserDefaults) Remove(key string) error {
	return d.store.Delete(key)
}

// Dictionary returns every stored value.
func (d *UserDefaults) Dictionary() (map[string]any, error) {
	keys, err := d.store.Keys()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		v, err := d.Object(k)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func installDefaults(f *Foundation) {
	m := f.Space.NewMethodTable()
	shared := f.defaults
	object := func(self any, key any) any {
		v, err := self.(*UserDefaults).Object(stringArg(key))
		if err != nil {
			raise(GenericException, "reading default %q: %v", stringArg(key), err)
		}
		return v
	}
	store := func(self any, key, v any) (any, error) {
		if err := self.(*UserDefaults).SetObject(stringArg(key), v); err != nil {
			raise(InvalidArgumentException, "storing default %q: %v", stringArg(key), err)
		}
		return nil, nil
	}

	m.AddClassMethod("standardUserDefaults", "@16@0:8", func(any, []any) (any, error) {
		return shared, nil
	})

	m.AddInstanceMethod("objectForKey:", "@24@0:8@16", func(self any, args []any) (any, error) {
		return object(self, args[0]), nil
	})
	m.AddInstanceMethod("setObject:forKey:", "v32@0:8@16@24", func(self any, args []any) (any, error) {
		return store(self, args[1], args[0])
	})
	m.AddInstanceMethod("removeObjectForKey:", "v24@0:8@16", func(self any, args []any) (any, error) {
		if err := self.(*UserDefaults).Remove(stringArg(args[0])); err != nil {
			raise(GenericException, "removing default %q: %v", stringArg(args[0]), err)
		}
		return nil, nil
	})
	m.AddInstanceMethod("stringForKey:", "@24@0:8@16", func(self any, args []any) (any, error) {
		v := object(self, args[0])
		switch {
		case v == nil:
			return nil, nil
		case isNumber(v):
			return formatNumber(v), nil
		}
		if s, ok := v.(string); ok {
			return s, nil
		}
		return nil, nil
	})
	m.AddInstanceMethod("integerForKey:", "q24@0:8@16", func(self any, args []any) (any, error) {
		return defaultInt(object(self, args[0])), nil
	})
	m.AddInstanceMethod("doubleForKey:", "d24@0:8@16", func(self any, args []any) (any, error) {
		return defaultFloat(object(self, args[0])), nil
	})
	m.AddInstanceMethod("boolForKey:", "B24@0:8@16", func(self any, args []any) (any, error) {
		return defaultBool(object(self, args[0])), nil
	})
	m.AddInstanceMethod("setInteger:forKey:", "v32@0:8q16@24", func(self any, args []any) (any, error) {
		return store(self, args[1], args[0])
	})
	m.AddInstanceMethod("setDouble:forKey:", "v32@0:8d16@24", func(self any, args []any) (any, error) {
		return store(self, args[1], args[0])
	})
	m.AddInstanceMethod("setBool:forKey:", "v28@0:8B16@20", func(self any, args []any) (any, error) {
		return store(self, args[1], args[0])
	})
	m.AddInstanceMethod("synchronize", "B16@0:8", func(any, []any) (any, error) {
		return true, nil
	})
	m.AddInstanceMethod("dictionaryRepresentation", "@16@0:8", func(self any, _ []any) (any, error) {
		d, err := self.(*UserDefaults).Dictionary()
		if err != nil {
			raise(GenericException, "reading defaults: %v", err)
		}
		return d, nil
	})

	f.Space.RegisterGoType("NSUserDefaults", "NSObject", reflect.TypeFor[*UserDefaults](), nil, m)
}

func defaultInt(v any) int64 {
	if s, ok := v.(string); ok {
		return leadingInt(s)
	}
	n, _ := int64Arg(v)
	return n
}

func defaultFloat(v any) float64 {
	if s, ok := v.(string); ok {
		f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f
	}
	n, _ := float64Arg(v)
	return n
}

func defaultBool(v any) bool {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "true":
			return true
		}
		return leadingInt(s) != 0
	}
	n, _ := float64Arg(v)
	return n != 0
}
