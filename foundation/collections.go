package foundation

import (
	"math"
	"reflect"
	"slices"
	"sort"
	"strings"
)

// NotFound is returned by indexOfObject: when the object is absent.
const NotFound = uint64(math.MaxInt64)

// MutableArray is an NSMutableArray.
type MutableArray struct {
	Items []any
}

func installCollections(f *Foundation) {
	installArray(f)
	installMutableArray(f)
	installDictionary(f)
}

func installArray(f *Foundation) {
	m := f.Space.NewMethodTable()
	items := func(self any) []any {
		if ma, ok := self.(*MutableArray); ok {
			return ma.Items
		}
		return self.([]any)
	}

	m.AddClassMethod("array", "@16@0:8", func(any, []any) (any, error) {
		return []any{}, nil
	})
	m.AddClassMethod("arrayWithObject:", "@24@0:8@16", func(_ any, args []any) (any, error) {
		return []any{args[0]}, nil
	})
	m.AddClassMethod("arrayWithArray:", "@24@0:8@16", func(_ any, args []any) (any, error) {
		return append([]any(nil), items(args[0])...), nil
	})

	m.AddInstanceMethod("count", "Q16@0:8", func(self any, _ []any) (any, error) {
		return uint64(len(items(self))), nil
	})
	m.AddInstanceMethod("objectAtIndex:", "@24@0:8Q16", func(self any, args []any) (any, error) {
		a := items(self)
		i := args[0].(uint64)
		if i >= uint64(len(a)) {
			raise(RangeException, "index %d beyond bounds [0 .. %d]", i, len(a)-1)
		}
		return a[i], nil
	})
	m.AddInstanceMethod("firstObject", "@16@0:8", func(self any, _ []any) (any, error) {
		if a := items(self); len(a) > 0 {
			return a[0], nil
		}
		return nil, nil
	})
	m.AddInstanceMethod("lastObject", "@16@0:8", func(self any, _ []any) (any, error) {
		if a := items(self); len(a) > 0 {
			return a[len(a)-1], nil
		}
		return nil, nil
	})
	m.AddInstanceMethod("indexOfObject:", "Q24@0:8@16", func(self any, args []any) (any, error) {
		for i, v := range items(self) {
			if reflect.DeepEqual(v, args[0]) {
				return uint64(i), nil
			}
		}
		return NotFound, nil
	})
	m.AddInstanceMethod("containsObject:", "B24@0:8@16", func(self any, args []any) (any, error) {
		for _, v := range items(self) {
			if reflect.DeepEqual(v, args[0]) {
				return true, nil
			}
		}
		return false, nil
	})
	m.AddInstanceMethod("arrayByAddingObject:", "@24@0:8@16", func(self any, args []any) (any, error) {
		a := items(self)
		out := make([]any, len(a), len(a)+1)
		copy(out, a)
		return append(out, args[0]), nil
	})
	m.AddInstanceMethod("componentsJoinedByString:", "@24@0:8@16", func(self any, args []any) (any, error) {
		a := items(self)
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i] = describeValue(v)
		}
		return strings.Join(parts, stringArg(args[0])), nil
	})
	m.AddInstanceMethod("description", "@16@0:8", func(self any, _ []any) (any, error) {
		return describeValue(items(self)), nil
	})
	m.AddInstanceMethod("mutableCopy", "@16@0:8", func(self any, _ []any) (any, error) {
		return &MutableArray{Items: append([]any(nil), items(self)...)}, nil
	})

	f.Space.RegisterGoType("NSArray", "NSObject", reflect.TypeFor[[]any](), func() any { return []any{} }, m)
}

func installMutableArray(f *Foundation) {
	m := f.Space.NewMethodTable()

	m.AddInstanceMethod("addObject:", "v24@0:8@16", func(self any, args []any) (any, error) {
		ma := self.(*MutableArray)
		ma.Items = append(ma.Items, args[0])
		return nil, nil
	})
	m.AddInstanceMethod("insertObject:atIndex:", "v32@0:8@16Q24", func(self any, args []any) (any, error) {
		ma := self.(*MutableArray)
		i := args[1].(uint64)
		if i > uint64(len(ma.Items)) {
			raise(RangeException, "index %d beyond bounds [0 .. %d]", i, len(ma.Items))
		}
		ma.Items = slices.Insert(ma.Items, int(i), args[0])
		return nil, nil
	})
	m.AddInstanceMethod("removeLastObject", "v16@0:8", func(self any, _ []any) (any, error) {
		ma := self.(*MutableArray)
		if len(ma.Items) > 0 {
			ma.Items = ma.Items[:len(ma.Items)-1]
		}
		return nil, nil
	})
	m.AddInstanceMethod("removeAllObjects", "v16@0:8", func(self any, _ []any) (any, error) {
		self.(*MutableArray).Items = nil
		return nil, nil
	})
	m.AddInstanceMethod("copy", "@16@0:8", func(self any, _ []any) (any, error) {
		return append([]any{}, self.(*MutableArray).Items...), nil
	})

	f.Space.RegisterGoType("NSMutableArray", "NSArray", reflect.TypeFor[*MutableArray](),
		func() any { return &MutableArray{} }, m)
}

func installDictionary(f *Foundation) {
	m := f.Space.NewMethodTable()

	m.AddClassMethod("dictionary", "@16@0:8", func(any, []any) (any, error) {
		return map[string]any{}, nil
	})
	m.AddClassMethod("dictionaryWithObject:forKey:", "@32@0:8@16@24", func(_ any, args []any) (any, error) {
		return map[string]any{stringArg(args[1]): args[0]}, nil
	})

	m.AddInstanceMethod("count", "Q16@0:8", func(self any, _ []any) (any, error) {
		return uint64(len(self.(map[string]any))), nil
	})
	m.AddInstanceMethod("objectForKey:", "@24@0:8@16", func(self any, args []any) (any, error) {
		return self.(map[string]any)[stringArg(args[0])], nil
	})
	m.AddInstanceMethod("allKeys", "@16@0:8", func(self any, _ []any) (any, error) {
		keys := sortedKeys(self.(map[string]any))
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = k
		}
		return out, nil
	})
	m.AddInstanceMethod("allValues", "@16@0:8", func(self any, _ []any) (any, error) {
		d := self.(map[string]any)
		keys := sortedKeys(d)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = d[k]
		}
		return out, nil
	})
	m.AddInstanceMethod("dictionaryByAddingObject:forKey:", "@32@0:8@16@24", func(self any, args []any) (any, error) {
		d := self.(map[string]any)
		out := make(map[string]any, len(d)+1)
		for k, v := range d {
			out[k] = v
		}
		out[stringArg(args[1])] = args[0]
		return out, nil
	})
	m.AddInstanceMethod("description", "@16@0:8", func(self any, _ []any) (any, error) {
		return describeValue(self), nil
	})

	f.Space.RegisterGoType("NSDictionary", "NSObject", reflect.TypeFor[map[string]any](),
		func() any { return map[string]any{} }, m)
}

func sortedKeys(d map[string]any) []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// describeValue renders collections in property-list style.
func describeValue(v any) string {
	switch x := v.(type) {
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = describeValue(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case map[string]any:
		keys := sortedKeys(x)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + " = " + describeValue(x[k]) + ";"
		}
		return "{" + strings.Join(parts, " ") + "}"
	}
	if isNumber(v) {
		return formatNumber(v)
	}
	return describeObject(v)
}
