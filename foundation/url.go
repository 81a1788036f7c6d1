package foundation

import (
	"net/url"
	"path"
	"reflect"
	"strconv"
	"strings"
)

// URLComponents is an NSURLComponents.
type URLComponents struct {
	url.URL
	Items []*QueryItem
}

// QueryItem is an NSURLQueryItem. A nil Value is distinct from an empty
// one: "a" versus "a=".
type QueryItem struct {
	Name  string
	Value *string
}

func (q *QueryItem) String() string {
	if q.Value == nil {
		return url.QueryEscape(q.Name)
	}
	return url.QueryEscape(q.Name) + "=" + url.QueryEscape(*q.Value)
}

func parseQueryItems(raw string) []*QueryItem {
	if raw == "" {
		return nil
	}
	var items []*QueryItem
	for _, part := range strings.Split(raw, "&") {
		k, v, hasValue := strings.Cut(part, "=")
		name, err := url.QueryUnescape(k)
		if err != nil {
			name = k
		}
		item := &QueryItem{Name: name}
		if hasValue {
			val, err := url.QueryUnescape(v)
			if err != nil {
				val = v
			}
			item.Value = &val
		}
		items = append(items, item)
	}
	return items
}

func encodeQueryItems(items []*QueryItem) string {
	parts := make([]string, len(items))
	for i, q := range items {
		parts[i] = q.String()
	}
	return strings.Join(parts, "&")
}

func installURL(f *Foundation) {
	installURLObject(f)
	installURLComponents(f)
	installQueryItem(f)
}

func installURLObject(f *Foundation) {
	m := f.Space.NewMethodTable()
	parse := func(_ any, args []any) (any, error) {
		u, err := url.Parse(stringArg(args[0]))
		if err != nil {
			return nil, nil
		}
		return u, nil
	}

	m.AddClassMethod("URLWithString:", "@24@0:8@16", parse)
	m.AddInstanceMethod("initWithString:", "@24@0:8@16", parse)

	getters := map[string]func(*url.URL) any{
		"absoluteString": func(u *url.URL) any { return u.String() },
		"scheme":         func(u *url.URL) any { return u.Scheme },
		"host":           func(u *url.URL) any { return u.Hostname() },
		"path":           func(u *url.URL) any { return u.Path },
		"query":          func(u *url.URL) any { return u.RawQuery },
		"fragment":       func(u *url.URL) any { return u.Fragment },
		"lastPathComponent": func(u *url.URL) any {
			if u.Path == "" {
				return ""
			}
			return path.Base(u.Path)
		},
		"description": func(u *url.URL) any { return u.String() },
	}
	for sel, get := range getters {
		m.AddInstanceMethod(sel, "@16@0:8", func(self any, _ []any) (any, error) {
			return get(self.(*url.URL)), nil
		})
	}
	m.AddInstanceMethod("port", "@16@0:8", func(self any, _ []any) (any, error) {
		p := self.(*url.URL).Port()
		if p == "" {
			return nil, nil
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, nil
		}
		return n, nil
	})
	m.AddInstanceMethod("URLByAppendingPathComponent:", "@24@0:8@16", func(self any, args []any) (any, error) {
		u := *self.(*url.URL)
		u.Path = path.Join("/", u.Path, stringArg(args[0]))
		u.RawPath = ""
		return &u, nil
	})
	m.AddInstanceMethod("isEqual:", "B24@0:8@16", func(self any, args []any) (any, error) {
		other, ok := args[0].(*url.URL)
		return ok && other.String() == self.(*url.URL).String(), nil
	})

	f.Space.RegisterGoType("NSURL", "NSObject", reflect.TypeFor[*url.URL](), func() any { return &url.URL{} }, m)
}

func installURLComponents(f *Foundation) {
	m := f.Space.NewMethodTable()
	parse := func(_ any, args []any) (any, error) {
		u, err := url.Parse(stringArg(args[0]))
		if err != nil {
			return nil, nil
		}
		return &URLComponents{URL: *u, Items: parseQueryItems(u.RawQuery)}, nil
	}

	m.AddClassMethod("componentsWithString:", "@24@0:8@16", parse)
	m.AddInstanceMethod("initWithString:", "@24@0:8@16", parse)

	m.AddInstanceMethod("scheme", "@16@0:8", func(self any, _ []any) (any, error) {
		return self.(*URLComponents).Scheme, nil
	})
	m.AddInstanceMethod("setScheme:", "v24@0:8@16", func(self any, args []any) (any, error) {
		self.(*URLComponents).Scheme = stringArg(args[0])
		return nil, nil
	})
	m.AddInstanceMethod("host", "@16@0:8", func(self any, _ []any) (any, error) {
		return self.(*URLComponents).Hostname(), nil
	})
	m.AddInstanceMethod("setHost:", "v24@0:8@16", func(self any, args []any) (any, error) {
		c := self.(*URLComponents)
		if p := c.Port(); p != "" {
			c.Host = stringArg(args[0]) + ":" + p
		} else {
			c.Host = stringArg(args[0])
		}
		return nil, nil
	})
	m.AddInstanceMethod("port", "@16@0:8", func(self any, _ []any) (any, error) {
		p := self.(*URLComponents).Port()
		if p == "" {
			return nil, nil
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, nil
		}
		return n, nil
	})
	m.AddInstanceMethod("setPort:", "v24@0:8@16", func(self any, args []any) (any, error) {
		c := self.(*URLComponents)
		host := c.Hostname()
		if n, ok := int64Arg(args[0]); ok {
			c.Host = host + ":" + strconv.FormatInt(n, 10)
		} else {
			c.Host = host
		}
		return nil, nil
	})
	m.AddInstanceMethod("path", "@16@0:8", func(self any, _ []any) (any, error) {
		return self.(*URLComponents).Path, nil
	})
	m.AddInstanceMethod("setPath:", "v24@0:8@16", func(self any, args []any) (any, error) {
		c := self.(*URLComponents)
		c.Path = stringArg(args[0])
		c.RawPath = ""
		return nil, nil
	})
	m.AddInstanceMethod("query", "@16@0:8", func(self any, _ []any) (any, error) {
		c := self.(*URLComponents)
		if c.Items == nil {
			return nil, nil
		}
		return encodeQueryItems(c.Items), nil
	})
	m.AddInstanceMethod("setQuery:", "v24@0:8@16", func(self any, args []any) (any, error) {
		self.(*URLComponents).Items = parseQueryItems(stringArg(args[0]))
		return nil, nil
	})
	m.AddInstanceMethod("queryItems", "@16@0:8", func(self any, _ []any) (any, error) {
		c := self.(*URLComponents)
		if c.Items == nil {
			return nil, nil
		}
		out := make([]any, len(c.Items))
		for i, q := range c.Items {
			out[i] = q
		}
		return out, nil
	})
	m.AddInstanceMethod("setQueryItems:", "v24@0:8@16", func(self any, args []any) (any, error) {
		c := self.(*URLComponents)
		c.Items = nil
		list, _ := args[0].([]any)
		for _, v := range list {
			if q, ok := v.(*QueryItem); ok {
				c.Items = append(c.Items, q)
			}
		}
		return nil, nil
	})
	m.AddInstanceMethod("string", "@16@0:8", func(self any, _ []any) (any, error) {
		return self.(*URLComponents).resolved().String(), nil
	})
	m.AddInstanceMethod("URL", "@16@0:8", func(self any, _ []any) (any, error) {
		return self.(*URLComponents).resolved(), nil
	})
	m.AddInstanceMethod("description", "@16@0:8", func(self any, _ []any) (any, error) {
		return self.(*URLComponents).resolved().String(), nil
	})

	f.Space.RegisterGoType("NSURLComponents", "NSObject", reflect.TypeFor[*URLComponents](),
		func() any { return &URLComponents{} }, m)
}

// resolved builds the URL the components currently describe.
func (c *URLComponents) resolved() *url.URL {
	u := c.URL
	u.RawQuery = encodeQueryItems(c.Items)
	u.ForceQuery = false
	return &u
}

func installQueryItem(f *Foundation) {
	m := f.Space.NewMethodTable()
	build := func(_ any, args []any) (any, error) {
		q := &QueryItem{Name: stringArg(args[0])}
		if args[1] != nil {
			v := stringArg(args[1])
			q.Value = &v
		}
		return q, nil
	}

	m.AddClassMethod("queryItemWithName:value:", "@32@0:8@16@24", build)
	m.AddInstanceMethod("initWithName:value:", "@32@0:8@16@24", build)
	m.AddInstanceMethod("name", "@16@0:8", func(self any, _ []any) (any, error) {
		return self.(*QueryItem).Name, nil
	})
	m.AddInstanceMethod("value", "@16@0:8", func(self any, _ []any) (any, error) {
		if v := self.(*QueryItem).Value; v != nil {
			return *v, nil
		}
		return nil, nil
	})
	m.AddInstanceMethod("description", "@16@0:8", func(self any, _ []any) (any, error) {
		return self.(*QueryItem).String(), nil
	})

	f.Space.RegisterGoType("NSURLQueryItem", "NSObject", reflect.TypeFor[*QueryItem](),
		func() any { return &QueryItem{} }, m)
}
