package dynamic

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Arg is a keyword-tagged call argument. An empty keyword contributes only
// the ':' separator.
type Arg struct {
	Keyword string
	Value   any
}

// Named tags value with a keyword.
func Named(keyword string, value any) Arg {
	return Arg{Keyword: keyword, Value: value}
}

// Positional is an argument with no keyword.
func Positional(value any) Arg {
	return Arg{Value: value}
}

// keywordSelector appends the argument keywords to base. The first keyword
// is capitalised and fused onto base; later keywords are appended as they
// are. Every keyword is followed by ':'.
//
//	keywordSelector("initWith", UUIDString)           -> initWithUUIDString:
//	keywordSelector("exceptionWithName", "", reason, userInfo)
//	                                                  -> exceptionWithName:reason:userInfo:
func keywordSelector(base string, args []Arg) string {
	var b strings.Builder
	b.WriteString(base)
	for i, a := range args {
		if i == 0 {
			b.WriteString(capitalize(a.Keyword))
		} else {
			b.WriteString(a.Keyword)
		}
		b.WriteByte(':')
	}
	return b.String()
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// setterName returns "set" + the capitalised property name, without the
// trailing colon; the single positional argument supplies it.
func setterName(property string) string {
	return "set" + capitalize(property)
}

func values(args []Arg) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a.Value
	}
	return out
}
