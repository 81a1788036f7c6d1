package foundation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrDateMismatch reports text that does not match a date pattern.
var ErrDateMismatch = errors.New("date does not match pattern")

// patternToken is one piece of a Unicode date pattern (the NSDateFormatter
// dateFormat syntax): a run of n identical field letters, or literal text
// when letter is zero.
type patternToken struct {
	letter  byte
	n       int
	literal string
}

// tokenizePattern splits pattern into fields and literals. Quoted text
// and non-letters are literal. Two adjacent quotes stand for one quote,
// inside or outside a quoted run.
func tokenizePattern(pattern string) []patternToken {
	var (
		toks []patternToken
		lit  strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			toks = append(toks, patternToken{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(pattern); {
		c := pattern[i]

		if c == '\'' {
			i = quoted(&lit, pattern, i)
			continue
		}

		if !isPatternLetter(c) {
			r, n := utf8.DecodeRuneInString(pattern[i:])
			lit.WriteRune(r)
			i += n
			continue
		}

		n := 1
		for i+n < len(pattern) && pattern[i+n] == c {
			n++
		}
		if _, ok := layoutFor(c, n); !ok {
			lit.WriteString(pattern[i : i+n])
			i += n
			continue
		}
		flush()
		toks = append(toks, patternToken{letter: c, n: n})
		i += n
	}
	flush()
	return toks
}

// quoted copies the literal starting at the quote at i and returns the
// index after it.
func quoted(b *strings.Builder, pattern string, i int) int {
	if i+1 < len(pattern) && pattern[i+1] == '\'' {
		b.WriteByte('\'')
		return i + 2
	}
	for i++; i < len(pattern); i++ {
		if pattern[i] != '\'' {
			b.WriteByte(pattern[i])
			continue
		}
		if i+1 < len(pattern) && pattern[i+1] == '\'' {
			b.WriteByte('\'')
			i++
			continue
		}
		return i + 1
	}
	return i
}

func isPatternLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// layoutFor returns the Go layout for a single field. Fractional seconds
// have no standalone layout and are formatted by hand.
func layoutFor(c byte, n int) (string, bool) {
	switch c {
	case 'y', 'u':
		if n == 2 {
			return "06", true
		}
		return "2006", true
	case 'M', 'L':
		switch {
		case n >= 4:
			return "January", true
		case n == 3:
			return "Jan", true
		case n == 2:
			return "01", true
		}
		return "1", true
	case 'd':
		if n >= 2 {
			return "02", true
		}
		return "2", true
	case 'D':
		return "002", true
	case 'E':
		if n >= 4 {
			return "Monday", true
		}
		return "Mon", true
	case 'H', 'k':
		return "15", true
	case 'h', 'K':
		if n >= 2 {
			return "03", true
		}
		return "3", true
	case 'm':
		if n >= 2 {
			return "04", true
		}
		return "4", true
	case 's':
		if n >= 2 {
			return "05", true
		}
		return "5", true
	case 'S':
		return "", true
	case 'a':
		return "PM", true
	case 'z':
		return "MST", true
	case 'Z':
		if n >= 5 {
			return "-07:00", true
		}
		return "-0700", true
	case 'X':
		if n >= 3 {
			return "Z07:00", true
		}
		return "Z0700", true
	case 'x':
		if n >= 3 {
			return "-07:00", true
		}
		return "-0700", true
	}
	return "", false
}

// FormatDate renders t with a Unicode date pattern. Each field is
// formatted on its own, so literal text is never read as a layout.
//
//	FormatDate(t, "yyyy-MM-dd'T'HH:mm:ss.SSS") -> 2024-03-05T14:07:09.250
func FormatDate(t time.Time, pattern string) string {
	var b strings.Builder
	for _, tok := range tokenizePattern(pattern) {
		switch tok.letter {
		case 0:
			b.WriteString(tok.literal)
		case 'S':
			b.WriteString(fraction(t.Nanosecond(), tok.n))
		case 'k':
			if t.Hour() == 0 {
				b.WriteString("24")
				continue
			}
			b.WriteString(t.Format("15"))
		case 'K':
			fmt.Fprintf(&b, "%0*d", min(tok.n, 2), t.Hour()%12)
		default:
			layout, _ := layoutFor(tok.letter, tok.n)
			b.WriteString(t.Format(layout))
		}
	}
	return b.String()
}

// fraction returns the leading n digits of a nanosecond count.
func fraction(nsec, n int) string {
	digits := fmt.Sprintf("%09d", nsec)
	if n <= len(digits) {
		return digits[:n]
	}
	return digits + strings.Repeat("0", n-len(digits))
}

// ParseDate reads value with a Unicode date pattern, consuming literals
// exactly and fields one at a time. Fields the pattern lacks default to
// 1970-01-01 00:00:00 in loc.
func ParseDate(value, pattern string, loc *time.Location) (time.Time, error) {
	p := dateParser{
		src:   value,
		year:  1970,
		month: 1,
		day:   1,
		loc:   loc,
	}
	for _, tok := range tokenizePattern(pattern) {
		if err := p.token(tok); err != nil {
			return time.Time{}, err
		}
	}
	if p.pos != len(p.src) {
		return time.Time{}, fmt.Errorf("%w: trailing text %q", ErrDateMismatch, p.src[p.pos:])
	}
	return p.date()
}

type dateParser struct {
	src string
	pos int

	year, month, day, yday     int
	hour, minute, second, nsec int
	pm, twelveHour             bool
	hasPM                      bool
	loc                        *time.Location
}

func (p *dateParser) token(tok patternToken) error {
	var err error
	switch tok.letter {
	case 0:
		if !strings.HasPrefix(p.src[p.pos:], tok.literal) {
			return fmt.Errorf("%w: expected %q at offset %d", ErrDateMismatch, tok.literal, p.pos)
		}
		p.pos += len(tok.literal)
	case 'y', 'u':
		if tok.n == 2 {
			var yy int
			if yy, err = p.digits(2, 2); err == nil {
				p.year = 1900 + yy
				if yy < 69 {
					p.year = 2000 + yy
				}
			}
			break
		}
		p.year, err = p.digits(1, max(tok.n, 4))
	case 'M', 'L':
		if tok.n >= 3 {
			var m int
			m, err = p.name(tok.n >= 4, func(i int) string { return time.Month(i + 1).String() }, 12)
			p.month = m + 1
			break
		}
		p.month, err = p.digits(min(tok.n, 2), 2)
	case 'd':
		p.day, err = p.digits(min(tok.n, 2), 2)
	case 'D':
		p.yday, err = p.digits(min(tok.n, 3), 3)
	case 'E':
		_, err = p.name(tok.n >= 4, func(i int) string { return time.Weekday(i).String() }, 7)
	case 'H', 'k', 'h', 'K':
		p.hour, err = p.digits(min(tok.n, 2), 2)
		switch tok.letter {
		case 'k':
			if p.hour == 24 {
				p.hour = 0
			}
		case 'h', 'K':
			p.twelveHour = true
		}
	case 'm':
		p.minute, err = p.digits(min(tok.n, 2), 2)
	case 's':
		p.second, err = p.digits(min(tok.n, 2), 2)
	case 'S':
		// Digits past nanosecond precision are read and dropped.
		start := p.pos
		var frac int
		if frac, err = p.digits(1, min(tok.n, 9)); err == nil {
			for w := p.pos - start; w < 9; w++ {
				frac *= 10
			}
			p.nsec = frac
			_, err = p.digits(0, tok.n-(p.pos-start))
		}
	case 'a':
		var i int
		i, err = p.name(true, func(i int) string { return [...]string{"AM", "PM"}[i] }, 2)
		p.pm, p.hasPM = i == 1, true
	case 'z':
		err = p.zoneName()
	case 'Z', 'X', 'x':
		err = p.zoneOffset(tok.letter == 'X')
	}
	return err
}

// digits reads between lo and hi decimal digits.
func (p *dateParser) digits(lo, hi int) (int, error) {
	v, n := 0, 0
	for n < hi && p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		v = v*10 + int(p.src[p.pos]-'0')
		p.pos++
		n++
	}
	if n < lo {
		return 0, fmt.Errorf("%w: expected digits at offset %d", ErrDateMismatch, p.pos)
	}
	return v, nil
}

// name matches one of count names, in full or by their first three
// letters, ignoring case, and returns its index.
func (p *dateParser) name(full bool, nameOf func(int) string, count int) (int, error) {
	rest := p.src[p.pos:]
	for i := range count {
		name := nameOf(i)
		if !full && len(name) > 3 {
			name = name[:3]
		}
		if len(rest) >= len(name) && strings.EqualFold(rest[:len(name)], name) {
			p.pos += len(name)
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: expected a name at offset %d", ErrDateMismatch, p.pos)
}

func (p *dateParser) zoneName() error {
	start := p.pos
	for p.pos < len(p.src) && isPatternLetter(p.src[p.pos]) {
		p.pos++
	}
	abbr := p.src[start:p.pos]
	if abbr == "" {
		return fmt.Errorf("%w: expected a time zone at offset %d", ErrDateMismatch, start)
	}
	t, err := time.Parse("MST", abbr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDateMismatch, err)
	}
	p.loc = t.Location()
	return nil
}

// zoneOffset reads +hh, +hhmm or +hh:mm, or Z when allowZ is set.
func (p *dateParser) zoneOffset(allowZ bool) error {
	if allowZ && p.pos < len(p.src) && p.src[p.pos] == 'Z' {
		p.pos++
		p.loc = time.UTC
		return nil
	}
	if p.pos >= len(p.src) || (p.src[p.pos] != '+' && p.src[p.pos] != '-') {
		return fmt.Errorf("%w: expected a zone offset at offset %d", ErrDateMismatch, p.pos)
	}
	sign := 1
	if p.src[p.pos] == '-' {
		sign = -1
	}
	p.pos++

	hh, err := p.digits(2, 2)
	if err != nil {
		return err
	}
	if p.pos < len(p.src) && p.src[p.pos] == ':' {
		p.pos++
	}
	mm := 0
	if p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		if mm, err = p.digits(2, 2); err != nil {
			return err
		}
	}
	if hh > 23 || mm > 59 {
		return fmt.Errorf("%w: zone offset out of range", ErrDateMismatch)
	}
	p.loc = time.FixedZone("", sign*(hh*3600+mm*60))
	return nil
}

func (p *dateParser) date() (time.Time, error) {
	hour := p.hour
	if p.twelveHour {
		if hour > 12 {
			return time.Time{}, fmt.Errorf("%w: hour %d out of range", ErrDateMismatch, hour)
		}
		hour %= 12
	}
	if p.hasPM && p.pm && hour < 12 {
		hour += 12
	}
	if hour > 23 || p.minute > 59 || p.second > 59 {
		return time.Time{}, fmt.Errorf("%w: time out of range", ErrDateMismatch)
	}

	if p.yday > 0 {
		t := time.Date(p.year, 1, p.yday, hour, p.minute, p.second, p.nsec, p.loc)
		if t.Year() != p.year {
			return time.Time{}, fmt.Errorf("%w: day of year %d out of range", ErrDateMismatch, p.yday)
		}
		return t, nil
	}

	t := time.Date(p.year, time.Month(p.month), p.day, hour, p.minute, p.second, p.nsec, p.loc)
	if t.Month() != time.Month(p.month) || t.Day() != p.day {
		return time.Time{}, fmt.Errorf("%w: no day %d in month %d", ErrDateMismatch, p.day, p.month)
	}
	return t, nil
}
