package foundation

import (
	"math"
	"reflect"
	"time"
)

// DateFormatter is an NSDateFormatter. Its pattern uses Unicode date
// field symbols such as yyyy-MM-dd HH:mm:ss.
type DateFormatter struct {
	Format   string
	Location *time.Location
}

func installDate(f *Foundation) {
	m := f.Space.NewMethodTable()

	m.AddClassMethod("date", "@16@0:8", func(any, []any) (any, error) {
		return time.Now(), nil
	})
	m.AddClassMethod("dateWithTimeIntervalSince1970:", "@24@0:8d16", func(_ any, args []any) (any, error) {
		return dateFromInterval(args[0].(float64)), nil
	})
	m.AddClassMethod("distantPast", "@16@0:8", func(any, []any) (any, error) {
		return time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC), nil
	})
	m.AddClassMethod("distantFuture", "@16@0:8", func(any, []any) (any, error) {
		return time.Date(4001, 1, 1, 0, 0, 0, 0, time.UTC), nil
	})

	m.AddInstanceMethod("init", "@16@0:8", func(any, []any) (any, error) {
		return time.Now(), nil
	})
	m.AddInstanceMethod("initWithTimeIntervalSince1970:", "@24@0:8d16", func(_ any, args []any) (any, error) {
		return dateFromInterval(args[0].(float64)), nil
	})
	m.AddInstanceMethod("timeIntervalSince1970", "d16@0:8", func(self any, _ []any) (any, error) {
		return intervalSince1970(self.(time.Time)), nil
	})
	m.AddInstanceMethod("timeIntervalSinceDate:", "d24@0:8@16", func(self any, args []any) (any, error) {
		other, ok := args[0].(time.Time)
		if !ok {
			raise(InvalidArgumentException, "timeIntervalSinceDate: with %T", args[0])
		}
		return self.(time.Time).Sub(other).Seconds(), nil
	})
	m.AddInstanceMethod("dateByAddingTimeInterval:", "@24@0:8d16", func(self any, args []any) (any, error) {
		return self.(time.Time).Add(seconds(args[0].(float64))), nil
	})
	m.AddInstanceMethod("compare:", "q24@0:8@16", func(self any, args []any) (any, error) {
		other, ok := args[0].(time.Time)
		if !ok {
			raise(InvalidArgumentException, "compare: with %T", args[0])
		}
		return int64(self.(time.Time).Compare(other)), nil
	})
	m.AddInstanceMethod("isEqualToDate:", "B24@0:8@16", func(self any, args []any) (any, error) {
		other, ok := args[0].(time.Time)
		return ok && self.(time.Time).Equal(other), nil
	})
	m.AddInstanceMethod("description", "@16@0:8", func(self any, _ []any) (any, error) {
		return self.(time.Time).UTC().Format("2006-01-02 15:04:05 -0700"), nil
	})

	f.Space.RegisterGoType("NSDate", "NSObject", reflect.TypeFor[time.Time](), func() any { return time.Time{} }, m)
}

func installDateFormatter(f *Foundation) {
	m := f.Space.NewMethodTable()
	loc := f.opts.location

	m.AddInstanceMethod("dateFormat", "@16@0:8", func(self any, _ []any) (any, error) {
		return self.(*DateFormatter).Format, nil
	})
	m.AddInstanceMethod("setDateFormat:", "v24@0:8@16", func(self any, args []any) (any, error) {
		self.(*DateFormatter).Format = stringArg(args[0])
		return nil, nil
	})
	m.AddInstanceMethod("timeZoneName", "@16@0:8", func(self any, _ []any) (any, error) {
		return self.(*DateFormatter).Location.String(), nil
	})
	m.AddInstanceMethod("setTimeZoneName:", "v24@0:8@16", func(self any, args []any) (any, error) {
		l, err := time.LoadLocation(stringArg(args[0]))
		if err != nil {
			raise(InvalidArgumentException, "unknown time zone %q", stringArg(args[0]))
		}
		self.(*DateFormatter).Location = l
		return nil, nil
	})
	m.AddInstanceMethod("stringFromDate:", "@24@0:8@16", func(self any, args []any) (any, error) {
		df := self.(*DateFormatter)
		t, ok := args[0].(time.Time)
		if !ok || df.Format == "" {
			return "", nil
		}
		return FormatDate(t.In(df.Location), df.Format), nil
	})
	m.AddInstanceMethod("dateFromString:", "@24@0:8@16", func(self any, args []any) (any, error) {
		df := self.(*DateFormatter)
		if df.Format == "" {
			return nil, nil
		}
		t, err := ParseDate(stringArg(args[0]), df.Format, df.Location)
		if err != nil {
			return nil, nil
		}
		return t, nil
	})

	f.Space.RegisterGoType("NSDateFormatter", "NSObject", reflect.TypeFor[*DateFormatter](),
		func() any { return &DateFormatter{Location: loc} }, m)
}

func dateFromInterval(secs float64) time.Time {
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}

func intervalSince1970(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
