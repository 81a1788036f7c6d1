package foundation_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/dynamic/foundation"
	"github.com/chazu/dynamic/invoke"
	"github.com/chazu/dynamic/objspace"
	"github.com/chazu/dynamic/typeenc"
	"github.com/chazu/dynamic/typemap"
)

func newFoundation(t *testing.T, opts ...foundation.Option) *foundation.Foundation {
	t.Helper()
	f := foundation.New(opts...)
	t.Cleanup(func() { f.Close() })
	return f
}

// send performs a full marshaled send and returns the invocation.
func send(t *testing.T, f *foundation.Foundation, target any, selector string, args ...any) *invoke.Invocation {
	t.Helper()
	inv, err := invoke.New(f.Space, target, selector)
	require.NoError(t, err)
	for i, a := range args {
		require.NoError(t, inv.SetArgument(a, i), "argument %d of %s", i, selector)
	}
	inv.Invoke()
	return inv
}

// result returns the decoded return value of a successful send.
func result(t *testing.T, f *foundation.Foundation, target any, selector string, args ...any) any {
	t.Helper()
	inv := send(t, f, target, selector, args...)
	require.NoError(t, inv.Err())
	if inv.ReturnsObject() {
		return inv.ReturnedObject()
	}
	if !inv.ReturnsAny() {
		return nil
	}
	buf := make([]byte, inv.ReturnLength())
	inv.GetReturnValue(buf)
	v, err := typeenc.Unmarshal(inv.ReturnDescriptor(), buf)
	require.NoError(t, err)
	return v
}

func class(t *testing.T, f *foundation.Foundation, name string) *objspace.Class {
	t.Helper()
	c := f.Space.GetClass(name)
	require.NotNil(t, c, "class %s", name)
	return c
}

func raised(t *testing.T, inv *invoke.Invocation) *foundation.Exception {
	t.Helper()
	var re *invoke.RaiseError
	require.ErrorAs(t, inv.Err(), &re)
	exc, ok := re.Value.(*foundation.Exception)
	require.True(t, ok, "raised %T", re.Value)
	return exc
}

func TestExceptionIsNotAnError(t *testing.T) {
	var v any = foundation.NewException("X", "y", nil)
	_, isErr := v.(error)
	assert.False(t, isErr)
}

func TestObjectBasics(t *testing.T) {
	f := newFoundation(t)
	nsobject := class(t, f, "NSObject")

	obj := result(t, f, nsobject, "new")
	inst, ok := obj.(*objspace.Instance)
	require.True(t, ok)
	assert.Equal(t, "NSObject", inst.Class.Name)

	assert.Equal(t, "NSObject", result(t, f, obj, "className"))
	assert.Equal(t, true, result(t, f, obj, "isKindOfClass:", nsobject))
	assert.Equal(t, true, result(t, f, obj, "respondsToSelector:", invoke.Selector("description")))
	assert.Equal(t, false, result(t, f, obj, "respondsToSelector:", invoke.Selector("frobnicate")))
	assert.Equal(t, true, result(t, f, nsobject, "instancesRespondToSelector:", invoke.Selector("hash")))
	assert.Nil(t, result(t, f, nsobject, "superclass"))
	assert.Same(t, nsobject, result(t, f, class(t, f, "NSString"), "superclass"))
}

func TestUnboundValuesAnswerRootMethods(t *testing.T) {
	f := newFoundation(t)
	type opaque struct{ n int }

	assert.Equal(t, "NSObject", result(t, f, opaque{1}, "className"))
	assert.Equal(t, "{1}", result(t, f, opaque{1}, "description"))
}

func TestPerformSelector(t *testing.T) {
	f := newFoundation(t)

	assert.Equal(t, "HELLO", result(t, f, "hello", "performSelector:", invoke.Selector("uppercaseString")))
	assert.Equal(t, "ab", result(t, f, "a", "performSelector:withObject:", invoke.Selector("stringByAppendingString:"), "b"))
}

func TestStrings(t *testing.T) {
	f := newFoundation(t)

	assert.Equal(t, uint64(5), result(t, f, "héllo", "length"))
	assert.Equal(t, uint64(2), result(t, f, "😀", "length"))
	assert.Equal(t, uint16('e'), result(t, f, "hello", "characterAtIndex:", 1))
	assert.Equal(t, "ABC", result(t, f, "abc", "uppercaseString"))
	assert.Equal(t, "trim", result(t, f, "  trim\n", "stringByTrimmingWhitespace"))
	assert.Equal(t, []any{"a", "b", "c"}, result(t, f, "a,b,c", "componentsSeparatedByString:", ","))
	assert.Equal(t, true, result(t, f, "dynamic", "hasPrefix:", "dyn"))
	assert.Equal(t, false, result(t, f, "dynamic", "isEqualToString:", 7))
	assert.Equal(t, int32(42), result(t, f, " 42abc", "intValue"))
	assert.Equal(t, int64(-7), result(t, f, "-7", "integerValue"))
	assert.Equal(t, 2.5, result(t, f, "2.5", "doubleValue"))
	assert.Equal(t, true, result(t, f, "YES", "boolValue"))
	assert.Equal(t, "x", result(t, f, class(t, f, "NSString"), "stringWithString:", "x"))
	assert.Equal(t, "", result(t, f, class(t, f, "NSString"), "new"))
}

func TestCharacterAtIndexRaisesRange(t *testing.T) {
	f := newFoundation(t)

	inv := send(t, f, "ab", "characterAtIndex:", 5)
	exc := raised(t, inv)
	assert.Equal(t, foundation.RangeException, exc.Name)
}

func TestNumbers(t *testing.T) {
	f := newFoundation(t)
	number := class(t, f, "NSNumber")

	n := result(t, f, number, "numberWithInt:", int32(7))
	assert.Equal(t, int32(7), n)
	assert.Equal(t, 7.0, result(t, f, n, "doubleValue"))
	assert.Equal(t, uint64(7), result(t, f, n, "unsignedIntegerValue"))
	assert.Equal(t, true, result(t, f, n, "boolValue"))
	assert.Equal(t, "7", result(t, f, n, "stringValue"))
	assert.Equal(t, true, result(t, f, n, "isEqualToNumber:", 7.0))
	assert.Equal(t, int64(-1), result(t, f, n, "compare:", int64(9)))

	d := result(t, f, number, "numberWithDouble:", 1.5)
	assert.Equal(t, int64(1), result(t, f, d, "integerValue"))
	assert.Equal(t, "1.5", result(t, f, d, "description"))

	b := result(t, f, number, "numberWithBool:", true)
	assert.Equal(t, "NSNumber", result(t, f, b, "className"))
}

func TestArrays(t *testing.T) {
	f := newFoundation(t)
	array := class(t, f, "NSArray")

	a := result(t, f, array, "arrayWithObject:", "x")
	a = result(t, f, a, "arrayByAddingObject:", int64(2))
	assert.Equal(t, []any{"x", int64(2)}, a)
	assert.Equal(t, uint64(2), result(t, f, a, "count"))
	assert.Equal(t, "x", result(t, f, a, "firstObject"))
	assert.Equal(t, int64(2), result(t, f, a, "lastObject"))
	assert.Equal(t, uint64(1), result(t, f, a, "indexOfObject:", int64(2)))
	assert.Equal(t, foundation.NotFound, result(t, f, a, "indexOfObject:", "missing"))
	assert.Equal(t, "x-2", result(t, f, a, "componentsJoinedByString:", "-"))
	assert.Equal(t, "(x, 2)", result(t, f, a, "description"))
	assert.Nil(t, result(t, f, []any{}, "firstObject"))

	exc := raised(t, send(t, f, a, "objectAtIndex:", 2))
	assert.Equal(t, foundation.RangeException, exc.Name)
}

func TestMutableArray(t *testing.T) {
	f := newFoundation(t)

	ma := result(t, f, class(t, f, "NSMutableArray"), "new")
	require.IsType(t, &foundation.MutableArray{}, ma)

	send(t, f, ma, "addObject:", "a")
	send(t, f, ma, "addObject:", "c")
	require.NoError(t, send(t, f, ma, "insertObject:atIndex:", "b", 1).Err())
	assert.Equal(t, []any{"a", "b", "c"}, ma.(*foundation.MutableArray).Items)

	// Inherited from NSArray.
	assert.Equal(t, uint64(3), result(t, f, ma, "count"))
	assert.Equal(t, "b", result(t, f, ma, "objectAtIndex:", 1))

	send(t, f, ma, "removeLastObject")
	assert.Equal(t, []any{"a", "b"}, result(t, f, ma, "copy"))

	exc := raised(t, send(t, f, ma, "insertObject:atIndex:", "z", 9))
	assert.Equal(t, foundation.RangeException, exc.Name)
}

func TestDictionaries(t *testing.T) {
	f := newFoundation(t)

	d := result(t, f, class(t, f, "NSDictionary"), "dictionaryWithObject:forKey:", int64(1), "one")
	d = result(t, f, d, "dictionaryByAddingObject:forKey:", "II", "two")
	assert.Equal(t, uint64(2), result(t, f, d, "count"))
	assert.Equal(t, int64(1), result(t, f, d, "objectForKey:", "one"))
	assert.Nil(t, result(t, f, d, "objectForKey:", "three"))
	assert.Equal(t, []any{"one", "two"}, result(t, f, d, "allKeys"))
	assert.Equal(t, "{one = 1; two = II;}", result(t, f, d, "description"))
}

func TestData(t *testing.T) {
	f := newFoundation(t)

	data := result(t, f, class(t, f, "NSData"), "initWithBase64EncodedString:options:", "aGVsbG8=", uint64(0))
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, uint64(5), result(t, f, data, "length"))
	assert.Equal(t, "<68656c6c6f>", result(t, f, data, "description"))
	assert.Equal(t, "aGVsbG8=", result(t, f, data, "base64EncodedStringWithOptions:", uint64(0)))

	sub := result(t, f, data, "subdataWithRange:", typemap.Range{Location: 1, Length: 3})
	assert.Equal(t, []byte("ell"), sub)

	exc := raised(t, send(t, f, data, "subdataWithRange:", typemap.Range{Location: 4, Length: 3}))
	assert.Equal(t, foundation.RangeException, exc.Name)

	assert.Nil(t, result(t, f, class(t, f, "NSData"), "initWithBase64EncodedString:options:", "%%%", uint64(0)))
}

func TestValues(t *testing.T) {
	f := newFoundation(t)
	value := class(t, f, "NSValue")

	v := result(t, f, value, "valueWithCGPoint:", typemap.Point{X: 1, Y: 2})
	box, ok := v.(*typeenc.Boxed)
	require.True(t, ok)
	assert.Equal(t, typemap.PointEncoding, box.Encoding())
	assert.Equal(t, typemap.PointEncoding, result(t, f, v, "objCType"))

	p := result(t, f, v, "CGPointValue").(*typeenc.Boxed)
	pt, ok := typeenc.Unbox[typemap.Point](p)
	require.True(t, ok)
	assert.Equal(t, typemap.Point{X: 1, Y: 2}, pt)

	// A size has the same layout as a point, a rect does not.
	require.NoError(t, send(t, f, v, "CGSizeValue").Err())
	assert.Error(t, send(t, f, v, "CGRectValue").Err())

	other := result(t, f, value, "valueWithCGPoint:", typemap.Point{X: 1, Y: 2})
	assert.Equal(t, true, result(t, f, v, "isEqualToValue:", other))
}

func TestDates(t *testing.T) {
	f := newFoundation(t)
	date := class(t, f, "NSDate")

	d := result(t, f, date, "dateWithTimeIntervalSince1970:", 86400.5)
	tm, ok := d.(time.Time)
	require.True(t, ok)
	assert.True(t, tm.Equal(time.Date(1970, 1, 2, 0, 0, 0, 500_000_000, time.UTC)))
	assert.Equal(t, 86400.5, result(t, f, d, "timeIntervalSince1970"))

	later := result(t, f, d, "dateByAddingTimeInterval:", 60.0)
	assert.Equal(t, 60.0, result(t, f, later, "timeIntervalSinceDate:", d))
	assert.Equal(t, int64(1), result(t, f, later, "compare:", d))
	assert.Equal(t, "1970-01-02 00:00:00 +0000", result(t, f, d, "description"))

	now := result(t, f, date, "new").(time.Time)
	assert.WithinDuration(t, time.Now(), now, time.Minute)
}

func TestDateFormatter(t *testing.T) {
	f := newFoundation(t)
	formatter := result(t, f, class(t, f, "NSDateFormatter"), "new")
	d := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

	assert.Equal(t, "", result(t, f, formatter, "stringFromDate:", d))
	assert.Equal(t, "UTC", result(t, f, formatter, "timeZoneName"))

	send(t, f, formatter, "setDateFormat:", "yyyy-MM-dd'T'HH:mm:ss")
	assert.Equal(t, "2024-03-05T14:07:09", result(t, f, formatter, "stringFromDate:", d))

	parsed := result(t, f, formatter, "dateFromString:", "2024-03-05T14:07:09")
	require.IsType(t, time.Time{}, parsed)
	assert.True(t, parsed.(time.Time).Equal(d))
	assert.Nil(t, result(t, f, formatter, "dateFromString:", "not a date"))

	send(t, f, formatter, "setDateFormat:", "yyyy 'Q1' ssSSS")
	withMillis := d.Add(42 * time.Millisecond)
	assert.Equal(t, "2024 Q1 09042", result(t, f, formatter, "stringFromDate:", withMillis))
	assert.Nil(t, result(t, f, formatter, "dateFromString:", "2024 Q3 09042"))

	exc := raised(t, send(t, f, formatter, "setTimeZoneName:", "Nowhere/Special"))
	assert.Equal(t, foundation.InvalidArgumentException, exc.Name)
}

func TestDateFormatterStartsInConfiguredZone(t *testing.T) {
	loc := time.FixedZone("PLUS2", 2*60*60)
	f := newFoundation(t, foundation.WithTimeZone(loc))
	formatter := result(t, f, class(t, f, "NSDateFormatter"), "new")
	send(t, f, formatter, "setDateFormat:", "HH:mm")

	d := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "12:00", result(t, f, formatter, "stringFromDate:", d))
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, 3, 5, 14, 7, 9, 250_000_000, time.UTC)

	tests := []struct {
		pattern string
		want    string
	}{
		{"yyyy-MM-dd", "2024-03-05"},
		{"yy/M/d", "24/3/5"},
		{"EEEE, MMMM d", "Tuesday, March 5"},
		{"EEE MMM dd", "Tue Mar 05"},
		{"h:mm a", "2:07 PM"},
		{"HH:mm:ss.SSS", "14:07:09.250"},
		{"ssSSS", "09250"},
		{"HH:mm:ss.S", "14:07:09.2"},
		{"yyyy-MM-dd'T'HH:mm:ssZZZZZ", "2024-03-05T14:07:09+00:00"},
		{"HHmm Z", "1407 +0000"},
		{"'o''clock' h", "o'clock 2"},
		{"''", "'"},
		{"zzz", "UTC"},
		{"yyyy 'Q1'", "2024 Q1"},
		{"'Jan 2 2006 PM' yyyy", "Jan 2 2006 PM 2024"},
		{"'at' 15", "at 15"},
		{"yyyy qq", "2024 qq"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, foundation.FormatDate(d, tt.pattern))
		})
	}
}

func TestParseDate(t *testing.T) {
	plus2 := time.FixedZone("", 2*60*60)

	tests := []struct {
		pattern string
		value   string
		want    time.Time
	}{
		{"yyyy-MM-dd", "2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"yyyyMMddHHmmss", "20240305140709", time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)},
		{"HH:mm:ss.SSS", "14:07:09.250", time.Date(1970, 1, 1, 14, 7, 9, 250_000_000, time.UTC)},
		{"ssSSS", "09250", time.Date(1970, 1, 1, 0, 0, 9, 250_000_000, time.UTC)},
		{"yyyy 'Q1'", "2024 Q1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"EEE, d MMM yyyy h:mm a", "Tue, 5 Mar 2024 2:07 PM", time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)},
		{"MMMM d yy", "march 5 24", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"h a", "12 AM", time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"yyyy-MM-dd'T'HH:mmXXXXX", "2024-03-05T14:07+02:00", time.Date(2024, 3, 5, 14, 7, 0, 0, plus2)},
		{"yyyy-MM-dd'T'HH:mmXXXXX", "2024-03-05T14:07Z", time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)},
		{"yyyy D", "2024 60", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.value, func(t *testing.T) {
			got, err := foundation.ParseDate(tt.value, tt.pattern, time.UTC)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParseDateRejects(t *testing.T) {
	tests := []struct {
		pattern string
		value   string
	}{
		{"yyyy 'Q1'", "2024 Q3"},
		{"yyyy-MM-dd", "2024-02-30"},
		{"yyyy-MM-dd", "2024-13-01"},
		{"yyyy-MM-dd", "2024-03-05 extra"},
		{"HH:mm", "25:00"},
		{"HH:mm", "12"},
		{"MMM", "Foo"},
		{"Z", "0200"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.value, func(t *testing.T) {
			_, err := foundation.ParseDate(tt.value, tt.pattern, time.UTC)
			assert.ErrorIs(t, err, foundation.ErrDateMismatch)
		})
	}
}

func TestUUIDs(t *testing.T) {
	f := newFoundation(t)
	nsuuid := class(t, f, "NSUUID")
	const text = "E621E1F8-C36C-495A-93FC-0C247A3E6E5F"

	id := result(t, f, nsuuid, "initWithUUIDString:", text)
	require.IsType(t, uuid.UUID{}, id)
	assert.Equal(t, text, result(t, f, id, "UUIDString"))

	assert.Nil(t, result(t, f, nsuuid, "initWithUUIDString:", "not-a-uuid"))

	fresh := result(t, f, nsuuid, "new").(uuid.UUID)
	assert.NotEqual(t, uuid.Nil, fresh)
	assert.Equal(t, false, result(t, f, fresh, "isEqual:", id))
}

func TestExceptions(t *testing.T) {
	f := newFoundation(t)
	exception := class(t, f, "NSException")
	info := map[string]any{"k": "v"}

	exc := result(t, f, exception, "exceptionWithName:reason:userInfo:", "Boom", "it broke", info)
	require.IsType(t, &foundation.Exception{}, exc)
	assert.Equal(t, "Boom", result(t, f, exc, "name"))
	assert.Equal(t, "it broke", result(t, f, exc, "reason"))
	assert.Equal(t, info, result(t, f, exc, "userInfo"))
	assert.Equal(t, "Boom: it broke", result(t, f, exc, "description"))

	inv := send(t, f, exc, "raise")
	assert.Same(t, exc, raised(t, inv))
	assert.Contains(t, inv.Err().Error(), "Boom: it broke")
}

func TestURLs(t *testing.T) {
	f := newFoundation(t)

	u := result(t, f, class(t, f, "NSURL"), "URLWithString:", "https://example.com:8443/a/b.txt?q=1")
	require.IsType(t, &url.URL{}, u)
	assert.Equal(t, "https", result(t, f, u, "scheme"))
	assert.Equal(t, "example.com", result(t, f, u, "host"))
	assert.Equal(t, int64(8443), result(t, f, u, "port"))
	assert.Equal(t, "/a/b.txt", result(t, f, u, "path"))
	assert.Equal(t, "b.txt", result(t, f, u, "lastPathComponent"))
	assert.Equal(t, "q=1", result(t, f, u, "query"))

	appended := result(t, f, u, "URLByAppendingPathComponent:", "c")
	assert.Equal(t, "https://example.com:8443/a/b.txt/c?q=1", result(t, f, appended, "absoluteString"))
}

func TestURLComponents(t *testing.T) {
	f := newFoundation(t)

	c := result(t, f, class(t, f, "NSURLComponents"), "componentsWithString:", "http://host/path?a=1&flag")
	items := result(t, f, c, "queryItems").([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "a", result(t, f, items[0], "name"))
	assert.Equal(t, "1", result(t, f, items[0], "value"))
	assert.Nil(t, result(t, f, items[1], "value"))

	send(t, f, c, "setScheme:", "https")
	send(t, f, c, "setPort:", int64(8080))
	send(t, f, c, "setPath:", "/other")
	item := result(t, f, class(t, f, "NSURLQueryItem"), "queryItemWithName:value:", "x y", "1&2")
	send(t, f, c, "setQueryItems:", []any{item})

	assert.Equal(t, "https://host:8080/other?x+y=1%262", result(t, f, c, "string"))
	u := result(t, f, c, "URL")
	assert.Equal(t, "host", result(t, f, u, "host"))
}

func TestProgress(t *testing.T) {
	f := newFoundation(t)

	p := result(t, f, class(t, f, "NSProgress"), "progressWithTotalUnitCount:", int64(4))
	assert.Equal(t, 0.0, result(t, f, p, "fractionCompleted"))

	send(t, f, p, "setCompletedUnitCount:", int64(1))
	assert.Equal(t, 0.25, result(t, f, p, "fractionCompleted"))
	assert.Equal(t, false, result(t, f, p, "isFinished"))

	calls := 0
	send(t, f, p, "setCancellationHandler:", func() { calls++ })
	send(t, f, p, "cancel")
	send(t, f, p, "cancel")
	assert.Equal(t, 1, calls)
	assert.Equal(t, true, result(t, f, p, "isCancelled"))

	send(t, f, p, "setCompletedUnitCount:", int64(4))
	assert.Equal(t, true, result(t, f, p, "isFinished"))
}

func TestProcessInfo(t *testing.T) {
	f := newFoundation(t,
		foundation.WithProcessName("dyn-test"),
		foundation.WithArguments([]string{"dyn", "-v"}),
		foundation.WithEnvironment(map[string]string{"HOME": "/home/test"}))

	pi := result(t, f, class(t, f, "NSProcessInfo"), "processInfo")
	assert.Same(t, f.ProcessInfo(), pi)

	assert.Equal(t, "dyn-test", result(t, f, pi, "processName"))
	send(t, f, pi, "setProcessName:", "renamed")
	assert.Equal(t, "renamed", f.ProcessInfo().Name())

	assert.Equal(t, []any{"dyn", "-v"}, result(t, f, pi, "arguments"))
	assert.Equal(t, map[string]any{"HOME": "/home/test"}, result(t, f, pi, "environment"))
	assert.Greater(t, result(t, f, pi, "processorCount").(uint64), uint64(0))
	assert.Greater(t, result(t, f, pi, "processIdentifier").(int32), int32(0))

	v := result(t, f, pi, "operatingSystemVersion").(*typeenc.Boxed)
	osv, ok := typeenc.Unbox[typemap.OperatingSystemVersion](v)
	require.True(t, ok)
	assert.Equal(t, osv, f.ProcessInfo().OperatingSystemVersion())

	assert.Equal(t, true, result(t, f, pi, "isOperatingSystemAtLeastVersion:", typemap.OperatingSystemVersion{}))
	assert.Equal(t, false, result(t, f, pi, "isOperatingSystemAtLeastVersion:",
		typemap.OperatingSystemVersion{Major: osv.Major + 1}))
}
