package dynamic_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/dynamic/diag"
	"github.com/chazu/dynamic/dynamic"
	"github.com/chazu/dynamic/foundation"
	"github.com/chazu/dynamic/invoke"
	"github.com/chazu/dynamic/typemap"
)

// newEnv installs the class library plus a Widget class with one property
// per supported return category.
func newEnv(t *testing.T, opts ...dynamic.EnvOption) (*dynamic.Env, *foundation.Foundation) {
	t.Helper()
	f := foundation.New()
	t.Cleanup(func() { f.Close() })

	f.Space.RegisterClass("Widget", "NSObject", nil, nil)
	for name, enc := range map[string]string{
		"count":   "q",
		"small":   "i",
		"enabled": "B",
		"ratio":   "d",
		"title":   "@",
		"origin":  typemap.PointEncoding,
	} {
		require.NoError(t, f.Space.AddProperty("Widget", name, enc))
	}
	return dynamic.NewEnv(f.Space, opts...), f
}

func TestPropertyRoundTrip(t *testing.T) {
	env, _ := newEnv(t)
	w := env.Class("Widget").Instantiate()
	require.False(t, w.IsError())

	require.False(t, w.Set("count", int64(5)).IsError())
	n, ok := w.Member("count").AsInt64()
	require.True(t, ok)
	assert.Equal(t, int64(5), n)

	i, ok := w.Member("count").AsInt()
	require.True(t, ok)
	assert.Equal(t, 5, i)

	w.Set("enabled", true)
	b, ok := w.Member("enabled").AsBool()
	require.True(t, ok)
	assert.True(t, b)

	w.Set("ratio", 0.75)
	d, ok := w.Member("ratio").AsDouble()
	require.True(t, ok)
	assert.Equal(t, 0.75, d)

	w.Set("title", "hello")
	s, ok := w.Member("title").AsString()
	require.True(t, ok)
	assert.Equal(t, "hello", s)

	w.Set("origin", typemap.Point{X: 3, Y: 4})
	p, ok := w.Member("origin").AsPoint()
	require.True(t, ok)
	assert.Equal(t, typemap.Point{X: 3, Y: 4}, p)

	var inferred typemap.Point
	assert.True(t, dynamic.AsInferred(w.Member("origin"), &inferred))
	assert.Equal(t, p, inferred)
}

func TestUnsetPropertiesReadZero(t *testing.T) {
	env, _ := newEnv(t)
	w := env.Class("Widget").Instantiate()

	n, ok := w.Member("count").AsInt64()
	require.True(t, ok)
	assert.Zero(t, n)

	assert.True(t, w.Member("title").IsNil())
	_, ok = w.Member("title").AsString()
	assert.False(t, ok)
}

func TestFourByteReturnDoesNotDecodeAsEightBytes(t *testing.T) {
	env, _ := newEnv(t)
	w := env.Class("Widget").Instantiate()
	w.Set("small", int32(9))

	_, ok := w.Member("small").AsInt64()
	assert.False(t, ok)
	_, ok = w.Member("small").AsDouble()
	assert.False(t, ok)

	v, ok := w.Member("small").AsInt32()
	require.True(t, ok)
	assert.Equal(t, int32(9), v)

	u, ok := w.Member("small").AsUInt32()
	require.True(t, ok)
	assert.Equal(t, uint32(9), u)
}

func TestMismatchedSetterArgumentWritesZero(t *testing.T) {
	env, _ := newEnv(t)
	w := env.Class("Widget").Instantiate()
	w.Set("count", int64(7))

	// A 4-byte value does not fit the 8-byte slot; the setter runs with 0.
	assert.False(t, w.Set("count", int32(3)).IsError())
	n, ok := w.Member("count").AsInt64()
	require.True(t, ok)
	assert.Zero(t, n)
}

func TestSetResolvesReferenceValues(t *testing.T) {
	env, _ := newEnv(t)
	w := env.Class("Widget").Instantiate()

	title := env.Wrap("abc").Member("uppercaseString")
	w.Set("title", title)
	s, ok := w.Member("title").AsString()
	require.True(t, ok)
	assert.Equal(t, "ABC", s)
}

func TestUnknownMemberIsTerminal(t *testing.T) {
	env, _ := newEnv(t)
	w := env.Class("Widget").Instantiate()

	missing := w.Member("frobnicate")
	err := missing.Err()
	require.Error(t, err)
	assert.True(t, dynamic.IsNotUnderstood(err))
	assert.ErrorIs(t, err, invoke.ErrNotFound)

	later := missing.Member("anything").Call(dynamic.Positional(1)).Member("more")
	assert.Same(t, err, later.Err())
	assert.True(t, later.IsError())

	_, ok := later.AsInt64()
	assert.False(t, ok)
	s, ok := later.AsString()
	assert.True(t, ok)
	assert.Equal(t, err.Error(), s)

	assert.Same(t, err, later.Set("x", 1).Err())
	assert.Same(t, err, later.Perform("description").Err())
}

func TestRaisedExceptionIsCaptured(t *testing.T) {
	env, _ := newEnv(t)

	exc := env.Class("NSException").
		Member("exceptionWithName").
		Call(dynamic.Positional("Boom"), dynamic.Named("reason", "bad"), dynamic.Named("userInfo", nil))
	require.False(t, exc.IsError())

	raised := exc.Member("raise")
	err := raised.Err()
	var re *invoke.RaiseError
	require.ErrorAs(t, err, &re)
	assert.Same(t, exc.AsObject(), re.Value)

	assert.Same(t, err, raised.Member("name").Member("length").Err())
}

func TestAbsentClass(t *testing.T) {
	var lines []string
	env, _ := newEnv(t, dynamic.WithLogger(diag.NewTree(func(line string) { lines = append(lines, line) })))

	ref := env.Class("NoSuchClass").Member("new").Call(dynamic.Named("x", 1))
	assert.True(t, ref.IsNil())
	assert.NoError(t, ref.Err())
	_, ok := ref.AsString()
	assert.False(t, ok)
	_, ok = ref.AsInt()
	assert.False(t, ok)

	assert.Contains(t, strings.Join(lines, "\n"), "NoSuchClass")
}

func TestClassCallSelectsInitializer(t *testing.T) {
	env, _ := newEnv(t)
	const text = "E621E1F8-C36C-495A-93FC-0C247A3E6E5F"

	id := env.Class("NSUUID").Call(dynamic.Named("UUIDString", text))
	require.False(t, id.IsError())
	s, ok := id.Member("UUIDString").AsString()
	require.True(t, ok)
	assert.Equal(t, text, s)

	invalid := env.Class("NSUUID").Call(dynamic.Named("UUIDString", "nope"))
	assert.True(t, invalid.IsNil())
}

func TestInstantiateMatchesNew(t *testing.T) {
	env, _ := newEnv(t)

	a := env.Class("NSMutableArray").Instantiate()
	b := env.Class("NSMutableArray").Call()
	c := env.Class("NSMutableArray").Member("new").Call()

	for _, r := range []*dynamic.Ref{a, b, c} {
		obj := r.AsObject()
		require.IsType(t, &foundation.MutableArray{}, obj)
		n, ok := r.Member("count").AsInt()
		require.True(t, ok)
		assert.Zero(t, n)
	}

	// Instantiate on anything but a bare class reference is the identity.
	plain := env.Wrap("x")
	assert.Same(t, plain, plain.Instantiate())
	assert.Same(t, plain, plain.Call())
}

func TestDateFormatterScenario(t *testing.T) {
	env, _ := newEnv(t)
	formatter := env.Class("NSDateFormatter").Instantiate()
	date := env.Class("NSDate").Member("dateWithTimeIntervalSince1970").Call(dynamic.Positional(1709647629.0))

	s, ok := formatter.Member("stringFromDate").Call(dynamic.Positional(date)).AsString()
	require.True(t, ok)
	assert.Equal(t, "", s)

	formatter.Set("dateFormat", "yyyy-MM-dd HH:mm:ss")
	pattern, ok := formatter.Member("dateFormat").AsString()
	require.True(t, ok)
	assert.Equal(t, "yyyy-MM-dd HH:mm:ss", pattern)

	s, ok = formatter.Member("stringFromDate").Call(dynamic.Positional(date)).AsString()
	require.True(t, ok)
	assert.Equal(t, "2024-03-05 14:07:09", s)

	parsed := formatter.Member("dateFromString").Call(dynamic.Positional(s)).AsObject()
	require.IsType(t, time.Time{}, parsed)
	assert.True(t, parsed.(time.Time).Equal(date.AsObject().(time.Time)))
}

func TestPerform(t *testing.T) {
	env, _ := newEnv(t)

	s, ok := env.Wrap("hello").Perform("uppercaseString").AsString()
	require.True(t, ok)
	assert.Equal(t, "HELLO", s)

	s, ok = env.Wrap("a").Perform("stringByAppendingString:", "b").AsString()
	require.True(t, ok)
	assert.Equal(t, "ab", s)

	n, ok := env.Wrap("hello").Member("uppercaseString").Perform("length").AsUInt64()
	require.True(t, ok)
	assert.Equal(t, uint64(5), n)

	bad := env.Wrap("a").Perform("noSuchSelector")
	assert.True(t, dynamic.IsNotUnderstood(bad.Err()))
}

func TestRequestBuilder(t *testing.T) {
	env, _ := newEnv(t)

	req := env.Class("NSException").
		Message("exceptionWithName").
		With("", "Boom").
		With("reason", "bad").
		With("userInfo", map[string]any{"k": "v"})
	assert.Equal(t, "exceptionWithName:reason:userInfo:", req.Selector())

	exc := req.Send()
	reason, ok := exc.Member("reason").AsString()
	require.True(t, ok)
	assert.Equal(t, "bad", reason)

	info, ok := exc.Member("userInfo").AsDictionary()
	require.True(t, ok)
	assert.Equal(t, "v", info["k"])
}

func TestObjectBridging(t *testing.T) {
	env, _ := newEnv(t)

	num := env.Class("NSNumber").Member("numberWithInt").Call(dynamic.Positional(int32(7)))
	n, ok := num.AsInt64()
	require.True(t, ok)
	assert.Equal(t, int64(7), n)
	b, ok := num.AsBool()
	require.True(t, ok)
	assert.True(t, b)

	parts := env.Wrap("a,b").Member("componentsSeparatedByString").Call(dynamic.Positional(","))
	arr, ok := parts.AsArray()
	require.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, arr)
	strs, ok := dynamic.Unwrap[[]string](parts)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, strs)

	value := env.Class("NSValue").Member("valueWithCGPoint").Call(dynamic.Positional(typemap.Point{X: 1, Y: 2}))
	p, ok := value.AsPoint()
	require.True(t, ok)
	assert.Equal(t, typemap.Point{X: 1, Y: 2}, p)
	_, ok = value.AsSize()
	assert.False(t, ok, "a point box does not unwrap as a size")

	box, ok := value.AsBoxed()
	require.True(t, ok)
	assert.Equal(t, typemap.PointEncoding, box.Encoding())
}

func TestClassReferences(t *testing.T) {
	env, f := newEnv(t)

	class := env.Class("NSString")
	assert.Same(t, f.Space.GetClass("NSString"), class.AsAnyObject())
	assert.Nil(t, class.AsObject())

	name, ok := class.Member("className").AsString()
	require.True(t, ok)
	assert.Equal(t, "NSString", name)

	s, ok := class.AsString()
	require.True(t, ok)
	assert.Equal(t, "NSString", s)
}

func TestHandlesAreReleased(t *testing.T) {
	env, f := newEnv(t)
	w := env.Class("Widget").Instantiate()
	w.Set("title", "x")
	w.Member("title").AsString()
	env.Wrap("a,b").Member("componentsSeparatedByString").Call(dynamic.Positional(",")).AsArray()

	assert.Zero(t, f.Space.Len())
}

func TestSentinelErrors(t *testing.T) {
	env, _ := newEnv(t)

	err := env.Wrap(int64(1)).Member("frobnicate").Err()
	var mnu *invoke.MessageNotUnderstoodError
	require.True(t, errors.As(err, &mnu))
	assert.Equal(t, "frobnicate", mnu.Selector)
}
