package script_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/dynamic/dynamic"
	"github.com/chazu/dynamic/foundation"
	"github.com/chazu/dynamic/invoke"
	"github.com/chazu/dynamic/protort"
	"github.com/chazu/dynamic/script"
)

func newInterpreter(t *testing.T) *script.Interpreter {
	t.Helper()
	f := foundation.New()
	t.Cleanup(func() { f.Close() })
	return script.New(dynamic.NewEnv(f.Space))
}

func eval(t *testing.T, in *script.Interpreter, src string) *dynamic.Ref {
	t.Helper()
	r, err := in.Eval(src)
	require.NoError(t, err, src)
	return r
}

func value(t *testing.T, in *script.Interpreter, src string) any {
	t.Helper()
	v, err := script.Value(eval(t, in, src))
	require.NoError(t, err, src)
	return v
}

func TestEvalArithmetic(t *testing.T) {
	in := newInterpreter(t)

	tests := []struct {
		src  string
		want any
	}{
		{"3 + 4", int64(7)},
		{"1 + 2 * 3", int64(9)},
		{"1 + (2 * 3)", int64(7)},
		{"7 / 2", 3.5},
		{"8 / 2", int64(4)},
		{"7 // 2", int64(3)},
		{"-7 // 2", int64(-4)},
		{`-7 \\ 2`, int64(1)},
		{"1.5 * 2", 3.0},
		{"3 > 2", true},
		{"3 <= 2", false},
		{"2 = 2.0", true},
		{"2 ~= 3", true},
		{"'a' , 'b'", "ab"},
		{"'a' = 'a'", true},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, value(t, in, tc.src), tc.src)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	in := newInterpreter(t)

	r := eval(t, in, "1 / 0")
	assert.ErrorIs(t, r.Err(), script.ErrZeroDivide)
}

func TestEvalMessages(t *testing.T) {
	in := newInterpreter(t)

	assert.Equal(t, "HELLO", value(t, in, "'hello' uppercaseString"))
	assert.Equal(t, uint64(5), value(t, in, "'hello' length"))
	assert.Equal(t, int64(6), value(t, in, "'hello' length + 1"))
	assert.Equal(t, "ab", value(t, in, "'a' stringByAppendingString: 'b'"))
	assert.Equal(t, true, value(t, in, "'dynamic' hasPrefix: 'dyn'"))
	assert.Equal(t, "HELLO", value(t, in, "'hello' performSelector: #uppercaseString"))
	assert.Equal(t, uint64(2), value(t, in, "#(a b) count"))
	assert.Equal(t, "a-b", value(t, in, "#(a b) componentsJoinedByString: '-'"))
}

func TestEvalNumericArgumentsFitSignature(t *testing.T) {
	in := newInterpreter(t)

	assert.Equal(t, int32(7), value(t, in, "NSNumber numberWithInt: 7"))
	assert.Equal(t, 7.0, value(t, in, "(NSNumber numberWithInt: 7) doubleValue"))
	assert.Equal(t, float32(1.5), value(t, in, "(NSNumber numberWithFloat: 1.5) floatValue"))
	assert.Equal(t, uint16('e'), value(t, in, "'hello' characterAtIndex: 1"))
}

func TestEvalScalarReceivers(t *testing.T) {
	in := newInterpreter(t)

	// A scalar result receives further messages as a number object.
	assert.Equal(t, "5", value(t, in, "'hello' length stringValue"))
}

func TestEvalClasses(t *testing.T) {
	in := newInterpreter(t)

	s, ok := eval(t, in, "NSUUID new UUIDString").AsString()
	require.True(t, ok)
	assert.Len(t, s, 36)

	assert.Equal(t, "NSString", value(t, in, "'x' className"))
}

func TestEvalVariables(t *testing.T) {
	in := newInterpreter(t)

	assert.Equal(t, int64(41), value(t, in, "x := 41"))
	assert.Equal(t, int64(42), value(t, in, "x + 1"))

	assert.Equal(t, int64(1), value(t, in, "| y | y := 1. y"))
	assert.ErrorIs(t, eval(t, in, "y").Err(), script.ErrUndefined)

	assert.Nil(t, value(t, in, "| z | z"))
}

func TestEvalCascade(t *testing.T) {
	in := newInterpreter(t)

	got := value(t, in, "| a | a := NSMutableArray new. a addObject: 'x'; addObject: 'y'; count")
	assert.Equal(t, uint64(2), got)
}

func TestEvalBlocks(t *testing.T) {
	in := newInterpreter(t)

	assert.Equal(t, int64(3), value(t, in, "[ 1 + 2 ] value"))
	assert.Equal(t, int64(3), value(t, in, "| n | n := 0. 3 timesRepeat: [ n := n + 1 ]. n"))
	assert.Equal(t, "yes", value(t, in, "3 > 2 ifTrue: [ 'yes' ] ifFalse: [ 'no' ]"))
	assert.Equal(t, "no", value(t, in, "3 < 2 ifTrue: [ 'yes' ] ifFalse: [ 'no' ]"))
	assert.Nil(t, value(t, in, "false ifTrue: [ 'yes' ]"))
	assert.Equal(t, false, value(t, in, "true not"))

	// Block temporaries do not leak.
	eval(t, in, "[ | inner | inner := 1 ] value")
	assert.ErrorIs(t, eval(t, in, "inner").Err(), script.ErrUndefined)
}

func TestEvalDynamicArray(t *testing.T) {
	in := newInterpreter(t)

	assert.Equal(t, []any{int64(3), "HI"}, value(t, in, "{ 1 + 2. 'hi' uppercaseString }"))
}

func TestEvalErrorsPropagate(t *testing.T) {
	in := newInterpreter(t)

	r := eval(t, in, "NSUUID frobnicate")
	require.True(t, r.IsError())
	assert.True(t, dynamic.IsNotUnderstood(r.Err()))

	// Later sends pass the first error along.
	r = eval(t, in, "(NSUUID frobnicate) UUIDString length")
	assert.True(t, dynamic.IsNotUnderstood(r.Err()))

	r = eval(t, in, "Missing new")
	assert.ErrorIs(t, r.Err(), script.ErrUndefined)

	r = eval(t, in, "'ab' characterAtIndex: 5")
	var raised *invoke.RaiseError
	require.True(t, errors.As(r.Err(), &raised), "got %v", r.Err())
	exc, ok := raised.Value.(*foundation.Exception)
	require.True(t, ok, "raised %T", raised.Value)
	assert.Equal(t, foundation.RangeException, exc.Name)
}

func TestEvalSyntaxError(t *testing.T) {
	in := newInterpreter(t)

	_, err := in.Eval("(1 + ")
	var syntaxErr *script.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestRender(t *testing.T) {
	in := newInterpreter(t)

	tests := []struct {
		src  string
		want string
	}{
		{"nil", "nil"},
		{"'text'", "text"},
		{"#foo:bar:", "#foo:bar:"},
		{"3 + 4", "7"},
		{"2.5", "2.5"},
		{"true", "true"},
		{"'hello' length", "5"},
		{"#(1 2)", "(1, 2)"},
		{"[ 1 ]", "a block"},
		{"", "nil"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, script.Render(eval(t, in, tc.src)), tc.src)
	}

	assert.Contains(t, script.Render(eval(t, in, "1 / 0")), "error: ")
}

func TestEvalProtobufMessages(t *testing.T) {
	dir := t.TempDir()
	src := `syntax = "proto3";
package notes;

message Note {
  string title = 1;
  int32 priority = 2;
  repeated string labels = 3;
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.proto"), []byte(src), 0o644))
	fds, err := protort.ParseProtoFiles([]string{dir}, "notes.proto")
	require.NoError(t, err)

	f := foundation.New()
	t.Cleanup(func() { f.Close() })
	in := script.New(dynamic.NewEnv(protort.NewWithFallback(f.Space, fds...)))

	eval(t, in, `note := notes.Note new.
note setTitle: 'hello'; setPriority: 3; setLabels: #(a b)`)

	assert.Equal(t, "HELLO", value(t, in, "note title uppercaseString"))
	assert.Equal(t, int32(3), value(t, in, "note priority"))
	assert.Equal(t, int64(4), value(t, in, "note priority + 1"))
	assert.Equal(t, uint64(2), value(t, in, "note labels count"))
	assert.Equal(t, "notes.Note", value(t, in, "Note className"))
}
