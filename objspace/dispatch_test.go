package objspace

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/chazu/dynamic/invoke"
	"github.com/chazu/dynamic/typeenc"
)

func counterSpace(t *testing.T) *ObjectSpace {
	t.Helper()
	os := New()
	os.RegisterClass("Object", "", nil, nil)

	methods := os.NewMethodTable()
	methods.AddInstanceMethod("value", "q16@0:8", func(self any, args []any) (any, error) {
		v, _ := self.(*Instance).GetVar("value").(int64)
		return v, nil
	})
	methods.AddInstanceMethod("setValue:", "v24@0:8q16", func(self any, args []any) (any, error) {
		self.(*Instance).SetVar("value", args[0])
		return nil, nil
	})
	methods.AddInstanceMethod("increment", "q16@0:8", func(self any, args []any) (any, error) {
		inst := self.(*Instance)
		v, _ := inst.GetVar("value").(int64)
		inst.SetVar("value", v+1)
		return v + 1, nil
	})
	methods.AddInstanceMethod("initWithValue:", "@24@0:8q16", func(self any, args []any) (any, error) {
		self.(*Instance).SetVar("value", args[0])
		return self, nil
	})
	os.RegisterClass("Counter", "Object", []string{"value"}, methods)
	return os
}

func int64Slot(v int64) []byte {
	buf, err := typeenc.Encode(typeenc.MustParse("q"), v)
	if err != nil {
		panic(err)
	}
	return buf
}

func TestSendInstanceMessages(t *testing.T) {
	os := counterSpace(t)
	counter, err := os.NewInstance("Counter")
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}

	if _, err := os.Send(counter, "setValue:", [][]byte{int64Slot(10)}); err != nil {
		t.Fatalf("setValue: failed: %v", err)
	}
	out, err := os.Send(counter, "increment", nil)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	got, ok := typeenc.Decode[int64](typeenc.MustParse("q"), out)
	if !ok || got != 11 {
		t.Errorf("increment = %d (%v), want 11", got, ok)
	}
}

func TestSendUnknownSelector(t *testing.T) {
	os := counterSpace(t)
	counter, _ := os.NewInstance("Counter")

	if _, ok := os.Responds(counter, "decrement"); ok {
		t.Error("Responds(decrement) = true")
	}
	_, err := os.Send(counter, "decrement", nil)
	if !errors.Is(err, invoke.ErrNotFound) {
		t.Errorf("Send error = %v, want ErrNotFound", err)
	}
	if _, ok := os.Responds(nil, "value"); ok {
		t.Error("nil should not respond")
	}
}

func TestClassSideNewAndInit(t *testing.T) {
	os := counterSpace(t)
	class := os.GetClass("Counter")

	out, err := os.Send(class, "new", nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	h := typeenc.GetHandle(out)
	obj, ok := os.Lookup(h)
	os.Release(h)
	if !ok {
		t.Fatal("new returned no object")
	}
	if inst, ok := obj.(*Instance); !ok || inst.Class != class {
		t.Errorf("new returned %v", obj)
	}

	sig, ok := os.Responds(class, "initWithValue:")
	if !ok || sig.NumArguments() != 1 {
		t.Fatalf("class should respond to initWithValue: through alloc")
	}
	out, err = os.Send(class, "initWithValue:", [][]byte{int64Slot(7)})
	if err != nil {
		t.Fatalf("initWithValue: %v", err)
	}
	h = typeenc.GetHandle(out)
	obj, _ = os.Lookup(h)
	os.Release(h)
	if v := obj.(*Instance).GetVar("value"); v != int64(7) {
		t.Errorf("value = %v, want 7", v)
	}
	if os.Len() != 0 {
		t.Errorf("%d handles leaked", os.Len())
	}
}

func TestInheritedLookup(t *testing.T) {
	os := counterSpace(t)
	os.RegisterClass("LoudCounter", "Counter", []string{"volume"}, nil)

	loud, err := os.NewInstance("LoudCounter")
	if err != nil {
		t.Fatal(err)
	}
	if len(loud.Class.InstanceVars) != 2 {
		t.Errorf("InstanceVars = %v, want inherited value and volume", loud.Class.InstanceVars)
	}
	if _, ok := os.Responds(loud, "increment"); !ok {
		t.Error("subclass should inherit increment")
	}
	if !loud.Class.IsSubclassOf(os.GetClass("Counter")) {
		t.Error("IsSubclassOf(Counter) = false")
	}
}

type temperature float64

func TestGoTypeReceivers(t *testing.T) {
	os := counterSpace(t)
	methods := os.NewMethodTable()
	methods.AddInstanceMethod("fahrenheit", "d16@0:8", func(self any, _ []any) (any, error) {
		return float64(self.(temperature))*9/5 + 32, nil
	})
	os.RegisterGoType("Temperature", "Object", reflect.TypeFor[temperature](), func() any { return temperature(0) }, methods)

	out, err := os.Send(temperature(100), "fahrenheit", nil)
	if err != nil {
		t.Fatal(err)
	}
	if f, _ := typeenc.Decode[float64](typeenc.MustParse("d"), out); f != 212 {
		t.Errorf("fahrenheit = %v, want 212", f)
	}

	if c := os.ClassOf("unbound"); c == nil || c.Name != "Object" {
		t.Errorf("unbound Go value class = %v, want root Object", c)
	}
}

func TestSendRaises(t *testing.T) {
	os := counterSpace(t)
	boom := fmt.Errorf("boom")
	if err := os.AddInstanceMethod("Counter", "explode", "v16@0:8", func(any, []any) (any, error) {
		return nil, boom
	}); err != nil {
		t.Fatal(err)
	}
	counter, _ := os.NewInstance("Counter")
	if _, err := os.Send(counter, "explode", nil); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if err := os.AddInstanceMethod("Nope", "x", "v16@0:8", nil); !errors.Is(err, invoke.ErrUnresolvedSymbol) {
		t.Errorf("unknown class err = %v", err)
	}
}

func TestAddProperty(t *testing.T) {
	os := counterSpace(t)
	if err := os.AddProperty("Counter", "label", "@"); err != nil {
		t.Fatal(err)
	}
	counter, _ := os.NewInstance("Counter")

	h := os.Retain("hello")
	if _, err := os.Send(counter, "setLabel:", [][]byte{handleSlot(h)}); err != nil {
		t.Fatal(err)
	}
	os.Release(h)

	out, err := os.Send(counter, "label", nil)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := os.Lookup(typeenc.GetHandle(out))
	if got != "hello" {
		t.Errorf("label = %v, want hello", got)
	}
}

func TestMalformedMethodPanics(t *testing.T) {
	os := New()
	defer func() {
		if recover() == nil {
			t.Error("expected panic for keyword/parameter mismatch")
		}
	}()
	os.NewMethodTable().AddInstanceMethod("at:put:", "v24@0:8q16", nil)
}

func TestSetterName(t *testing.T) {
	tests := map[string]string{
		"dateFormat": "setDateFormat:",
		"x":          "setX:",
		"":           "set:",
	}
	for in, want := range tests {
		if got := SetterName(in); got != want {
			t.Errorf("SetterName(%q) = %q, want %q", in, got, want)
		}
	}
}

func handleSlot(h typeenc.Handle) []byte {
	buf := make([]byte, 8)
	typeenc.PutHandle(buf, h)
	return buf
}
