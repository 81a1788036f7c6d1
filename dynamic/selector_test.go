package dynamic

import "testing"

func TestKeywordSelector(t *testing.T) {
	tests := []struct {
		base string
		args []Arg
		want string
	}{
		{"description", nil, "description"},
		{"initWith", []Arg{Named("UUIDString", "x")}, "initWithUUIDString:"},
		{"setCount", []Arg{Positional(1)}, "setCount:"},
		{"exceptionWithName", []Arg{Positional("n"), Named("reason", "r"), Named("userInfo", nil)},
			"exceptionWithName:reason:userInfo:"},
		// A labelled first argument adds its keyword to the base.
		{"exceptionWithName", []Arg{Named("name", "n"), Named("reason", "r"), Named("userInfo", nil)},
			"exceptionWithNameName:reason:userInfo:"},
		{"exceptionWith", []Arg{Named("name", "n"), Named("reason", "r"), Named("userInfo", nil)},
			"exceptionWithName:reason:userInfo:"},
		{"performSelector", []Arg{Positional("s"), Named("withObject", 1), Named("withObject", 2)},
			"performSelector:withObject:withObject:"},
		// Only the first keyword is capitalised.
		{"insert", []Arg{Named("object", 1), Named("atIndex", 2)}, "insertObject:atIndex:"},
		{"initWith", []Arg{Named("name", 1), Named("value", 2)}, "initWithName:value:"},
	}
	for _, tt := range tests {
		if got := keywordSelector(tt.base, tt.args); got != tt.want {
			t.Errorf("keywordSelector(%q, %v) = %q, want %q", tt.base, tt.args, got, tt.want)
		}
	}
}

func TestSetterName(t *testing.T) {
	tests := map[string]string{
		"count":      "setCount",
		"dateFormat": "setDateFormat",
		"x":          "setX",
		"":           "set",
		"éclair":     "setÉclair",
	}
	for in, want := range tests {
		if got := setterName(in); got != want {
			t.Errorf("setterName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOutcomeThen(t *testing.T) {
	calls := 0
	step := func(v any) outcome {
		calls++
		return success(v.(int) + 1)
	}

	if o := success(1).then(step).then(step); o.kind != kindOk || o.value != 3 {
		t.Fatalf("chained outcome = %+v", o)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}

	calls = 0
	failed := failure(errTest).then(step)
	if failed.kind != kindError || failed.err != errTest || calls != 0 {
		t.Fatalf("failure propagated as %+v after %d calls", failed, calls)
	}
	if empty := success(nil).then(step); empty.kind != kindEmpty || calls != 0 {
		t.Fatalf("empty propagated as %+v after %d calls", empty, calls)
	}
	if failed.object() != errTest {
		t.Fatalf("failure object = %v", failed.object())
	}
}

type testError string

func (e testError) Error() string { return string(e) }

const errTest = testError("boom")
