package typeenc

import (
	"errors"
	"testing"
)

func TestParseSizes(t *testing.T) {
	tests := []struct {
		enc   string
		size  uintptr
		align uintptr
		cat   Category
	}{
		{"c", 1, 1, CategoryScalar},
		{"B", 1, 1, CategoryBool},
		{"s", 2, 2, CategoryScalar},
		{"i", 4, 4, CategoryScalar},
		{"l", 4, 4, CategoryScalar},
		{"L", 4, 4, CategoryScalar},
		{"f", 4, 4, CategoryScalar},
		{"q", 8, 8, CategoryScalar},
		{"Q", 8, 8, CategoryScalar},
		{"d", 8, 8, CategoryScalar},
		{"v", 0, 1, CategoryVoid},
		{"@", 8, 8, CategoryObject},
		{"#", 8, 8, CategoryObject},
		{":", 8, 8, CategoryObject},
		{"*", 8, 8, CategoryObject},
		{"^v", 8, 8, CategoryObject},
		{"@?", 8, 8, CategoryObject},
		{`@"NSString"`, 8, 8, CategoryObject},
		{"r*", 8, 8, CategoryObject},
		{"{CGPoint=dd}", 16, 8, CategoryStruct},
		{"{CGRect={CGPoint=dd}{CGSize=dd}}", 32, 8, CategoryStruct},
		{"{Mixed=cid}", 16, 8, CategoryStruct},
		{"{Tail=qc}", 16, 8, CategoryStruct},
		{"{Small=cs}", 4, 2, CategoryStruct},
		{"(Either=iq)", 8, 8, CategoryStruct},
		{"[4i]", 16, 4, CategoryStruct},
		{`{CGPoint="x"d"y"d}`, 16, 8, CategoryStruct},
		{"^{_NSZone=}", 8, 8, CategoryObject},
		{"^{__CFString}", 8, 8, CategoryObject},
		{"^^{__CFString}", 8, 8, CategoryObject},
		{"r^{Node=^{Node}i}", 8, 8, CategoryObject},
		{"^[4{Opaque}]", 8, 8, CategoryObject},
		{"{List=^{List}q}", 16, 8, CategoryStruct},
	}
	for _, tt := range tests {
		t.Run(tt.enc, func(t *testing.T) {
			d, err := Parse(tt.enc)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.enc, err)
			}
			if d.Size != tt.size || d.Align != tt.align {
				t.Errorf("Parse(%q) size=%d align=%d, want size=%d align=%d", tt.enc, d.Size, d.Align, tt.size, tt.align)
			}
			if d.Category != tt.cat {
				t.Errorf("Parse(%q) category=%v, want %v", tt.enc, d.Category, tt.cat)
			}
		})
	}
}

func TestParseStructOffsets(t *testing.T) {
	d := MustParse("{Mixed=cid}")
	want := []uintptr{0, 4, 8}
	if len(d.Offsets) != len(want) {
		t.Fatalf("got %d offsets, want %d", len(d.Offsets), len(want))
	}
	for i, off := range want {
		if d.Offsets[i] != off {
			t.Errorf("offset[%d] = %d, want %d", i, d.Offsets[i], off)
		}
	}
	if d.Name != "Mixed" {
		t.Errorf("Name = %q, want Mixed", d.Name)
	}
}

func TestParseRejects(t *testing.T) {
	for _, enc := range []string{"", "z", "{Open=dd", "{Opaque}", "b4", "[i]", "ii", "^{Open", "^", "[4{Opaque}]"} {
		if _, err := Parse(enc); !errors.Is(err, ErrBadEncoding) {
			t.Errorf("Parse(%q) err = %v, want ErrBadEncoding", enc, err)
		}
	}
}

func TestParseRejectsOversizedArrays(t *testing.T) {
	for _, enc := range []string{
		"[18446744073709551617c]",
		"[9223372036854775808d]",
		"[1048577c]",
	} {
		if _, err := Parse(enc); !errors.Is(err, ErrBadEncoding) {
			t.Errorf("Parse(%q) err = %v, want ErrBadEncoding", enc, err)
		}
	}

	d, err := Parse("[4096c]")
	if err != nil {
		t.Fatalf("Parse([4096c]): %v", err)
	}
	if d.Size != 4096 {
		t.Errorf("size = %d, want 4096", d.Size)
	}
}

func TestParseCaches(t *testing.T) {
	a := MustParse("{CGSize=dd}")
	b := MustParse("{CGSize=dd}")
	if a != b {
		t.Error("expected the same descriptor for repeated parses")
	}
}

func TestParseSignature(t *testing.T) {
	tests := []struct {
		types string
		ret   string
		args  []string
	}{
		{"v@:", "v", nil},
		{"@@:@", "@", []string{"@"}},
		{"@#:@@@", "@", []string{"@", "@", "@"}},
		{"d24@0:8q16", "d", []string{"q"}},
		{"B@:{NSOperatingSystemVersion=qqq}", "B", []string{"{NSOperatingSystemVersion=qqq}"}},
		{"@24@0:8^{_NSZone=}16", "@", []string{"^{_NSZone=}"}},
		{"v32@0:8^{__CFString}16q24", "v", []string{"^{__CFString}", "q"}},
	}
	for _, tt := range tests {
		t.Run(tt.types, func(t *testing.T) {
			s, err := ParseSignature(tt.types)
			if err != nil {
				t.Fatalf("ParseSignature(%q): %v", tt.types, err)
			}
			if s.Return.Encoding != tt.ret {
				t.Errorf("return = %q, want %q", s.Return.Encoding, tt.ret)
			}
			if s.NumArguments() != len(tt.args) {
				t.Fatalf("args = %d, want %d", s.NumArguments(), len(tt.args))
			}
			for i, a := range tt.args {
				if s.Args[i].Encoding != a {
					t.Errorf("arg[%d] = %q, want %q", i, s.Args[i].Encoding, a)
				}
			}
		})
	}
}

func TestParseSignatureRejects(t *testing.T) {
	for _, types := range []string{"v", "v@", "vi:", "v@@", "v@:v"} {
		if _, err := ParseSignature(types); err == nil {
			t.Errorf("ParseSignature(%q) succeeded, want error", types)
		}
	}
}
