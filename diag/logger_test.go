package diag

import (
	"strings"
	"testing"
)

func TestTreeNesting(t *testing.T) {
	var lines []string
	tree := NewTree(func(line string) { lines = append(lines, line) })

	tree.Log("top")
	tree.Start().Log("# Dynamic").Log("Object:", 42)
	tree.Start().Log("Call:", "[NSUUID UUIDString]")
	tree.End().End()

	want := []string{
		"top",
		groupOpen,
		" ╷‣ # Dynamic",
		" ╷‣ Object: 42",
		" ╷  " + groupOpen,
		" ╷   ╷‣ Call: [NSUUID UUIDString]",
		" ╷  " + groupClose,
		groupClose,
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), strings.Join(lines, "\n"))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
	if tree.Depth() != 0 {
		t.Errorf("Depth = %d, want 0", tree.Depth())
	}
}

func TestTreeExtraEndIgnored(t *testing.T) {
	var lines []string
	tree := NewTree(func(line string) { lines = append(lines, line) })
	tree.End()
	if len(lines) != 0 || tree.Depth() != 0 {
		t.Errorf("End at depth 0 emitted %v, depth %d", lines, tree.Depth())
	}
}

func TestTreesAreIndependent(t *testing.T) {
	a := NewTree(func(string) {})
	b := NewTree(func(string) {})
	a.Start().Start()
	if b.Depth() != 0 {
		t.Errorf("b.Depth = %d, want 0", b.Depth())
	}
}

func TestNop(t *testing.T) {
	if Nop.Start().Log("x").End() != Nop {
		t.Error("Nop should return itself")
	}
}
