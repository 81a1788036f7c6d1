// Package diag renders nested call groups for diagnostics. It is a
// write-only side channel: nothing in the dispatch path reads it back.
package diag

import (
	"fmt"
	"strings"

	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

// Name is the commonlog logger name used by the default sink.
const Name = "dynamic"

// Logger accepts loggable items and group boundaries. Every method returns
// the logger so calls chain.
type Logger interface {
	Log(items ...any) Logger
	Start() Logger
	End() Logger
}

// Nop discards everything.
var Nop Logger = nop{}

type nop struct{}

func (n nop) Log(...any) Logger { return n }
func (n nop) Start() Logger     { return n }
func (n nop) End() Logger       { return n }

// Sink receives rendered lines.
type Sink func(line string)

// CommonlogSink forwards lines to the named commonlog logger at debug level.
func CommonlogSink(name string) Sink {
	log := commonlog.GetLogger(name)
	return func(line string) {
		log.Debug(line)
	}
}

// Configure sets up the commonlog backend. A nil path logs to stderr.
func Configure(verbosity int, path *string) {
	commonlog.Configure(verbosity, path)
}

const (
	groupOpen  = " ╭╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴"
	groupClose = " ╰╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴╴"
	rail       = " ╷  "
	bullet     = "‣ "
)

// Tree draws groups as nested rails:
//
//	 ╭╴╴╴╴
//	 ‣ # Dynamic
//	 ╷   ╭╴╴╴╴
//	 ╷   ‣ Call: [NSUUID UUIDString]
//	 ╷   ╰╴╴╴╴
//	 ╰╴╴╴╴
//
// The nesting depth belongs to the Tree value, so separate Trees never
// interfere. A Tree is not safe for concurrent use.
type Tree struct {
	sink  Sink
	depth int
}

// NewTree creates a Tree writing to sink. A nil sink uses CommonlogSink(Name).
func NewTree(sink Sink) *Tree {
	if sink == nil {
		sink = CommonlogSink(Name)
	}
	return &Tree{sink: sink}
}

// Depth returns the current nesting depth.
func (t *Tree) Depth() int {
	return t.depth
}

func (t *Tree) Log(items ...any) Logger {
	t.emit(join(items), true)
	return t
}

func (t *Tree) Start() Logger {
	t.emit(groupOpen, false)
	t.depth++
	return t
}

// End closes the innermost group. Extra Ends are ignored.
func (t *Tree) End() Logger {
	if t.depth == 0 {
		return t
	}
	t.depth--
	t.emit(groupClose, false)
	return t
}

func (t *Tree) emit(message string, withBullet bool) {
	indent := strings.Repeat(rail, t.depth)
	if indent != "" && withBullet {
		indent = strings.TrimSuffix(indent, "  ") + bullet
	}
	t.sink(indent + message)
}

func join(items []any) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprint(it)
	}
	return strings.Join(parts, " ")
}
