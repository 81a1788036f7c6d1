package script

// Node is implemented by all expression nodes.
type Node interface {
	Pos() Position
	node()
}

// Literal is a constant: int64, float64, string, bool, nil, a Symbol or a
// []any built from a literal array.
type Literal struct {
	At    Position
	Value any
}

// Symbol is the value of a #symbol literal. Symbols are passed to
// messages as selectors.
type Symbol string

// DynamicArray is {a. b. c}; its elements are evaluated.
type DynamicArray struct {
	At       Position
	Elements []Node
}

// Variable references a temporary, or failing that a class.
type Variable struct {
	At   Position
	Name string
}

// Assignment is name := value.
type Assignment struct {
	At    Position
	Name  string
	Value Node
}

// Send is a unary, binary or keyword message send.
type Send struct {
	At        Position
	Receiver  Node
	Selector  string
	Arguments []Node
}

// Message is a receiver-less send inside a cascade.
type Message struct {
	Selector  string
	Arguments []Node
}

// Cascade sends several messages to the same receiver and yields the
// result of the last one.
type Cascade struct {
	At       Position
	Receiver Node
	Messages []Message
}

// Block is [ statements ], evaluated when called.
type Block struct {
	At   Position
	Body *Program
}

// Program is a sequence of statements with declared temporaries.
type Program struct {
	Temps      []string
	Statements []Node
}

func (n *Literal) Pos() Position      { return n.At }
func (n *DynamicArray) Pos() Position { return n.At }
func (n *Variable) Pos() Position     { return n.At }
func (n *Assignment) Pos() Position   { return n.At }
func (n *Send) Pos() Position         { return n.At }
func (n *Cascade) Pos() Position      { return n.At }
func (n *Block) Pos() Position        { return n.At }

func (*Literal) node()      {}
func (*DynamicArray) node() {}
func (*Variable) node()     {}
func (*Assignment) node()   {}
func (*Send) node()         {}
func (*Cascade) node()      {}
func (*Block) node()        {}
