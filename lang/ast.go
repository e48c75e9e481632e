package lang

import "strconv"

// NodeKind identifies the concrete type of a [Node].
type NodeKind int

const (
	KindSourceFile NodeKind = iota
	KindTemplateString
	KindFormula
	KindStringLiteral
	KindNumericLiteral
	KindBooleanLiteral
	KindGetCall
	KindLengthCall
	KindIfExpression
	KindBinaryComparison
	KindEndOfFile
)

var nodeKindName = [...]string{
	KindSourceFile:       "SourceFile",
	KindTemplateString:   "TemplateString",
	KindFormula:          "Formula",
	KindStringLiteral:    "StringLiteral",
	KindNumericLiteral:   "NumericLiteral",
	KindBooleanLiteral:   "BooleanLiteral",
	KindGetCall:          "GetCall",
	KindLengthCall:       "LengthCall",
	KindIfExpression:     "IfExpression",
	KindBinaryComparison: "BinaryComparison",
	KindEndOfFile:        "EndOfFile",
}

func (k NodeKind) String() string {
	if k >= 0 && int(k) < len(nodeKindName) {
		return nodeKindName[k]
	}

	return "NodeKind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Span is the region of the original template covered by a node, using the
// same column convention as [Token].
type Span struct {
	From   int
	To     int
	Source string
}

// Columns returns the node's start and end offsets.
func (s Span) Columns() (from, to int) { return s.From, s.To }

// Text returns the slice of the template covered by the node.
func (s Span) Text() string { return s.Source }

// Node is implemented by every AST node.
type Node interface {
	Kind() NodeKind
	Columns() (from, to int)
	Text() string
}

// Segment is a direct child of a [TemplateString]: a literal text run
// ([*StringLiteral] with Quote 0) or a [*Formula].
type Segment interface {
	Node
	segment()
}

// Condition is the first argument of an [*IfExpression]: a bare [Value] or
// a [*BinaryComparison].
type Condition interface {
	Node
	condition()
}

// Value is an expression yielding a single value.
type Value interface {
	Condition
	value()
}

// Comparator is the operator of a [*BinaryComparison].
type Comparator int

const (
	Less Comparator = iota
	LessEqual
	StrictEqual
	Greater
	GreaterEqual
)

var comparatorText = [...]string{
	Less:         "<",
	LessEqual:    "<=",
	StrictEqual:  "===",
	Greater:      ">",
	GreaterEqual: ">=",
}

// String returns the operator as written in a template.
func (c Comparator) String() string {
	if c >= 0 && int(c) < len(comparatorText) {
		return comparatorText[c]
	}

	return "Comparator(" + strconv.Itoa(int(c)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (c Comparator) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func comparatorOf(k TokenKind) (Comparator, bool) {
	if !k.IsComparator() {
		return 0, false
	}

	return Comparator(k - TokenLess), true
}

type (
	// SourceFile is the root of a parsed template. Template is nil for an
	// empty template.
	SourceFile struct {
		Span
		Template *TemplateString
		EOF      *EndOfFile
	}

	// TemplateString is the sequence of text runs and formulas.
	TemplateString struct {
		Span
		Segments []Segment
	}

	// Formula is a "${...}" block. Value is nil for an empty formula.
	Formula struct {
		Span
		Value Value
	}

	// StringLiteral is either a literal text run between formulas (Quote 0)
	// or a quoted string inside a formula. Value never includes quotes.
	StringLiteral struct {
		Span
		Value string
		Quote byte
	}

	// NumericLiteral is an unsigned decimal number.
	NumericLiteral struct {
		Span
		Value float64
	}

	// BooleanLiteral is TRUE or FALSE.
	BooleanLiteral struct {
		Span
		Value bool
	}

	// GetCall is GET(name).
	GetCall struct {
		Span
		Name *StringLiteral
	}

	// LengthCall is LENGTH(GET(name)).
	LengthCall struct {
		Span
		Arg *GetCall
	}

	// IfExpression is IF(cond, then, else).
	IfExpression struct {
		Span
		Cond Condition
		Then Value
		Else Value
	}

	// BinaryComparison is "left op right" in the condition of an IF.
	BinaryComparison struct {
		Span
		Left  Value
		Op    Comparator
		Right Value
	}

	// EndOfFile terminates a SourceFile.
	EndOfFile struct {
		Span
	}
)

func (*SourceFile) Kind() NodeKind       { return KindSourceFile }
func (*TemplateString) Kind() NodeKind   { return KindTemplateString }
func (*Formula) Kind() NodeKind          { return KindFormula }
func (*StringLiteral) Kind() NodeKind    { return KindStringLiteral }
func (*NumericLiteral) Kind() NodeKind   { return KindNumericLiteral }
func (*BooleanLiteral) Kind() NodeKind   { return KindBooleanLiteral }
func (*GetCall) Kind() NodeKind          { return KindGetCall }
func (*LengthCall) Kind() NodeKind       { return KindLengthCall }
func (*IfExpression) Kind() NodeKind     { return KindIfExpression }
func (*BinaryComparison) Kind() NodeKind { return KindBinaryComparison }
func (*EndOfFile) Kind() NodeKind        { return KindEndOfFile }

func (*Formula) segment()       {}
func (*StringLiteral) segment() {}

func (*StringLiteral) condition()    {}
func (*NumericLiteral) condition()   {}
func (*BooleanLiteral) condition()   {}
func (*GetCall) condition()          {}
func (*LengthCall) condition()       {}
func (*IfExpression) condition()     {}
func (*BinaryComparison) condition() {}

func (*StringLiteral) value()  {}
func (*NumericLiteral) value() {}
func (*BooleanLiteral) value() {}
func (*GetCall) value()        {}
func (*LengthCall) value()     {}
func (*IfExpression) value()   {}

// IsText reports whether s is a literal text run rather than a quoted
// formula string.
func (s *StringLiteral) IsText() bool { return s.Quote == 0 }

// Children returns the direct children of n in source order.
func Children(n Node) []Node {
	var out []Node

	add := func(c Node) {
		if c != nil {
			out = append(out, c)
		}
	}

	switch n := n.(type) {
	case *SourceFile:
		if n.Template != nil {
			add(n.Template)
		}

		if n.EOF != nil {
			add(n.EOF)
		}

	case *TemplateString:
		for _, s := range n.Segments {
			add(s)
		}

	case *Formula:
		if n.Value != nil {
			add(n.Value)
		}

	case *GetCall:
		if n.Name != nil {
			add(n.Name)
		}

	case *LengthCall:
		if n.Arg != nil {
			add(n.Arg)
		}

	case *IfExpression:
		add(n.Cond)
		add(n.Then)
		add(n.Else)

	case *BinaryComparison:
		add(n.Left)
		add(n.Right)
	}

	return out
}

// Inspect traverses the tree rooted at n in depth-first order, calling f for
// each node. If f returns false, the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}

	for _, c := range Children(n) {
		Inspect(c, f)
	}
}
