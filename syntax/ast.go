package syntax

import "github.com/strager/scft/source"

// NodeKind identifies the concrete type of a Node. Values are the names
// used in diagnostics ("Binary Operator is not allowed here").
type NodeKind string

const (
	NodeUnknown  NodeKind = "[UNKNOWN]"
	NodeProgram  NodeKind = "Program"
	NodeBlock    NodeKind = "Block"
	NodeIf       NodeKind = "If"
	NodeFor      NodeKind = "For"
	NodeBreak    NodeKind = "Break"
	NodeContinue NodeKind = "Continue"
	NodeReturn   NodeKind = "Return"
	NodeDecl     NodeKind = "Declaration"
	NodeTypeLit  NodeKind = "Type Literal"
	NodeFuncType NodeKind = "Function Type"
	NodeModule   NodeKind = "Module"
	NodeTypeDef  NodeKind = "Type Definition"
	NodeFunc     NodeKind = "Function"
	NodeName     NodeKind = "Name"
	NodeDotOp    NodeKind = "Dot Operator"
	NodeCall     NodeKind = "Call"
	NodeTypeInit NodeKind = "Type Initializer"
	NodeLiteral  NodeKind = "Literal"
	NodeUnaryOp  NodeKind = "Unary Operator"
	NodeDeref    NodeKind = "Dereference"
	NodeBinOp    NodeKind = "Binary Operator"
)

// IsExpression reports whether nodes of this kind are expressions rather
// than statements. Unknown placeholders count as expressions.
func IsExpression(kind NodeKind) bool {
	switch kind {
	case NodeProgram, NodeBlock, NodeIf, NodeFor, NodeBreak, NodeContinue, NodeReturn, NodeDecl:
		return false
	}
	return true
}

// Node is an element of the syntax tree. Every node's span encloses the
// spans of its children.
type Node interface {
	Kind() NodeKind
	Span() source.Span
}

type node struct {
	Loc source.Span
}

func (n *node) Span() source.Span { return n.Loc }

// Unknown stands in for a construct that could not be parsed.
type Unknown struct{ node }

// Program is the root of a parsed file.
type Program struct {
	node
	Decls   []*Decl
	Globals *SymbolTable
}

// Block is a braced statement list with its own scope.
type Block struct {
	node
	Stmts []Node
	Scope *SymbolTable
}

type If struct {
	node
	Cond Node
	Then Node
	Else Node // nil, *If, *Block or another statement
}

// For is a loop. Init and Post are nil for the short forms.
type For struct {
	node
	Init Node
	Cond Node
	Post Node
	Body *Block
}

type Break struct{ node }

type Continue struct{ node }

type Return struct {
	node
	Value Node // nil for a bare return
}

// Decl is "lvalue [: type] [op rvalue]". RValue is set iff Assign is.
type Decl struct {
	node
	LValue Node
	Type   Node
	Assign *Token
	RValue Node
}

// Ident returns the declared name when the l-value is a plain Name.
func (d *Decl) Ident() (Token, bool) {
	if name, ok := d.LValue.(*Name); ok {
		return name.Ident, true
	}
	return Token{}, false
}

// TypeLit is a built-in type keyword used as an expression.
type TypeLit struct {
	node
	Type TokenType
}

// FuncType is "(in, ...) -> out".
type FuncType struct {
	node
	In  []Node
	Out Node
}

// Module is "mod { decls }".
type Module struct {
	node
	Decls []*Decl
	Scope *SymbolTable
}

// TypeDef is "ty { decls }".
type TypeDef struct {
	node
	Decls []*Decl
	Scope *SymbolTable
}

// Func is a function literal. Exactly one of Body and Expr is set on a
// well-formed function; Shorthand selects Expr.
type Func struct {
	node
	Params    []*Decl
	Result    Node
	Body      *Block
	Expr      Node
	Shorthand bool
	Scope     *SymbolTable
}

type Name struct {
	node
	Ident Token
}

// Text returns the identifier.
func (n *Name) Text() string { return n.Ident.Text() }

// DotOp is member access "base.member". Member is a *Name, or *Unknown
// when the right side was not a name.
type DotOp struct {
	node
	Base   Node
	Member Node
}

type Call struct {
	node
	Callee Node
	Args   []Node
}

// TypeInit is "T.{ a = 1, b = 2 }".
type TypeInit struct {
	node
	TypeRef Node
	Assigns []*Decl
}

// Literal is an INT, FLOAT, STRING, true or false token.
type Literal struct {
	node
	Value Token
}

type UnaryOp struct {
	node
	Op Token
	X  Node
}

// Deref is "x.*".
type Deref struct {
	node
	X Node
}

type BinOp struct {
	node
	Left  Node
	Op    Token
	Right Node
}

func (*Unknown) Kind() NodeKind  { return NodeUnknown }
func (*Program) Kind() NodeKind  { return NodeProgram }
func (*Block) Kind() NodeKind    { return NodeBlock }
func (*If) Kind() NodeKind       { return NodeIf }
func (*For) Kind() NodeKind      { return NodeFor }
func (*Break) Kind() NodeKind    { return NodeBreak }
func (*Continue) Kind() NodeKind { return NodeContinue }
func (*Return) Kind() NodeKind   { return NodeReturn }
func (*Decl) Kind() NodeKind     { return NodeDecl }
func (*TypeLit) Kind() NodeKind  { return NodeTypeLit }
func (*FuncType) Kind() NodeKind { return NodeFuncType }
func (*Module) Kind() NodeKind   { return NodeModule }
func (*TypeDef) Kind() NodeKind  { return NodeTypeDef }
func (*Func) Kind() NodeKind     { return NodeFunc }
func (*Name) Kind() NodeKind     { return NodeName }
func (*DotOp) Kind() NodeKind    { return NodeDotOp }
func (*Call) Kind() NodeKind     { return NodeCall }
func (*TypeInit) Kind() NodeKind { return NodeTypeInit }
func (*Literal) Kind() NodeKind  { return NodeLiteral }
func (*UnaryOp) Kind() NodeKind  { return NodeUnaryOp }
func (*Deref) Kind() NodeKind    { return NodeDeref }
func (*BinOp) Kind() NodeKind    { return NodeBinOp }

// Children returns the direct children of n in source order. Absent
// optional children are skipped.
func Children(n Node) []Node {
	var out []Node
	add := func(children ...Node) {
		for _, c := range children {
			if !isNil(c) {
				out = append(out, c)
			}
		}
	}
	switch n := n.(type) {
	case *Program:
		for _, d := range n.Decls {
			add(d)
		}
	case *Block:
		add(n.Stmts...)
	case *If:
		add(n.Cond, n.Then, n.Else)
	case *For:
		add(n.Init, n.Cond, n.Post)
		if n.Body != nil {
			add(n.Body)
		}
	case *Return:
		add(n.Value)
	case *Decl:
		add(n.LValue, n.Type, n.RValue)
	case *FuncType:
		add(n.In...)
		add(n.Out)
	case *Module:
		for _, d := range n.Decls {
			add(d)
		}
	case *TypeDef:
		for _, d := range n.Decls {
			add(d)
		}
	case *Func:
		for _, d := range n.Params {
			add(d)
		}
		add(n.Result)
		if n.Body != nil {
			add(n.Body)
		}
		add(n.Expr)
	case *DotOp:
		add(n.Base, n.Member)
	case *Call:
		add(n.Callee)
		add(n.Args...)
	case *TypeInit:
		add(n.TypeRef)
		for _, d := range n.Assigns {
			add(d)
		}
	case *UnaryOp:
		add(n.X)
	case *Deref:
		add(n.X)
	case *BinOp:
		add(n.Left, n.Right)
	}
	return out
}

// Inspect walks the tree in depth-first order, calling fn for each node.
// Children are skipped when fn returns false.
func Inspect(n Node, fn func(Node) bool) {
	if isNil(n) || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, fn)
	}
}

// isNil catches both a nil interface and a typed nil pointer stored in one.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch n := n.(type) {
	case *Block:
		return n == nil
	case *Decl:
		return n == nil
	case *If:
		return n == nil
	}
	return false
}
