// Package analysis flattens the global declarations of a parsed program
// into a linear instruction list and infers base types where it can.
package analysis

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/strager/scft/diag"
	"github.com/strager/scft/syntax"
)

// BaseType is the inferred type of an instruction's result.
type BaseType int

const (
	Unknown BaseType = iota
	Void
	Module
	Type // the type of a ty {...} value
	Int
	Double
	String
	Bool
)

func (b BaseType) String() string {
	switch b {
	case Void:
		return "Void"
	case Module:
		return "Module"
	case Type:
		return "Type"
	case Int:
		return "Int"
	case Double:
		return "Double"
	case String:
		return "String"
	case Bool:
		return "Bool"
	}
	return "_"
}

// InstrKind says what an Instr computes.
type InstrKind int

const (
	DefineDecl InstrKind = iota + 1 // binds a declaration's l-value
	Yield                           // reads a declared name
	Expr                            // any other expression, kept opaque
	BinOp                           // combines two earlier instructions
)

// Instr is one line of the flattened program.
type Instr struct {
	Index int
	Kind  InstrKind
	Type  BaseType
	// Node is the *syntax.Decl for DefineDecl, the *syntax.Name for Yield,
	// the *syntax.BinOp for BinOp and the expression itself for Expr.
	Node syntax.Node
	// Left and Right index the operand instructions of a BinOp.
	Left, Right int
}

// Options configure an Analyzer.
type Options struct {
	Logger *slog.Logger
}

// Analyzer flattens one program. Unresolved names are reported into the
// diagnostics engine.
type Analyzer struct {
	dx      *diag.Diagnostics
	globals *syntax.SymbolTable
	log     *slog.Logger

	defined map[*syntax.Decl]BaseType
	Instrs  []Instr
}

// New returns an analyzer resolving names against globals.
func New(dx *diag.Diagnostics, globals *syntax.SymbolTable, opts Options) *Analyzer {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{
		dx:      dx,
		globals: globals,
		log:     log,
		defined: map[*syntax.Decl]BaseType{},
	}
}

// Analyze flattens prog and returns its instructions.
func Analyze(prog *syntax.Program, dx *diag.Diagnostics, opts Options) []Instr {
	a := New(dx, prog.Globals, opts)
	a.Run(prog)
	return a.Instrs
}

// Run appends the instructions of every global declaration of prog.
func (a *Analyzer) Run(prog *syntax.Program) {
	for _, decl := range prog.Decls {
		a.flattenDecl(decl)
	}
	a.log.Debug("analyzed program", "decls", len(prog.Decls), "instrs", len(a.Instrs))
}

func (a *Analyzer) emit(instr Instr) int {
	instr.Index = len(a.Instrs)
	a.Instrs = append(a.Instrs, instr)
	return instr.Index
}

func (a *Analyzer) flattenDecl(decl *syntax.Decl) {
	typ := declaredType(decl.Type)
	if decl.RValue != nil {
		idx := a.flattenExpr(decl.RValue)
		if typ == Unknown {
			typ = a.Instrs[idx].Type
		}
	}
	a.defined[decl] = typ
	a.emit(Instr{Kind: DefineDecl, Type: typ, Node: decl})
}

// flattenExpr emits n after its operands and returns its index.
func (a *Analyzer) flattenExpr(n syntax.Node) int {
	switch n := n.(type) {
	case *syntax.Name:
		return a.emit(Instr{Kind: Yield, Type: a.resolve(n), Node: n})
	case *syntax.BinOp:
		left := a.flattenExpr(n.Left)
		right := a.flattenExpr(n.Right)
		typ := binaryType(n.Op.Type, a.Instrs[left].Type, a.Instrs[right].Type)
		return a.emit(Instr{Kind: BinOp, Type: typ, Node: n, Left: left, Right: right})
	}
	return a.emit(Instr{Kind: Expr, Type: exprType(n), Node: n})
}

// resolve looks a name up among the globals, reporting it when missing.
func (a *Analyzer) resolve(n *syntax.Name) BaseType {
	sym, ok := a.globals.Lookup(n.Text())
	if !ok {
		a.dx.ErrorAt(fmt.Sprintf("`%s` is not declared", n.Text()), n.Span())
		return Unknown
	}
	// Declarations later in the file have not been typed yet.
	return a.defined[sym.Decl]
}

func declaredType(n syntax.Node) BaseType {
	lit, ok := n.(*syntax.TypeLit)
	if !ok {
		return Unknown
	}
	switch lit.Type {
	case syntax.VOID_TYPE:
		return Void
	case syntax.MOD_TYPE:
		return Module
	case syntax.TY_TYPE:
		return Type
	case syntax.INT_TYPE:
		return Int
	case syntax.DOUBLE_TYPE:
		return Double
	case syntax.STRING_TYPE:
		return String
	case syntax.BOOL_TYPE:
		return Bool
	}
	return Unknown
}

func exprType(n syntax.Node) BaseType {
	switch n := n.(type) {
	case *syntax.Literal:
		switch n.Value.Type {
		case syntax.INT:
			return Int
		case syntax.FLOAT:
			return Double
		case syntax.STRING:
			return String
		case syntax.TRUE, syntax.FALSE:
			return Bool
		}
	case *syntax.Module:
		return Module
	case *syntax.TypeDef:
		return Type
	}
	return Unknown
}

func binaryType(op syntax.TokenType, left, right BaseType) BaseType {
	switch op {
	case syntax.EQ, syntax.NOT_EQ, syntax.LT, syntax.LE, syntax.GT, syntax.GE:
		return Bool
	case syntax.OR, syntax.AND, syntax.XOR:
		if left == Bool && right == Bool {
			return Bool
		}
		return Unknown
	}
	if left != right {
		return Unknown
	}
	switch left {
	case Int:
		return Int
	case Double:
		switch op {
		case syntax.PLUS, syntax.MINUS, syntax.ASTERISK, syntax.SLASH, syntax.CARET:
			return Double
		}
	}
	return Unknown
}

// Listing renders instructions one per line:
//
//	  0 |    Int : 1
//	  1 |    Int : defineDecl x
func Listing(instrs []Instr) string {
	var sb strings.Builder
	for _, instr := range instrs {
		fmt.Fprintf(&sb, "%3d | %6s : ", instr.Index, instr.Type)
		switch instr.Kind {
		case DefineDecl:
			sb.WriteString("defineDecl ")
			sb.WriteString(syntax.ExprString(instr.Node.(*syntax.Decl).LValue))
		case Yield:
			sb.WriteString("yield ")
			sb.WriteString(syntax.ExprString(instr.Node))
		case BinOp:
			op := instr.Node.(*syntax.BinOp).Op.Type
			fmt.Fprintf(&sb, "(#%d %s #%d)", instr.Left, op, instr.Right)
		default:
			sb.WriteString(syntax.ExprString(instr.Node))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
