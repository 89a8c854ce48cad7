package syntax

import (
	"strconv"
	"strings"
)

const indentUnit = "    "

// ExprString renders a node on one line. Binary and member operations are
// fully parenthesized and bodies are abbreviated to {...}. It is used to
// name expressions inside diagnostics.
func ExprString(n Node) string {
	pr := &printer{}
	pr.expr(n)
	return pr.sb.String()
}

// SourceString re-prints a tree as source text with blocks expanded and
// indented by four spaces per level.
func SourceString(n Node) string {
	pr := &printer{full: true}
	pr.stmt(n)
	if _, ok := n.(*Program); ok {
		pr.sb.WriteByte('\n')
	}
	return pr.sb.String()
}

type printer struct {
	sb     strings.Builder
	indent int
	full   bool // expand bodies instead of {...}
}

func (pr *printer) write(parts ...string) {
	for _, s := range parts {
		pr.sb.WriteString(s)
	}
}

func (pr *printer) newline() {
	pr.sb.WriteByte('\n')
	pr.sb.WriteString(strings.Repeat(indentUnit, pr.indent))
}

func (pr *printer) list(nodes []Node) {
	for i, n := range nodes {
		if i > 0 {
			pr.write(", ")
		}
		pr.expr(n)
	}
}

func (pr *printer) decls(decls []*Decl) []Node {
	nodes := make([]Node, len(decls))
	for i, d := range decls {
		nodes[i] = d
	}
	return nodes
}

// body prints a braced list: expanded one per line, or {...}.
func (pr *printer) body(stmts []Node) {
	if !pr.full {
		pr.write("{...}")
		return
	}
	if len(stmts) == 0 {
		pr.write("{}")
		return
	}
	pr.write("{")
	pr.indent++
	for _, s := range stmts {
		pr.newline()
		pr.stmt(s)
	}
	pr.indent--
	pr.newline()
	pr.write("}")
}

func (pr *printer) stmt(n Node) {
	switch n := n.(type) {
	case *Program:
		for i, d := range n.Decls {
			if i > 0 {
				pr.newline()
			}
			pr.stmt(d)
		}
	case *Block:
		pr.body(n.Stmts)
	case *If:
		pr.write("if ")
		pr.expr(n.Cond)
		if n.Then != nil {
			pr.write(" ")
			pr.stmt(n.Then)
		}
		if n.Else != nil {
			pr.write(" else ")
			pr.stmt(n.Else)
		}
	case *For:
		pr.write("for ")
		if n.Init != nil || n.Post != nil {
			pr.stmt(n.Init)
			pr.write(", ")
			pr.expr(n.Cond)
			pr.write(", ")
			pr.stmt(n.Post)
			pr.write(" ")
		} else if n.Cond != nil {
			pr.expr(n.Cond)
			pr.write(" ")
		}
		if n.Body != nil {
			pr.stmt(n.Body)
		}
	case *Break:
		pr.write("break")
	case *Continue:
		pr.write("continue")
	case *Return:
		pr.write("return")
		if n.Value != nil {
			pr.write(" ")
			pr.expr(n.Value)
		}
	case nil:
		pr.write("_")
	default:
		pr.expr(n)
	}
}

func (pr *printer) expr(n Node) {
	switch n := n.(type) {
	case nil:
		pr.write("_")
	case *Unknown:
		pr.write("Unknown")
	case *Decl:
		pr.expr(n.LValue)
		if n.Type != nil {
			pr.write(": ")
			pr.expr(n.Type)
		}
		if n.Assign != nil {
			pr.write(" ", string(n.Assign.Type), " ")
			pr.expr(n.RValue)
		}
	case *Name:
		pr.write(n.Text())
	case *TypeLit:
		pr.write(string(n.Type))
	case *Literal:
		pr.write(literalText(n.Value))
	case *UnaryOp:
		pr.write(string(n.Op.Type), "(")
		pr.expr(n.X)
		pr.write(")")
	case *BinOp:
		pr.write("(")
		pr.expr(n.Left)
		pr.write(" ", string(n.Op.Type), " ")
		pr.expr(n.Right)
		pr.write(")")
	case *DotOp:
		pr.write("(")
		pr.expr(n.Base)
		pr.write(".")
		pr.expr(n.Member)
		pr.write(")")
	case *Deref:
		pr.write("(")
		pr.expr(n.X)
		pr.write(").*")
	case *Call:
		pr.expr(n.Callee)
		pr.write("(")
		pr.list(n.Args)
		pr.write(")")
	case *TypeInit:
		pr.expr(n.TypeRef)
		pr.write(".{")
		pr.list(pr.decls(n.Assigns))
		pr.write("}")
	case *FuncType:
		pr.write("(")
		pr.list(n.In)
		pr.write(") -> ")
		pr.expr(n.Out)
	case *Func:
		pr.write("(")
		pr.list(pr.decls(n.Params))
		pr.write(")")
		if n.Result != nil {
			pr.write(" -> ")
			pr.expr(n.Result)
		}
		switch {
		case n.Shorthand:
			pr.write(" :: ")
			pr.expr(n.Expr)
		case n.Body != nil:
			pr.write(" ")
			pr.body(n.Body.Stmts)
		}
	case *Module:
		pr.write("mod ")
		pr.body(pr.decls(n.Decls))
	case *TypeDef:
		pr.write("ty ")
		pr.body(pr.decls(n.Decls))
	default:
		pr.stmt(n)
	}
}

// literalText renders a literal token the way it would be written.
func literalText(tok Token) string {
	switch tok.Type {
	case INT:
		return strconv.FormatInt(tok.Int(), 10)
	case FLOAT:
		s := strconv.FormatFloat(tok.Float(), 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case STRING:
		return `"` + tok.Text() + `"`
	}
	return string(tok.Type)
}
