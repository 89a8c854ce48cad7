package syntax

import (
	"strconv"

	"github.com/strager/scft/sexy"
)

// ToSExpr renders a tree as an s-expression. With verbose set, every list
// carries its span as ^{begin: N, end: M}.
func ToSExpr(n Node, verbose bool) string {
	return SExpr(n, verbose).String()
}

// SExpr converts a tree to a sexy.Node so it can be matched against test
// patterns. Absent optional children become the symbol nil.
func SExpr(n Node, verbose bool) *sexy.Node {
	d := dumper{verbose: verbose}
	return d.node(n)
}

type dumper struct {
	verbose bool
}

func (d dumper) list(n Node, head string, items ...*sexy.Node) *sexy.Node {
	l := sexy.NewList(append([]*sexy.Node{sexy.NewSymbol(head)}, items...)...)
	if d.verbose {
		sp := n.Span()
		l.WithMeta("begin", sexy.NewInteger(strconv.Itoa(sp.Begin)))
		l.WithMeta("end", sexy.NewInteger(strconv.Itoa(sp.End)))
	}
	return l
}

func (d dumper) nodes(nodes []Node) []*sexy.Node {
	out := make([]*sexy.Node, len(nodes))
	for i, n := range nodes {
		out[i] = d.node(n)
	}
	return out
}

func (d dumper) decls(decls []*Decl) []*sexy.Node {
	out := make([]*sexy.Node, len(decls))
	for i, n := range decls {
		out[i] = d.node(n)
	}
	return out
}

func (d dumper) node(n Node) *sexy.Node {
	if isNil(n) {
		return sexy.NewSymbol("nil")
	}
	switch n := n.(type) {
	case *Program:
		return d.list(n, "program", d.decls(n.Decls)...)
	case *Block:
		return d.list(n, "block", d.nodes(n.Stmts)...)
	case *If:
		items := []*sexy.Node{d.node(n.Cond), d.node(n.Then)}
		if n.Else != nil {
			items = append(items, d.node(n.Else))
		}
		return d.list(n, "if", items...)
	case *For:
		var body Node
		if n.Body != nil {
			body = n.Body
		}
		return d.list(n, "for", d.node(n.Init), d.node(n.Cond), d.node(n.Post), d.node(body))
	case *Break:
		return d.list(n, "break")
	case *Continue:
		return d.list(n, "continue")
	case *Return:
		if n.Value == nil {
			return d.list(n, "return")
		}
		return d.list(n, "return", d.node(n.Value))
	case *Decl:
		op := sexy.NewSymbol("nil")
		if n.Assign != nil {
			op = sexy.NewString(string(n.Assign.Type))
		}
		return d.list(n, "decl", d.node(n.LValue), d.node(n.Type), op, d.node(n.RValue))
	case *TypeLit:
		return d.list(n, "type", sexy.NewString(string(n.Type)))
	case *FuncType:
		in := sexy.NewList(append([]*sexy.Node{sexy.NewSymbol("in")}, d.nodes(n.In)...)...)
		return d.list(n, "func-type", in, d.node(n.Out))
	case *Module:
		return d.list(n, "mod", d.decls(n.Decls)...)
	case *TypeDef:
		return d.list(n, "ty", d.decls(n.Decls)...)
	case *Func:
		params := sexy.NewList(append([]*sexy.Node{sexy.NewSymbol("params")}, d.decls(n.Params)...)...)
		var body *sexy.Node
		switch {
		case n.Shorthand:
			body = sexy.NewList(sexy.NewSymbol("shorthand"), d.node(n.Expr))
		case n.Body != nil:
			body = d.node(n.Body)
		default:
			body = sexy.NewSymbol("nil")
		}
		return d.list(n, "func", params, d.node(n.Result), body)
	case *Name:
		return d.list(n, "name", sexy.NewString(n.Text()))
	case *DotOp:
		return d.list(n, "dot", d.node(n.Base), d.node(n.Member))
	case *Call:
		return d.list(n, "call", append([]*sexy.Node{d.node(n.Callee)}, d.nodes(n.Args)...)...)
	case *TypeInit:
		return d.list(n, "type-init", append([]*sexy.Node{d.node(n.TypeRef)}, d.decls(n.Assigns)...)...)
	case *Literal:
		return d.literal(n)
	case *UnaryOp:
		return d.list(n, "unary", sexy.NewString(string(n.Op.Type)), d.node(n.X))
	case *Deref:
		return d.list(n, "deref", d.node(n.X))
	case *BinOp:
		return d.list(n, "binary", sexy.NewString(string(n.Op.Type)), d.node(n.Left), d.node(n.Right))
	case *Unknown:
		return d.list(n, "unknown")
	}
	return sexy.NewSymbol("nil")
}

func (d dumper) literal(n *Literal) *sexy.Node {
	tok := n.Value
	switch tok.Type {
	case INT:
		return d.list(n, "int", sexy.NewInteger(strconv.FormatInt(tok.Int(), 10)))
	case FLOAT:
		return d.list(n, "float", sexy.NewString(literalText(tok)))
	case STRING:
		return d.list(n, "string", sexy.NewString(tok.Text()))
	default:
		return d.list(n, "bool", sexy.NewSymbol(string(tok.Type)))
	}
}
