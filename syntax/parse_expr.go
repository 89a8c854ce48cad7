package syntax

import "fmt"

// Unary operands bind everything tighter than multiplication, so
// -a^2 is -(a^2) and -f(x) is -(f(x)).
const unaryPrecedence = 11

const postfixPrecedence = 13

// precedence returns the binding power of an infix or postfix operator,
// or 0 if typ does not continue an expression.
func precedence(typ TokenType) int {
	switch typ {
	case OR:
		return 1
	case XOR:
		return 2
	case AND:
		return 3
	case BIT_OR:
		return 4
	case BIT_XOR:
		return 5
	case BIT_AND:
		return 6
	case EQ, NOT_EQ:
		return 7
	case LT, LE, GT, GE:
		return 8
	case SHL, SHR:
		return 9
	case PLUS, MINUS:
		return 10
	case ASTERISK, SLASH, PERCENT:
		return 11
	case CARET:
		return 12
	case LPAREN, DOT, DEREF:
		return postfixPrecedence
	default:
		return 0
	}
}

// ParseExpression parses a single expression.
func (p *Parser) ParseExpression() Node {
	return p.parseExpr()
}

func (p *Parser) parseExpr() Node {
	return p.recurExpr(0)
}

// recurExpr implements precedence climbing: operators binding tighter than
// minPrec are folded into the left operand, so equal precedence associates
// to the left.
func (p *Parser) recurExpr(minPrec int) Node {
	left := p.parseOperand()
	for !p.halted {
		op := p.peek()
		prec := precedence(op.Type)
		if prec <= minPrec {
			break
		}

		switch op.Type {
		case LPAREN:
			left = p.parseCall(left)
		case DEREF:
			p.next()
			d := &Deref{X: left}
			d.Loc = span(left.Span().Begin, op.Span.End)
			left = d
		case DOT:
			p.next()
			left = p.parseDot(left)
		default:
			p.next()
			right := p.recurExpr(prec)
			b := &BinOp{Left: left, Op: op, Right: right}
			b.Loc = span(left.Span().Begin, max(right.Span().End, op.Span.End))
			left = b
		}
	}
	return left
}

// parseDot parses what follows "base.": a type initializer, a dereference
// written with a space-free ".*", or a member name.
func (p *Parser) parseDot(base Node) Node {
	switch {
	case p.check(LBRACE):
		return p.parseTypeInit(base)
	case p.check(ASTERISK):
		star := p.next()
		d := &Deref{X: base}
		d.Loc = span(base.Span().Begin, star.Span.End)
		return d
	}

	member := p.recurExpr(postfixPrecedence)
	dot := &DotOp{Base: base, Member: member}
	if _, ok := member.(*Name); !ok {
		if _, unknown := member.(*Unknown); !unknown {
			p.errNode(fmt.Sprintf("Expected a member variable of %s but found %s instead",
				ExprString(base), ExprString(member)), member)
		}
		u := &Unknown{}
		u.Loc = member.Span()
		dot.Member = u
	}
	dot.Loc = span(base.Span().Begin, max(p.lastEnd(), dot.Member.Span().End))
	return dot
}

func (p *Parser) parseOperand() Node {
	tok := p.peek()
	switch {
	case tok.Type == MOD:
		return p.parseModule()
	case tok.Type == TY:
		return p.parseTypeDef()
	case tok.Type == IDENT:
		p.next()
		n := &Name{Ident: tok}
		n.Loc = tok.Span
		return n
	case tok.Type.IsTypeKeyword():
		p.next()
		n := &TypeLit{Type: tok.Type}
		n.Loc = tok.Span
		return n
	case tok.Type == INT, tok.Type == FLOAT, tok.Type == STRING, tok.Type == TRUE, tok.Type == FALSE:
		p.next()
		n := &Literal{Value: tok}
		n.Loc = tok.Span
		return n
	case tok.Type == NOT, tok.Type == BIT_NOT, tok.Type == MINUS, tok.Type == ASTERISK:
		p.next()
		x := p.recurExpr(unaryPrecedence)
		n := &UnaryOp{Op: tok, X: x}
		n.Loc = span(tok.Span.Begin, max(x.Span().End, tok.Span.End))
		return n
	case tok.Type == LPAREN:
		p.exprDepth++
		defer func() { p.exprDepth-- }()
		return p.parseParenExpr()
	}

	switch {
	case tok.Type == EOF:
		p.errAfter("Expected an expression but instead reached the end of the file")
	case tok.Type == RPAREN && p.exprDepth == 0:
		p.next()
		p.errToken("Too many closing parenthesis", tok).WithFix("Delete )")
		p.halt()
	default:
		p.errToken(fmt.Sprintf("Expected an expression but found %s instead", tok.Describe()), tok)
		// Leave closers for the construct they belong to.
		closes := tok.Type == RPAREN || (tok.Type == RBRACE && p.braceDepth > 0)
		if !closes {
			p.next()
		}
	}
	u := &Unknown{}
	u.Loc = tok.Span
	if p.lastEnd() < tok.Span.End {
		// Nothing was consumed for it, so it ends where the input left off.
		u.Loc = span(p.lastEnd(), p.lastEnd())
	}
	return u
}

// parseParenExpr parses what follows "(": a function literal, a function
// type or a parenthesized expression. The entries are parsed as parameter
// declarations until one turns out not to be a declaration.
func (p *Parser) parseParenExpr() Node {
	open := p.skip(LPAREN)
	fn := &Func{}
	isFunction := false

	for !p.check(RPAREN) && !p.atEnd() {
		mark := p.lex.Consumed()
		param := p.parseDeclExpr()
		switch param := param.(type) {
		case *Decl:
			fn.Params = append(fn.Params, param)
		case *Unknown:
			p.noteLast("Function parameter must declare a variable")
		default:
			if !isFunction {
				return p.parseFuncType(open, param)
			}
			p.errNode("Expression is not allowed in function parameter list", param)
		}
		if p.halted {
			break
		}

		switch {
		case p.check(COMMA):
			p.next()
			if p.check(RPAREN) {
				p.errAfter("Expected another function parameter after the comma")
			}
		case !p.check(RPAREN) && !p.check(EOF):
			p.errAfter("Expected either , or ) in function parameter list")
		}
		isFunction = true
		if !p.progressed(mark) {
			break
		}
	}

	if p.halted {
		fn.Scope = p.paramScope(fn.Params)
		fn.Loc = span(open.Span.Begin, p.lastEnd())
		return fn
	}
	switch {
	case p.check(EOF):
		p.errAfter("Unterminated code at end of file. Expected another function parameter").
			WithFix("Add ) or another function parameter")
	case p.check(RPAREN):
		p.next()
	}

	if p.check(ARROW) {
		p.next()
		fn.Result = p.parseExpr()
	}

	switch {
	case p.halted:
	case p.check(SINGLE_RETURN):
		p.next()
		if p.check(RETURN) {
			p.errToken("Return is not allowed here", p.next()).
				WithFix("Delete return keyword").
				WithNote("Function shorthand must be in the form (...) :: [expression]")
		}
		fn.Shorthand = true
		fn.Expr = p.parseExpr()
		if _, ok := fn.Expr.(*Unknown); ok {
			p.noteLast("Must have an expression immediately after ::")
		}
	case p.check(LBRACE):
		fn.Scope = p.paramScope(fn.Params)
		fn.Body = p.parseBlockIn(fn.Scope)
	case fn.Result != nil:
		// "(a: Int) -> Int" with no body is a function type.
		ft := &FuncType{Out: fn.Result}
		for _, param := range fn.Params {
			ft.In = append(ft.In, param)
		}
		ft.Loc = span(open.Span.Begin, p.lastEnd())
		return ft
	case p.check(EOF):
		p.errAfter("Expected a return type or function block")
	default:
		p.errAfter("Function body must start with { and end with }").WithFix("Add {")
	}

	if fn.Scope == nil {
		fn.Scope = p.paramScope(fn.Params)
	}
	fn.Loc = span(open.Span.Begin, p.lastEnd())
	return fn
}

func (p *Parser) paramScope(params []*Decl) *SymbolTable {
	scope := NewSymbolTable(p.scope)
	for _, param := range params {
		declareLocal(scope, param)
	}
	return scope
}

// parseFuncType continues a parenthesized list whose first entry, first,
// was not a declaration. A single entry with no arrow is a grouping.
func (p *Parser) parseFuncType(open Token, first Node) Node {
	ft := &FuncType{In: []Node{first}}
	for {
		if p.halted {
			return first
		}
		if p.check(COMMA) {
			p.next()
			if p.check(RPAREN) {
				p.errAfter("Expected another type after the comma")
			}
		} else if !p.check(RPAREN) {
			if len(ft.In) == 1 {
				if p.unbalancedParenAt != p.lastEnd() {
					p.errAfter("Not enough parenthesis").
						WithFix(fmt.Sprintf("Add %d more )", p.exprDepth))
					p.unbalancedParenAt = p.lastEnd()
				}
				return first
			}
			if !p.check(EOF) {
				p.errAfter("Expected either , or ) in function input type list")
			}
		}
		if p.check(RPAREN) || p.check(EOF) {
			break
		}
		mark := p.lex.Consumed()
		ft.In = append(ft.In, p.parseExpr())
		if !p.progressed(mark) {
			break
		}
	}

	switch {
	case p.halted:
		return ft
	case p.check(EOF):
		p.errAfter("Unterminated code at end of file. Expected another type").
			WithFix("Add ) or another type")
	case p.check(RPAREN):
		p.next()
		if p.check(ARROW) {
			p.next()
			ft.Out = p.parseExpr()
		} else if len(ft.In) == 1 {
			return first
		} else {
			p.errAfter("Function type must explicitly declare a return type").
				WithNote("Use the format ([input type 1], [input type 2], ...) -> [return type]")
		}
	}
	ft.Loc = span(open.Span.Begin, p.lastEnd())
	return ft
}

func (p *Parser) parseCall(callee Node) Node {
	p.skip(LPAREN)
	p.exprDepth++
	defer func() { p.exprDepth-- }()

	call := &Call{Callee: callee}
	label := "[" + ExprString(callee) + "]: "
	for !p.check(RPAREN) && !p.atEnd() {
		mark := p.lex.Consumed()
		call.Args = append(call.Args, p.parseExpr())
		if p.halted {
			break
		}
		switch {
		case p.check(COMMA):
			p.next()
			if p.check(RPAREN) {
				p.errAfter(label + "Expected another expression after the comma")
			}
		case !p.check(RPAREN) && !p.check(EOF):
			p.errAfter(label + "Expected either , or ) in call argument list")
		}
		if !p.progressed(mark) {
			break
		}
	}

	switch {
	case p.halted:
	case p.check(EOF):
		p.errAfter(label + "Unterminated code at end of file. Expected another expression").
			WithFix("Add ) or another expression")
	case p.check(RPAREN):
		p.next()
	}
	call.Loc = span(callee.Span().Begin, p.lastEnd())
	return call
}

// parseTypeInit parses "{ a = 1, b = 2 }" after "T.".
func (p *Parser) parseTypeInit(typeRef Node) Node {
	p.skip(LBRACE)
	p.braceDepth++
	defer func() { p.braceDepth-- }()

	n := &TypeInit{TypeRef: typeRef}
	label := "[" + ExprString(typeRef) + "]: "
	for !p.check(RBRACE) && !p.atEnd() {
		mark := p.lex.Consumed()
		switch item := p.parseDeclExpr().(type) {
		case *Decl:
			if item.Type != nil {
				p.errNode(label+"Variable declaration is not allowed here", item).
					WithFix("Delete the type, " + ExprString(item.Type))
			}
			n.Assigns = append(n.Assigns, item)
		case *Unknown:
		default:
			p.errNode(label+"Expression is not allowed here", item)
		}
		if p.halted {
			break
		}
		switch {
		case p.check(COMMA):
			p.next()
		case !p.check(RBRACE) && !p.check(EOF):
			p.errAfter(label + "Expected either , or } in type initialization list")
		}
		if !p.progressed(mark) {
			break
		}
	}

	switch {
	case p.halted:
	case p.check(EOF):
		p.errAfter(label + "Unterminated code at end of file. Expected closing }").
			WithFix("Add } or another assignment")
	case p.check(RBRACE):
		p.next()
	}
	n.Loc = span(typeRef.Span().Begin, p.lastEnd())
	return n
}

func (p *Parser) parseModule() Node {
	kw := p.skip(MOD)
	m := &Module{Scope: NewSymbolTable(p.scope)}
	m.Decls = p.parseDeclBody(kw, "Module must be of the form mod {...}", m.Scope)
	m.Loc = span(kw.Span.Begin, p.lastEnd())
	return m
}

func (p *Parser) parseTypeDef() Node {
	kw := p.skip(TY)
	t := &TypeDef{Scope: NewSymbolTable(p.scope)}
	t.Decls = p.parseDeclBody(kw, "Type definition must be of the form ty {...}", t.Scope)
	t.Loc = span(kw.Span.Begin, p.lastEnd())
	return t
}

// parseDeclBody parses the braced declaration list of a mod or ty.
func (p *Parser) parseDeclBody(kw Token, form string, scope *SymbolTable) []*Decl {
	if p.check(LBRACE) {
		p.next()
	} else {
		p.errAfter(fmt.Sprintf("Expected { after %s keyword", kw.Type)).
			WithFix("Add {").
			WithNote(form)
	}

	outer := p.scope
	p.scope = scope
	p.braceDepth++
	var decls []*Decl
	for !p.check(RBRACE) && !p.atEnd() {
		mark := p.lex.Consumed()
		if d := p.parseDeclOnly(); d != nil {
			decls = append(decls, d)
			declareLocal(scope, d)
		}
		if !p.progressed(mark) {
			break
		}
	}
	p.braceDepth--
	p.scope = outer

	switch {
	case p.halted:
	case p.check(EOF):
		p.errAfter("Unterminated code at end of file. Expected closing }").
			WithFix("Add } or another declaration")
	case p.check(RBRACE):
		p.next()
	}
	return decls
}
