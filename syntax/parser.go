package syntax

import (
	"fmt"
	"log/slog"

	"github.com/strager/scft/diag"
	"github.com/strager/scft/source"
)

// Parser builds a syntax tree from the token stream of a single buffer.
// Problems are recorded in the diagnostics engine and parsing continues;
// unparseable constructs become Unknown nodes.
type Parser struct {
	src  *source.Buffer
	dx   *diag.Diagnostics
	lex  *Lexer
	opts Options
	log  *slog.Logger

	globals *SymbolTable
	scope   *SymbolTable

	exprDepth  int // open parentheses and call argument lists
	braceDepth int // open blocks, mod/ty bodies and type initializers

	// end offset of the last "Not enough parenthesis" report, so nested
	// groups that run out at the same token report it once.
	unbalancedParenAt int

	// set by errors that leave no sensible place to resume
	halted bool
}

// NewParser creates a parser over src reporting into dx.
func NewParser(src *source.Buffer, dx *diag.Diagnostics, opts Options) *Parser {
	globals := NewSymbolTable(nil)
	return &Parser{
		src:               src,
		dx:                dx,
		lex:               NewLexer(src, dx, opts),
		opts:              opts,
		log:               opts.logger(),
		globals:           globals,
		scope:             globals,
		unbalancedParenAt: -1,
	}
}

// Parse parses src as a whole program with a fresh diagnostics engine.
func Parse(src *source.Buffer, opts Options) (*Program, *diag.Diagnostics) {
	dx := diag.New(src)
	prog := NewParser(src, dx, opts).ParseProgram()
	return prog, dx
}

// Globals returns the table of top-level declarations.
func (p *Parser) Globals() *SymbolTable {
	return p.globals
}

// Halted reports whether parsing stopped early on an unrecoverable error.
func (p *Parser) Halted() bool {
	return p.halted
}

func (p *Parser) peek() Token {
	return p.lex.Peek()
}

func (p *Parser) check(typ TokenType) bool {
	return p.lex.Peek().Type == typ
}

func (p *Parser) next() Token {
	return p.lex.Next()
}

// skip consumes the lookahead token, which must be of type typ.
//
// Panics on a mismatch; callers check before skipping.
func (p *Parser) skip(typ TokenType) Token {
	tok := p.lex.Next()
	if tok.Type != typ {
		panic("syntax: expected " + string(typ) + " but got " + string(tok.Type))
	}
	return tok
}

// lastSpan is the span of the last consumed token, or an empty span at the
// start of the buffer.
func (p *Parser) lastSpan() source.Span {
	if p.lex.Consumed() == 0 {
		return source.Span{}
	}
	return p.lex.Last().Span
}

func (p *Parser) lastEnd() int {
	return p.lastSpan().End
}

// atEnd is true when nothing more can be parsed.
func (p *Parser) atEnd() bool {
	return p.halted || p.check(EOF)
}

func (p *Parser) halt() {
	p.halted = true
}

// progressed reports whether any token was consumed since mark.
func (p *Parser) progressed(mark int) bool {
	return p.lex.Consumed() != mark
}

func (p *Parser) errAfter(msg string) *diag.Record {
	return p.dx.AfterToken(msg, p.lastSpan())
}

func (p *Parser) errToken(msg string, tok Token) *diag.Record {
	return p.dx.ErrorAt(msg, tok.Span)
}

func (p *Parser) errNode(msg string, n Node) *diag.Record {
	return p.dx.ErrorAt(msg, n.Span())
}

// noteLast attaches note to the newest record, if there is one.
func (p *Parser) noteLast(note string) {
	if p.dx.ActiveLen() > 0 {
		p.dx.Last().WithNote(note)
	}
}

func span(begin, end int) source.Span {
	return source.Span{Begin: begin, End: max(begin, end)}
}

// ParseProgram parses declarations until the end of the buffer.
func (p *Parser) ParseProgram() *Program {
	begin := p.peek().Span.Begin
	prog := &Program{Globals: p.globals}
	for !p.atEnd() {
		mark := p.lex.Consumed()
		decl := p.parseDeclOnly()
		if decl == nil {
			p.noteLast("Statements are never executed in global scope")
		} else {
			prog.Decls = append(prog.Decls, decl)
			p.declareGlobal(decl)
		}
		if !p.progressed(mark) {
			break
		}
	}
	end := begin
	if len(prog.Decls) > 0 {
		end = prog.Decls[len(prog.Decls)-1].Span().End
	}
	prog.Loc = span(begin, end)
	p.log.Debug("parsed program",
		"path", p.src.Path,
		"decls", len(prog.Decls),
		"globals", p.globals.Len(),
		"records", p.dx.Len(),
		"halted", p.halted)
	return prog
}

// declareGlobal records a top-level declaration, reporting a name that was
// already declared at the top level.
func (p *Parser) declareGlobal(decl *Decl) {
	ident, ok := decl.Ident()
	if !ok {
		return
	}
	if prev, found := p.globals.Find(ident.Text()); found {
		p.errNode(fmt.Sprintf("`%s` is already declared", ident.Text()), decl.LValue)
		p.dx.Record(diag.Context, "First declared here", prev.Ident.Span)
		return
	}
	p.globals.Insert(ident, decl)
}

func declareLocal(scope *SymbolTable, n Node) {
	decl, ok := n.(*Decl)
	if !ok {
		return
	}
	if ident, ok := decl.Ident(); ok {
		scope.Insert(ident, decl)
	}
}

// parseDeclOnly parses one entry of a declaration list: the top level or a
// mod/ty body. Anything other than a declaration is reported and nil is
// returned.
func (p *Parser) parseDeclOnly() *Decl {
	tok := p.peek()
	switch tok.Type {
	case IF:
		p.errNode("If statement is not allowed here", p.recovering(p.parseIf))
	case FOR:
		p.errNode("For loop is not allowed here", p.recovering(p.parseFor))
	case RETURN:
		p.errNode("Return is not allowed here", p.recovering(p.parseReturn))
	case BREAK, CONTINUE:
		p.next()
		p.errToken(fmt.Sprintf("%s is not allowed here", tok.Type), tok)
	default:
		switch n := p.parseDeclExpr().(type) {
		case *Decl:
			return n
		case *Unknown:
		default:
			p.errNode(fmt.Sprintf("%s is not allowed here", n.Kind()), n)
		}
	}
	return nil
}

// recovering runs parse with diagnostics discarded. The caller reports a
// single error for the whole construct instead. A token peeked past the
// construct is scanned again so its diagnostics are kept.
func (p *Parser) recovering(parse func() Node) Node {
	p.dx.BeginRecovery()
	n := parse()
	p.dx.EndRecovery()
	if !p.dx.Recovering() {
		p.lex.Unpeek()
	}
	return n
}

// ParseStatement parses a single statement inside a function body.
func (p *Parser) ParseStatement() Node {
	return p.parseStatement()
}

func (p *Parser) parseStatement() Node {
	tok := p.peek()
	switch tok.Type {
	case LBRACE:
		return p.parseBlock()
	case IF:
		return p.parseIf()
	case FOR:
		return p.parseFor()
	case BREAK:
		n := &Break{}
		n.Loc = p.next().Span
		p.checkUnreachable("break", n)
		return n
	case CONTINUE:
		n := &Continue{}
		n.Loc = p.next().Span
		p.checkUnreachable("continue", n)
		return n
	case RETURN:
		return p.parseReturn()
	}

	n := p.parseDeclExpr()
	if _, ok := n.(*Unknown); ok {
		if p.dx.ActiveLen() > 0 {
			p.dx.PopLast()
		}
		p.errNode("Expected a statement keyword like if, for, etc", n)
	}
	return n
}

// checkUnreachable reports a statement following a jump in the same block.
func (p *Parser) checkUnreachable(keyword string, jump Node) {
	if p.check(RBRACE) || p.check(EOF) {
		return
	}
	p.errToken("Unreachable statement following "+keyword, p.peek())
	label := string(jump.Kind())
	p.dx.ErrorAt(label+" statement found here", jump.Span()).WithSeverity(diag.Empty)
}

func (p *Parser) parseBlock() Node {
	return p.parseBlockIn(p.scope)
}

func (p *Parser) parseBlockIn(parent *SymbolTable) *Block {
	open := p.skip(LBRACE)
	b := &Block{Scope: NewSymbolTable(parent)}

	outer := p.scope
	p.scope = b.Scope
	p.braceDepth++
	for !p.check(RBRACE) && !p.atEnd() {
		mark := p.lex.Consumed()
		stmt := p.parseStatement()
		b.Stmts = append(b.Stmts, stmt)
		declareLocal(b.Scope, stmt)
		if !p.progressed(mark) {
			break
		}
	}
	p.braceDepth--
	p.scope = outer

	switch {
	case p.halted:
	case p.check(EOF):
		p.errToken("Mismatched curly brackets. Start of block found here", open)
		p.errAfter("Reached end of file before finding a closing }").
			WithSeverity(diag.Empty).
			WithFix("Add a closing }")
		p.halt()
	case p.check(RBRACE):
		p.next()
	}
	b.Loc = span(open.Span.Begin, p.lastEnd())
	return b
}

func (p *Parser) parseIf() Node {
	kw := p.skip(IF)
	n := &If{}
	n.Cond = p.parseExpr()
	if _, ok := n.Cond.(*Unknown); ok {
		n.Loc = span(kw.Span.Begin, p.lastEnd())
		return n
	}

	if p.check(LBRACE) {
		n.Then = p.parseBlock()
	} else {
		n.Then = p.parseStatement()
	}

	if !p.halted && p.check(ELSE) {
		p.next()
		switch {
		case p.check(EOF):
			p.errAfter("Unterminated code at end of file. Expected if keyword or {")
		case p.check(IF):
			n.Else = p.parseIf()
		case p.check(LBRACE):
			n.Else = p.parseBlock()
		default:
			n.Else = p.parseStatement()
		}
	}
	n.Loc = span(kw.Span.Begin, p.lastEnd())
	return n
}

// parseFor parses the three loop forms:
//
//	for { ... }
//	for cond { ... }
//	for init, cond, post { ... }
func (p *Parser) parseFor() Node {
	kw := p.skip(FOR)
	n := &For{}

	switch {
	case p.check(LBRACE):
	case p.check(COMMA):
		p.errToken("Expected a statement", p.peek()).
			WithFix("Add _ to declare an empty initial statement")
	default:
		n.Init = p.parseStatement()
		switch {
		case p.halted:
		case p.check(COMMA):
			p.next()
			p.parseForTail(n)
		case p.check(LBRACE):
			if IsExpression(n.Init.Kind()) {
				n.Cond, n.Init = n.Init, nil
			} else {
				p.errNode("For loop condition must be an expression", n.Init)
			}
		default:
			p.errAfter("Expected a comma after the initial statement")
		}
	}

	if !p.halted && p.check(LBRACE) {
		n.Body = p.parseBlockIn(p.scope)
	}
	n.Loc = span(kw.Span.Begin, p.lastEnd())
	return n
}

// parseForTail parses "cond, post" after the initial statement's comma.
func (p *Parser) parseForTail(n *For) {
	if p.check(LBRACE) {
		p.errNode("Conditional expression can't be a block", p.parseBlock())
		return
	}
	n.Cond = p.parseExpr()
	if _, ok := n.Cond.(*Unknown); ok {
		p.noteLast("For loop condition must be an expression")
	}

	switch {
	case p.halted:
	case p.check(COMMA):
		p.next()
		if p.check(LBRACE) {
			p.errNode("Block statement is not allowed after the conditional expression", p.parseBlock()).
				WithNote("_ can be used to declare an empty post statement")
			return
		}
		n.Post = p.parseStatement()
	case p.check(LBRACE):
		p.errAfter("Expected another statement after the condition").
			WithNote("_ can be used to declare an empty post statement")
	case p.check(ASSIGN):
		p.errAfter("Expected a comma after the conditional").
			WithFix("Replace = with ==").
			WithNote("= (assignment) may have been confused for == (equivalence operator)")
	default:
		p.errAfter("Expected a comma after the conditional").WithFix("Add ,")
	}
}

func (p *Parser) parseReturn() Node {
	kw := p.skip(RETURN)
	n := &Return{}
	if !p.check(RBRACE) {
		n.Value = p.parseExpr()
	}
	n.Loc = span(kw.Span.Begin, p.lastEnd())
	p.checkUnreachable("return", n)
	return n
}

// isAssignment reports whether typ can join an l-value to an r-value.
func isAssignment(typ TokenType) bool {
	switch typ {
	case ASSIGN, CONST_ASSIGN, PLUS_EQ, MINUS_EQ, MUL_EQ, DIV_EQ, MOD_EQ:
		return true
	}
	return false
}

// parseDeclExpr parses "lvalue [: type] [= rvalue]". Without a type or an
// assignment the l-value expression itself is returned.
func (p *Parser) parseDeclExpr() Node {
	lv := p.parseExpr()
	if p.halted {
		return lv
	}

	var typ Node
	if p.check(COLON) {
		p.next()
		typ = p.parseExpr()
	}

	if !p.halted && isAssignment(p.peek().Type) {
		op := p.next()
		d := &Decl{LValue: lv, Type: typ, Assign: &op}
		d.RValue = p.parseExpr()
		d.Loc = span(lv.Span().Begin, max(p.lastEnd(), d.RValue.Span().End))
		return d
	}

	if typ == nil {
		return lv
	}
	d := &Decl{LValue: lv, Type: typ}
	d.Loc = span(lv.Span().Begin, p.lastEnd())
	return d
}
