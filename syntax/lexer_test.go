package syntax

import (
	"math"
	"testing"

	"github.com/nalgeon/be"
	"github.com/strager/scft/diag"
	"github.com/strager/scft/source"
)

func lex(text string, opts Options) ([]Token, *diag.Diagnostics) {
	src := source.New("test.scft", text)
	dx := diag.New(src)
	return NewLexer(src, dx, opts).All(), dx
}

func tokenTypes(toks []Token) []TokenType {
	types := make([]TokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func messages(dx *diag.Diagnostics) []string {
	var msgs []string
	for _, r := range dx.Records() {
		msgs = append(msgs, r.Message)
	}
	return msgs
}

var fixedTextTypes = []TokenType{
	LBRACE, RBRACE, LPAREN, RPAREN,
	MOD, TY, IF, ELSE, FOR, BREAK, CONTINUE, RETURN, TRUE, FALSE,
	VOID_TYPE, MOD_TYPE, TY_TYPE, INT_TYPE, DOUBLE_TYPE, STRING_TYPE, BOOL_TYPE,
	COLON, ASSIGN, CONST_ASSIGN,
	NOT, OR, AND, XOR, EQ, NOT_EQ, LT, LE, GT, GE,
	BIT_NOT, BIT_OR, BIT_AND, BIT_XOR, SHL, SHR,
	DOT, PLUS, MINUS, ASTERISK, SLASH, PERCENT, CARET,
	PLUS_PLUS, PLUS_EQ, MINUS_MINUS, MINUS_EQ, MUL_EQ, DIV_EQ, MOD_EQ,
	ARROW, SINGLE_RETURN, COMMA, DEREF,
}

func TestFixedTextTokensRoundTrip(t *testing.T) {
	for _, typ := range fixedTextTypes {
		t.Run(string(typ), func(t *testing.T) {
			be.True(t, typ.HasFixedText())
			toks, dx := lex(string(typ), Options{})
			be.Equal(t, tokenTypes(toks), []TokenType{typ, EOF})
			be.Equal(t, toks[0].Span, source.Span{Begin: 0, End: len(typ)})
			be.Equal(t, dx.Len(), 0)
		})
	}
}

func TestHasFixedText(t *testing.T) {
	for _, typ := range []TokenType{ILLEGAL, EOF, IDENT, INT, FLOAT, STRING} {
		be.True(t, !typ.HasFixedText())
	}
}

func TestTokenTypeString(t *testing.T) {
	be.Equal(t, IDENT.String(), "identifier")
	be.Equal(t, EOF.String(), "end of file")
	be.Equal(t, FLOAT.String(), "floating point literal")
	be.Equal(t, ARROW.String(), "->")
	be.True(t, INT_TYPE.IsTypeKeyword())
	be.True(t, !INT.IsTypeKeyword())
}

func TestLexOperatorsGreedy(t *testing.T) {
	tests := []struct {
		input string
		want  []TokenType
	}{
		{"a<=b", []TokenType{IDENT, LE, IDENT, EOF}},
		{"a<<b<c", []TokenType{IDENT, SHL, IDENT, LT, IDENT, EOF}},
		{"x.*", []TokenType{IDENT, DEREF, EOF}},
		{"x=>1", []TokenType{IDENT, CONST_ASSIGN, INT, EOF}},
		{"f :: a", []TokenType{IDENT, SINGLE_RETURN, IDENT, EOF}},
		{"() -> Int", []TokenType{LPAREN, RPAREN, ARROW, INT_TYPE, EOF}},
		{"a--b", []TokenType{IDENT, MINUS_MINUS, IDENT, EOF}},
		{"a$$b$c", []TokenType{IDENT, XOR, IDENT, BIT_XOR, IDENT, EOF}},
		{"T.{a = 1}", []TokenType{IDENT, DOT, LBRACE, IDENT, ASSIGN, INT, RBRACE, EOF}},
		{"it's", []TokenType{IDENT, EOF}},
		{"12abc", []TokenType{INT, IDENT, EOF}},
		{"1.x", []TokenType{INT, DOT, IDENT, EOF}},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			toks, dx := lex(test.input, Options{})
			be.Equal(t, tokenTypes(toks), test.want)
			be.Equal(t, dx.Len(), 0)
		})
	}
}

func TestLexSpans(t *testing.T) {
	toks, _ := lex("ab +\n  cd", Options{})
	be.Equal(t, toks[0].Span, source.Span{Begin: 0, End: 2})
	be.Equal(t, toks[1].Span, source.Span{Begin: 3, End: 4})
	be.Equal(t, toks[2].Span, source.Span{Begin: 7, End: 9})
	be.Equal(t, toks[2].Text(), "cd")
	be.Equal(t, toks[3].Span, source.Span{Begin: 9, End: 9})
}

func TestLexIntegers(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"0", 0},
		{"42", 42},
		{"1_000_000", 1000000},
		{"0x1f", 31},
		{"0xFF", 255},
		{"0b101", 5},
		{"0o17", 15},
		{"2147483647", math.MaxInt32},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			toks, dx := lex(test.input, Options{})
			be.Equal(t, tokenTypes(toks), []TokenType{INT, EOF})
			be.Equal(t, toks[0].Int(), test.want)
			be.Equal(t, dx.Len(), 0)
		})
	}
}

func TestLexFloats(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1.5", 1.5},
		{"3.25", 3.25},
		{"0.5", 0.5},
		{"1_0.2_5", 10.25},
		{"0x1f.8", 31.5},
		{"0b1.1", 1.5},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			toks, dx := lex(test.input, Options{})
			be.Equal(t, tokenTypes(toks), []TokenType{FLOAT, EOF})
			be.Equal(t, toks[0].Float(), test.want)
			be.Equal(t, dx.Len(), 0)
		})
	}
}

func TestLexNumericDiagnostics(t *testing.T) {
	tests := []struct {
		input string
		sev   diag.Severity
		msg   string
	}{
		{"0x", diag.Error, "Numeric literal has no digits after the base prefix"},
		{"1_", diag.Error, "Numeric separator _ is not allowed at the end of a literal"},
		{"0x_1", diag.Error, "Numeric separator _ is not allowed at the start of a literal"},
		{"1_.5", diag.Error, "Numeric separator _ is not allowed next to a decimal point"},
		{"1._5", diag.Error, "Numeric separator _ is not allowed next to a decimal point"},
		{"0b12", diag.Error, "2 is an invalid digit value in base 2"},
		{"0o78", diag.Error, "8 is an invalid digit value in base 8"},
		{"1.2.3", diag.Error, `Numeric literal has too many decimal points "1.2."`},
		{"2147483648", diag.Warning, "Integer literal exceeds the 32-bit signed range"},
		{"9007199254740993.0", diag.Warning, "Floating point literal loses precision"},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			_, dx := lex(test.input, Options{})
			be.Equal(t, dx.Len(), 1)
			be.Equal(t, dx.Records()[0].Severity, test.sev)
			be.Equal(t, dx.Records()[0].Message, test.msg)
		})
	}
}

func TestLexIntegerSaturates(t *testing.T) {
	toks, dx := lex("99999999999999999999", Options{})
	be.Equal(t, toks[0].Type, INT)
	be.Equal(t, toks[0].Int(), int64(math.MaxInt64))
	be.Equal(t, messages(dx), []string{"Integer literal exceeds the 32-bit signed range"})
}

func TestLexSemicolons(t *testing.T) {
	toks, dx := lex("x; y", Options{})
	be.Equal(t, tokenTypes(toks), []TokenType{IDENT, IDENT, EOF})
	be.Equal(t, dx.Len(), 1)
	r := dx.Records()[0]
	be.Equal(t, r.Severity, diag.Warning)
	be.Equal(t, r.Message, "Unnecessary semicolon")
	be.Equal(t, r.Fix, "Remove ;")
	be.Equal(t, r.Span, source.Span{Begin: 1, End: 2})
	be.True(t, !dx.HasErrors())

	_, dx = lex("x; y;", Options{SuppressSemicolonWarnings: true})
	be.Equal(t, dx.Len(), 0)
}

func TestLexStrings(t *testing.T) {
	toks, dx := lex(`"a\"b" "c"`, Options{})
	be.Equal(t, tokenTypes(toks), []TokenType{STRING, STRING, EOF})
	be.Equal(t, toks[0].Text(), `a\"b`)
	be.Equal(t, toks[0].Span, source.Span{Begin: 0, End: 6})
	be.Equal(t, toks[1].Text(), "c")
	be.Equal(t, dx.Len(), 0)

	toks, dx = lex(`x = "abc`, Options{})
	be.Equal(t, tokenTypes(toks), []TokenType{IDENT, ASSIGN, STRING, EOF})
	be.Equal(t, toks[2].Text(), "abc")
	be.Equal(t, messages(dx), []string{"Unterminated string literal"})
	be.Equal(t, dx.Records()[0].Span, source.Span{Begin: 4, End: 5})
}

func TestLexComments(t *testing.T) {
	toks, dx := lex("// line\nx /* a \\*/ b */ y // tail", Options{})
	be.Equal(t, tokenTypes(toks), []TokenType{IDENT, IDENT, EOF})
	be.Equal(t, toks[1].Text(), "y")
	be.Equal(t, dx.Len(), 0)
}

func TestLexCommentDiagnostics(t *testing.T) {
	tests := []struct {
		input string
		msg   string
		span  source.Span
	}{
		{"x /* never closed", "Unterminated block comment", source.Span{Begin: 2, End: 4}},
		{"x */ y", "Invalid closing of block comment", source.Span{Begin: 2, End: 4}},
		{"x @ y", "Unexpected character '@'", source.Span{Begin: 2, End: 3}},
		{"x é y", "Unexpected character 'é'", source.Span{Begin: 2, End: 4}},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			_, dx := lex(test.input, Options{})
			be.Equal(t, messages(dx), []string{test.msg})
			be.Equal(t, dx.Records()[0].Span, test.span)
		})
	}
}

func TestLexerPeekNextLast(t *testing.T) {
	src := source.New("test.scft", "a b")
	dx := diag.New(src)
	l := NewLexer(src, dx, Options{})

	be.Equal(t, l.Peek().Text(), "a")
	be.Equal(t, l.Peek().Text(), "a")
	be.Equal(t, l.Consumed(), 0)
	be.Equal(t, l.Next().Text(), "a")
	be.Equal(t, l.Last().Text(), "a")
	be.Equal(t, l.Next().Text(), "b")
	be.Equal(t, l.Last().Text(), "b")

	// EOF is sticky.
	be.Equal(t, l.Next().Type, EOF)
	be.Equal(t, l.Next().Type, EOF)
	be.Equal(t, l.Peek().Type, EOF)
	be.Equal(t, l.Consumed(), 2)
	be.Equal(t, l.Last().Text(), "b")
}

func TestLexerLastPanicsBeforeConsuming(t *testing.T) {
	src := source.New("test.scft", "a")
	l := NewLexer(src, diag.New(src), Options{})
	defer func() {
		be.True(t, recover() != nil)
	}()
	l.Last()
}

func TestTokenDescribe(t *testing.T) {
	toks, _ := lex(`abc 12 1.5 "s" -> Int`, Options{})
	var got []string
	for _, tok := range toks {
		got = append(got, tok.Describe())
	}
	be.Equal(t, got, []string{`"abc"`, "12", "1.5", "String literal", "->", "Int", "end of file"})
}

func TestUnpeekScansAgain(t *testing.T) {
	src := source.New("test.scft", "a ; b")
	dx := diag.New(src)
	l := NewLexer(src, dx, Options{})

	be.Equal(t, l.Next().Type, IDENT)
	first := l.Peek()
	be.Equal(t, dx.Len(), 1)

	l.Unpeek()
	be.Equal(t, l.Peek(), first)
	be.Equal(t, messages(dx), []string{"Unnecessary semicolon", "Unnecessary semicolon"})
	be.Equal(t, l.Consumed(), 1)

	// Nothing to forget once the lookahead is consumed.
	l.Next()
	l.Unpeek()
	be.Equal(t, l.Peek().Type, EOF)
}
