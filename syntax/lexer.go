package syntax

import (
	"fmt"
	"log/slog"
	"math"
	"unicode/utf8"

	"github.com/strager/scft/diag"
	"github.com/strager/scft/source"
)

// Options configures a Lexer and Parser. The zero value is the default.
type Options struct {
	// SuppressSemicolonWarnings disables the "Unnecessary semicolon" warning.
	SuppressSemicolonWarnings bool
	// Logger receives debug tracing. Nil discards.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Lexer turns a source buffer into tokens on demand. Tokens are cached so
// Last can return the previously consumed one.
type Lexer struct {
	src  *source.Buffer
	text string
	dx   *diag.Diagnostics
	opts Options

	pos      int // next byte to scan
	peekFrom int // pos before the lookahead token was scanned
	tokens   []Token
	cursor   int // index of the lookahead token in tokens
}

// NewLexer creates a lexer over src which reports problems into dx.
func NewLexer(src *source.Buffer, dx *diag.Diagnostics, opts Options) *Lexer {
	return &Lexer{src: src, text: src.Text, dx: dx, opts: opts}
}

// Peek returns the lookahead token without consuming it.
func (l *Lexer) Peek() Token {
	if l.cursor == len(l.tokens) {
		l.peekFrom = l.pos
		l.tokens = append(l.tokens, l.scan())
	}
	return l.tokens[l.cursor]
}

// Unpeek forgets an unconsumed lookahead token. The next Peek scans it
// again and reports its diagnostics again.
func (l *Lexer) Unpeek() {
	if l.cursor < len(l.tokens) {
		l.tokens = l.tokens[:l.cursor]
		l.pos = l.peekFrom
	}
}

// Next consumes and returns the lookahead token. The EOF token is never
// consumed, so repeated calls keep returning it.
func (l *Lexer) Next() Token {
	tok := l.Peek()
	if tok.Type != EOF {
		l.cursor++
	}
	return tok
}

// Last returns the most recently consumed token.
//
// Panics if nothing has been consumed yet.
func (l *Lexer) Last() Token {
	if l.cursor == 0 {
		panic("syntax: Last called before any token was consumed")
	}
	return l.tokens[l.cursor-1]
}

// Consumed returns how many tokens Next has consumed.
func (l *Lexer) Consumed() int {
	return l.cursor
}

// All lexes the remaining input and returns every token up to and
// including EOF.
func (l *Lexer) All() []Token {
	var toks []Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

func (l *Lexer) peekByte(offset int) byte {
	if l.pos+offset >= len(l.text) {
		return 0
	}
	return l.text[l.pos+offset]
}

func (l *Lexer) make(typ TokenType, start int) Token {
	return Token{Type: typ, Span: source.Span{Begin: start, End: l.pos}}
}

// op consumes one character, or two if the second matches an alternative.
func (l *Lexer) op(single TokenType, alts ...alt) Token {
	start := l.pos
	next := l.peekByte(1)
	for _, a := range alts {
		if next == a.c {
			l.pos += 2
			return l.make(a.typ, start)
		}
	}
	l.pos++
	return l.make(single, start)
}

type alt struct {
	c   byte
	typ TokenType
}

func (l *Lexer) scan() Token {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.text) {
			return Token{Type: EOF, Span: source.Span{Begin: len(l.text), End: len(l.text)}}
		}

		start := l.pos
		c := l.text[l.pos]
		switch c {
		case ';':
			if !l.opts.SuppressSemicolonWarnings {
				l.dx.WarningAt("Unnecessary semicolon", source.Span{Begin: start, End: start + 1}).
					WithFix("Remove ;")
			}
			l.pos++
			continue
		case '{':
			return l.op(LBRACE)
		case '}':
			return l.op(RBRACE)
		case '(':
			return l.op(LPAREN)
		case ')':
			return l.op(RPAREN)
		case ',':
			return l.op(COMMA)
		case '^':
			return l.op(CARET)
		case '~':
			return l.op(BIT_NOT)
		case ':':
			return l.op(COLON, alt{':', SINGLE_RETURN})
		case '=':
			return l.op(ASSIGN, alt{'>', CONST_ASSIGN}, alt{'=', EQ})
		case '|':
			return l.op(BIT_OR, alt{'|', OR})
		case '&':
			return l.op(BIT_AND, alt{'&', AND})
		case '$':
			return l.op(BIT_XOR, alt{'$', XOR})
		case '!':
			return l.op(NOT, alt{'=', NOT_EQ})
		case '<':
			return l.op(LT, alt{'=', LE}, alt{'<', SHL})
		case '>':
			return l.op(GT, alt{'=', GE}, alt{'>', SHR})
		case '.':
			return l.op(DOT, alt{'*', DEREF})
		case '+':
			return l.op(PLUS, alt{'=', PLUS_EQ}, alt{'+', PLUS_PLUS})
		case '-':
			return l.op(MINUS, alt{'=', MINUS_EQ}, alt{'-', MINUS_MINUS}, alt{'>', ARROW})
		case '%':
			return l.op(PERCENT, alt{'=', MOD_EQ})
		case '*':
			if l.peekByte(1) == '/' {
				l.dx.ErrorAt("Invalid closing of block comment", source.Span{Begin: start, End: start + 2})
				l.pos += 2
				continue
			}
			return l.op(ASTERISK, alt{'=', MUL_EQ})
		case '/':
			switch l.peekByte(1) {
			case '/':
				l.skipLineComment()
				continue
			case '*':
				l.skipBlockComment()
				continue
			}
			return l.op(SLASH, alt{'=', DIV_EQ})
		case '"':
			return l.lexString()
		}

		if isLetter(c) {
			return l.lexIdentifier()
		}
		if isDigit(c) {
			return l.lexNumber()
		}

		r, size := utf8.DecodeRuneInString(l.text[l.pos:])
		l.dx.ErrorAt(fmt.Sprintf("Unexpected character %q", r), source.Span{Begin: start, End: start + size})
		l.pos += size
	}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.text) && source.IsWhitespace(l.text[l.pos]) {
		l.pos++
	}
}

func (l *Lexer) skipLineComment() {
	for l.pos < len(l.text) && l.text[l.pos] != '\n' {
		l.pos++
	}
}

// skipBlockComment skips /* ... */. A backslash escapes the next character.
func (l *Lexer) skipBlockComment() {
	start := l.pos
	l.pos += 2 // consume "/*"
	for {
		if l.pos >= len(l.text) {
			l.dx.ErrorAt("Unterminated block comment", source.Span{Begin: start, End: start + 2})
			l.pos = len(l.text)
			return
		}
		switch {
		case l.text[l.pos] == '\\':
			l.pos += 2
		case l.text[l.pos] == '*' && l.peekByte(1) == '/':
			l.pos += 2
			return
		default:
			l.pos++
		}
	}
}

func (l *Lexer) lexString() Token {
	start := l.pos
	l.pos++ // consume opening quote
	for {
		if l.pos >= len(l.text) {
			l.dx.ErrorAt("Unterminated string literal", source.Span{Begin: start, End: start + 1})
			l.pos = len(l.text)
			tok := l.make(STRING, start)
			tok.Value = TextValue(l.text[start+1:])
			return tok
		}
		switch l.text[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case '"':
			l.pos++
			tok := l.make(STRING, start)
			tok.Value = TextValue(l.text[start+1 : l.pos-1])
			return tok
		}
		l.pos++
	}
}

func (l *Lexer) lexIdentifier() Token {
	start := l.pos
	for l.pos < len(l.text) && (isLetter(l.text[l.pos]) || isDigit(l.text[l.pos])) {
		l.pos++
	}
	word := l.text[start:l.pos]
	tok := l.make(LookupIdent(word), start)
	if tok.Type == IDENT {
		tok.Value = TextValue(word)
	}
	return tok
}

// lexNumber scans an integer or floating point literal. Problems are
// recorded and scanning continues to the end of the literal.
func (l *Lexer) lexNumber() Token {
	start := l.pos
	base := 10
	if l.text[l.pos] == '0' {
		switch l.peekByte(1) {
		case 'b':
			base = 2
		case 'o':
			base = 8
		case 'x':
			base = 16
		}
		if base != 10 {
			l.pos += 2 // consume prefix
		}
	}
	digitsStart := l.pos

	var number uint64
	overflow := false
	point := false
	divisor := 1.0
	sawDigit := false

	for l.pos < len(l.text) {
		c := l.text[l.pos]
		here := source.Span{Begin: l.pos, End: l.pos + 1}

		if c == '_' {
			prev := l.text[l.pos-1]
			next := l.peekByte(1)
			if prev == '.' || next == '.' {
				l.dx.ErrorAt("Numeric separator _ is not allowed next to a decimal point", here)
			} else if l.pos == digitsStart {
				l.dx.ErrorAt("Numeric separator _ is not allowed at the start of a literal", here)
			} else if !isDigit(next) && next != '_' && !(base == 16 && isHexLetter(next)) {
				l.dx.ErrorAt("Numeric separator _ is not allowed at the end of a literal", here)
			}
			l.pos++
			continue
		}

		if c == '.' {
			next := l.peekByte(1)
			if !isDigit(next) && next != '_' && !(base == 16 && isHexLetter(next)) {
				break
			}
			if point {
				l.dx.ErrorAt(fmt.Sprintf("Numeric literal has too many decimal points %q", l.text[start:l.pos+1]), here)
			}
			point = true
			l.pos++
			continue
		}

		val := digitValue(c)
		if val < 0 || (val >= 10 && base != 16) {
			break
		}
		if val >= base {
			l.dx.ErrorAt(fmt.Sprintf("%d is an invalid digit value in base %d", val, base), here)
			l.pos++
			continue
		}

		sawDigit = true
		if number > (math.MaxUint64-uint64(val))/uint64(base) {
			overflow = true
		} else {
			number = number*uint64(base) + uint64(val)
		}
		if point {
			divisor *= float64(base)
		}
		l.pos++
	}

	if base != 10 && !sawDigit {
		l.dx.ErrorAt("Numeric literal has no digits after the base prefix", source.Span{Begin: start, End: l.pos})
	}

	span := source.Span{Begin: start, End: l.pos}
	if point {
		if overflow || number > 1<<53 {
			l.dx.WarningAt("Floating point literal loses precision", span)
		}
		tok := l.make(FLOAT, start)
		tok.Value = FloatValue(float64(number) / divisor)
		return tok
	}

	if overflow || number > math.MaxInt32 {
		l.dx.WarningAt("Integer literal exceeds the 32-bit signed range", span)
	}
	if overflow || number > math.MaxInt64 {
		number = math.MaxInt64
	}
	tok := l.make(INT, start)
	tok.Value = IntValue(int64(number))
	return tok
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '\''
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexLetter(c byte) bool {
	return (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// digitValue returns the value of a hex or decimal digit, or -1.
func digitValue(c byte) int {
	switch {
	case isDigit(c):
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
