package syntax

import (
	"strconv"

	"github.com/strager/scft/source"
)

// TokenType is the kind of a token. Fixed-text kinds are valued by their
// text, so the type doubles as the display string in diagnostics.
type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Identifiers + literals
	IDENT  TokenType = "IDENT"
	INT    TokenType = "INT"
	FLOAT  TokenType = "FLOAT"
	STRING TokenType = "STRING"

	// Blocks
	LBRACE TokenType = "{"
	RBRACE TokenType = "}"
	LPAREN TokenType = "("
	RPAREN TokenType = ")"

	// Statement keywords
	MOD      TokenType = "mod"
	TY       TokenType = "ty"
	IF       TokenType = "if"
	ELSE     TokenType = "else"
	FOR      TokenType = "for"
	BREAK    TokenType = "break"
	CONTINUE TokenType = "continue"
	RETURN   TokenType = "return"
	TRUE     TokenType = "true"
	FALSE    TokenType = "false"

	// Type keywords
	VOID_TYPE   TokenType = "Void"
	MOD_TYPE    TokenType = "Mod"
	TY_TYPE     TokenType = "Ty"
	INT_TYPE    TokenType = "Int"
	DOUBLE_TYPE TokenType = "Double"
	STRING_TYPE TokenType = "String"
	BOOL_TYPE   TokenType = "Bool"

	// Declarations
	COLON        TokenType = ":"
	ASSIGN       TokenType = "="
	CONST_ASSIGN TokenType = "=>"

	// Conditionals
	NOT     TokenType = "!"
	OR      TokenType = "||"
	AND     TokenType = "&&"
	XOR     TokenType = "$$"
	EQ      TokenType = "=="
	NOT_EQ  TokenType = "!="
	LT      TokenType = "<"
	LE      TokenType = "<="
	GT      TokenType = ">"
	GE      TokenType = ">="
	BIT_NOT TokenType = "~"
	BIT_OR  TokenType = "|"
	BIT_AND TokenType = "&"
	BIT_XOR TokenType = "$"
	SHL     TokenType = "<<"
	SHR     TokenType = ">>"

	// Operators
	DOT         TokenType = "."
	PLUS        TokenType = "+"
	MINUS       TokenType = "-"
	ASTERISK    TokenType = "*"
	SLASH       TokenType = "/"
	PERCENT     TokenType = "%"
	CARET       TokenType = "^"
	PLUS_PLUS   TokenType = "++"
	PLUS_EQ     TokenType = "+="
	MINUS_MINUS TokenType = "--"
	MINUS_EQ    TokenType = "-="
	MUL_EQ      TokenType = "*="
	DIV_EQ      TokenType = "/="
	MOD_EQ      TokenType = "%="

	// Functions
	ARROW         TokenType = "->"
	SINGLE_RETURN TokenType = "::"

	COMMA TokenType = ","
	DEREF TokenType = ".*"
)

var keywords = map[string]TokenType{
	"mod":      MOD,
	"ty":       TY,
	"if":       IF,
	"else":     ELSE,
	"for":      FOR,
	"break":    BREAK,
	"continue": CONTINUE,
	"return":   RETURN,
	"true":     TRUE,
	"false":    FALSE,
	"Void":     VOID_TYPE,
	"Mod":      MOD_TYPE,
	"Ty":       TY_TYPE,
	"Int":      INT_TYPE,
	"Double":   DOUBLE_TYPE,
	"String":   STRING_TYPE,
	"Bool":     BOOL_TYPE,
}

// LookupIdent classifies an identifier-shaped word as a keyword or IDENT.
func LookupIdent(word string) TokenType {
	if typ, ok := keywords[word]; ok {
		return typ
	}
	return IDENT
}

// IsTypeKeyword reports whether typ names a built-in type.
func (typ TokenType) IsTypeKeyword() bool {
	switch typ {
	case VOID_TYPE, MOD_TYPE, TY_TYPE, INT_TYPE, DOUBLE_TYPE, STRING_TYPE, BOOL_TYPE:
		return true
	}
	return false
}

// HasFixedText reports whether every token of this type has the same text.
func (typ TokenType) HasFixedText() bool {
	switch typ {
	case ILLEGAL, EOF, IDENT, INT, FLOAT, STRING:
		return false
	}
	return true
}

func (typ TokenType) String() string {
	switch typ {
	case IDENT:
		return "identifier"
	case INT:
		return "integer literal"
	case FLOAT:
		return "floating point literal"
	case STRING:
		return "string literal"
	case EOF:
		return "end of file"
	case ILLEGAL:
		return "unknown token"
	}
	return string(typ)
}

// Value is the decoded payload of a literal or identifier token.
type Value interface {
	isValue()
}

// IntValue is the value of an INT token.
type IntValue int64

// FloatValue is the value of a FLOAT token.
type FloatValue float64

// TextValue is the text of an IDENT token or the contents of a STRING token
// without the quotes.
type TextValue string

func (IntValue) isValue()   {}
func (FloatValue) isValue() {}
func (TextValue) isValue()  {}

// Token is an immutable lexeme.
type Token struct {
	Type  TokenType
	Span  source.Span
	Value Value
}

// Text returns the identifier or string contents of the token, or "".
func (t Token) Text() string {
	if v, ok := t.Value.(TextValue); ok {
		return string(v)
	}
	return ""
}

// Int returns the integer payload, or 0.
func (t Token) Int() int64 {
	if v, ok := t.Value.(IntValue); ok {
		return int64(v)
	}
	return 0
}

// Float returns the floating point payload, or 0.
func (t Token) Float() float64 {
	if v, ok := t.Value.(FloatValue); ok {
		return float64(v)
	}
	return 0
}

// Describe renders the token the way "found X instead" messages show it.
func (t Token) Describe() string {
	switch t.Type {
	case IDENT:
		return strconv.Quote(t.Text())
	case INT:
		return strconv.FormatInt(t.Int(), 10)
	case FLOAT:
		return strconv.FormatFloat(t.Float(), 'f', -1, 64)
	case STRING:
		return "String literal"
	}
	return t.Type.String()
}
