package lexer

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Literals
	IDENT      // x, Point, self
	NUMBER_LIT // 42, 3.14
	STRING_LIT // "hello"

	// Keywords
	FUNCTION
	TYPE
	INHERITS
	NEW
	LET
	IN
	IF
	ELIF
	ELSE
	WHILE
	TRUE
	FALSE

	// Operators
	PLUS     // +
	MINUS    // -
	STAR     // *
	SLASH    // /
	PERCENT  // %
	CARET    // ^
	AT       // @
	ATAT     // @@
	EQ       // ==
	NEQ      // !=
	LT       // <
	GT       // >
	LEQ      // <=
	GEQ      // >=
	AND      // &
	OR       // |
	NOT      // !
	ASSIGN   // =
	REASSIGN // :=
	ARROW    // =>

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	COMMA     // ,
	COLON     // :
	SEMICOLON // ;
	DOT       // .
)

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

var tokenNames = map[TokenType]string{
	ILLEGAL:    "ILLEGAL",
	EOF:        "EOF",
	IDENT:      "IDENT",
	NUMBER_LIT: "NUMBER_LIT",
	STRING_LIT: "STRING_LIT",
	FUNCTION:   "FUNCTION",
	TYPE:       "TYPE",
	INHERITS:   "INHERITS",
	NEW:        "NEW",
	LET:        "LET",
	IN:         "IN",
	IF:         "IF",
	ELIF:       "ELIF",
	ELSE:       "ELSE",
	WHILE:      "WHILE",
	TRUE:       "TRUE",
	FALSE:      "FALSE",
	PLUS:       "+",
	MINUS:      "-",
	STAR:       "*",
	SLASH:      "/",
	PERCENT:    "%",
	CARET:      "^",
	AT:         "@",
	ATAT:       "@@",
	EQ:         "==",
	NEQ:        "!=",
	LT:         "<",
	GT:         ">",
	LEQ:        "<=",
	GEQ:        ">=",
	AND:        "&",
	OR:         "|",
	NOT:        "!",
	ASSIGN:     "=",
	REASSIGN:   ":=",
	ARROW:      "=>",
	LPAREN:     "(",
	RPAREN:     ")",
	LBRACE:     "{",
	RBRACE:     "}",
	COMMA:      ",",
	COLON:      ":",
	SEMICOLON:  ";",
	DOT:        ".",
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Literal, t.Line, t.Column)
}

// keywords maps keyword strings to their token types
var keywords = map[string]TokenType{
	"function": FUNCTION,
	"type":     TYPE,
	"inherits": INHERITS,
	"new":      NEW,
	"let":      LET,
	"in":       IN,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"while":    WHILE,
	"true":     TRUE,
	"false":    FALSE,
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
