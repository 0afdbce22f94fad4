package lexer

import (
	"testing"
)

func TestNextToken_Operators(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenType
	}{
		{
			name:     "arithmetic operators",
			input:    "+ - * / % ^",
			expected: []TokenType{PLUS, MINUS, STAR, SLASH, PERCENT, CARET, EOF},
		},
		{
			name:     "comparison operators",
			input:    "== != < > <= >=",
			expected: []TokenType{EQ, NEQ, LT, GT, LEQ, GEQ, EOF},
		},
		{
			name:     "logical operators",
			input:    "& | !",
			expected: []TokenType{AND, OR, NOT, EOF},
		},
		{
			name:     "concatenation operators",
			input:    "@ @@",
			expected: []TokenType{AT, ATAT, EOF},
		},
		{
			name:     "assignment forms",
			input:    "= := =>",
			expected: []TokenType{ASSIGN, REASSIGN, ARROW, EOF},
		},
		{
			name:     "concatenation without spaces",
			input:    `"a"@@"b"@x`,
			expected: []TokenType{STRING_LIT, ATAT, STRING_LIT, AT, IDENT, EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.input)
			for i, expectedType := range tt.expected {
				tok := l.NextToken()
				if tok.Type != expectedType {
					t.Errorf("token[%d] - wrong type. expected=%q, got=%q",
						i, expectedType, tok.Type)
				}
			}
		})
	}
}

func TestNextToken_Delimiters(t *testing.T) {
	input := "( ) { } , : ; ."
	expected := []TokenType{
		LPAREN, RPAREN, LBRACE, RBRACE,
		COMMA, COLON, SEMICOLON, DOT, EOF,
	}

	l := New(input)
	for i, expectedType := range expected {
		tok := l.NextToken()
		if tok.Type != expectedType {
			t.Errorf("token[%d] - wrong type. expected=%q, got=%q",
				i, expectedType, tok.Type)
		}
	}
}

func TestNextToken_Keywords(t *testing.T) {
	tests := []struct {
		keyword  string
		expected TokenType
	}{
		{"function", FUNCTION},
		{"type", TYPE},
		{"inherits", INHERITS},
		{"new", NEW},
		{"let", LET},
		{"in", IN},
		{"if", IF},
		{"elif", ELIF},
		{"else", ELSE},
		{"while", WHILE},
		{"true", TRUE},
		{"false", FALSE},
		{"self", IDENT},
		{"Number", IDENT},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			l := New(tt.keyword)
			tok := l.NextToken()
			if tok.Type != tt.expected {
				t.Errorf("keyword %q - wrong type. expected=%q, got=%q",
					tt.keyword, tt.expected, tok.Type)
			}
			if tok.Literal != tt.keyword {
				t.Errorf("keyword %q - wrong literal. expected=%q, got=%q",
					tt.keyword, tt.keyword, tok.Literal)
			}
		})
	}
}

func TestNextToken_NumberLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0", "0"},
		{"123", "123"},
		{"3.14159", "3.14159"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input)
			tok := l.NextToken()
			if tok.Type != NUMBER_LIT {
				t.Errorf("expected NUMBER_LIT, got %q", tok.Type)
			}
			if tok.Literal != tt.expected {
				t.Errorf("expected literal %q, got %q", tt.expected, tok.Literal)
			}
		})
	}
}

func TestNextToken_NumberFollowedByDot(t *testing.T) {
	l := New("1.foo")
	expected := []TokenType{NUMBER_LIT, DOT, IDENT, EOF}
	for i, expectedType := range expected {
		tok := l.NextToken()
		if tok.Type != expectedType {
			t.Errorf("token[%d] - wrong type. expected=%q, got=%q", i, expectedType, tok.Type)
		}
	}
}

func TestNextToken_StringLiterals(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple string", input: `"hello"`, expected: "hello"},
		{name: "empty string", input: `""`, expected: ""},
		{name: "newline escape", input: `"hello\nworld"`, expected: "hello\nworld"},
		{name: "tab escape", input: `"a\tb"`, expected: "a\tb"},
		{name: "backslash escape", input: `"path\\to"`, expected: `path\to`},
		{name: "quote escape", input: `"say \"hi\""`, expected: `say "hi"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.input)
			tok := l.NextToken()
			if tok.Type != STRING_LIT {
				t.Errorf("expected STRING_LIT, got %q", tok.Type)
			}
			if tok.Literal != tt.expected {
				t.Errorf("expected literal %q, got %q", tt.expected, tok.Literal)
			}
		})
	}
}

func TestNextToken_UnterminatedString(t *testing.T) {
	l := New("\"abc\n\"")
	tok := l.NextToken()
	if tok.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %q", tok.Type)
	}
	if tok.Literal != "unterminated string" {
		t.Errorf("unexpected literal %q", tok.Literal)
	}
}

func TestNextToken_Comments(t *testing.T) {
	input := `// leading comment
let /* inline
comment */ x = 1;`
	expected := []TokenType{LET, IDENT, ASSIGN, NUMBER_LIT, SEMICOLON, EOF}

	l := New(input)
	for i, expectedType := range expected {
		tok := l.NextToken()
		if tok.Type != expectedType {
			t.Errorf("token[%d] - wrong type. expected=%q, got=%q", i, expectedType, tok.Type)
		}
	}
}

func TestNextToken_Positions(t *testing.T) {
	input := "let x = 5 in\n  x + x;"
	tests := []struct {
		tt   TokenType
		line int
		col  int
	}{
		{LET, 1, 1},
		{IDENT, 1, 5},
		{ASSIGN, 1, 7},
		{NUMBER_LIT, 1, 9},
		{IN, 1, 11},
		{IDENT, 2, 3},
		{PLUS, 2, 5},
		{IDENT, 2, 7},
		{SEMICOLON, 2, 8},
	}

	l := New(input)
	for i, want := range tests {
		tok := l.NextToken()
		if tok.Type != want.tt || tok.Line != want.line || tok.Column != want.col {
			t.Errorf("token[%d] - expected %s at %d:%d, got %s", i, want.tt, want.line, want.col, tok)
		}
	}
}

func TestTokenize_TypeDefinition(t *testing.T) {
	input := `type Point(x: Number) inherits Shape(x) { x = x; getX(): Number => self.x; }`
	tokens := New(input).Tokenize()

	expected := []TokenType{
		TYPE, IDENT, LPAREN, IDENT, COLON, IDENT, RPAREN, INHERITS, IDENT, LPAREN, IDENT, RPAREN,
		LBRACE, IDENT, ASSIGN, IDENT, SEMICOLON,
		IDENT, LPAREN, RPAREN, COLON, IDENT, ARROW, IDENT, DOT, IDENT, SEMICOLON,
		RBRACE, EOF,
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, tt := range expected {
		if tokens[i].Type != tt {
			t.Errorf("token[%d] - wrong type. expected=%q, got=%q", i, tt, tokens[i].Type)
		}
	}
}

func TestNextToken_Illegal(t *testing.T) {
	l := New("#")
	tok := l.NextToken()
	if tok.Type != ILLEGAL {
		t.Errorf("expected ILLEGAL, got %q", tok.Type)
	}
}
