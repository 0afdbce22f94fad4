package lexer

import "strings"

// Lexer scans HULK source code and produces tokens
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // current line number
	column       int  // current column number
}

// New creates a new Lexer instance
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// readChar reads the next character and advances the position
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII code for NUL
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar returns the next character without advancing the position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// skipWhitespace skips whitespace characters
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		l.readChar()
	}
}

// skipSingleLineComment skips a single-line comment (//)
func (l *Lexer) skipSingleLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// skipMultiLineComment skips a multi-line comment (/* */)
func (l *Lexer) skipMultiLineComment() {
	for {
		if l.ch == 0 {
			break
		}
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // consume '*'
			l.readChar() // consume '/'
			break
		}
		l.readChar()
	}
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads a numeric literal. HULK has a single Number type, so
// integers and decimals share one token type.
func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[position:l.position]
}

// readString reads a string literal and returns its decoded value
func (l *Lexer) readString() (string, bool) {
	var sb strings.Builder
	for {
		l.readChar()
		if l.ch == 0 || l.ch == '\n' {
			return "", false
		}
		if l.ch == '"' {
			break
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				sb.WriteByte('\\')
				sb.WriteByte(l.ch)
			}
		} else {
			sb.WriteByte(l.ch)
		}
	}
	return sb.String(), true
}

// twoChar builds a two-character token, consuming the first character
func (l *Lexer) twoChar(tt TokenType, line, col int) Token {
	ch := l.ch
	l.readChar()
	return Token{Type: tt, Literal: string(ch) + string(l.ch), Line: line, Column: col}
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	line, col := l.line, l.column
	var tok Token

	switch l.ch {
	case '=':
		switch l.peekChar() {
		case '=':
			tok = l.twoChar(EQ, line, col)
		case '>':
			tok = l.twoChar(ARROW, line, col)
		default:
			tok = Token{Type: ASSIGN, Literal: "=", Line: line, Column: col}
		}
	case '!':
		if l.peekChar() == '=' {
			tok = l.twoChar(NEQ, line, col)
		} else {
			tok = Token{Type: NOT, Literal: "!", Line: line, Column: col}
		}
	case '<':
		if l.peekChar() == '=' {
			tok = l.twoChar(LEQ, line, col)
		} else {
			tok = Token{Type: LT, Literal: "<", Line: line, Column: col}
		}
	case '>':
		if l.peekChar() == '=' {
			tok = l.twoChar(GEQ, line, col)
		} else {
			tok = Token{Type: GT, Literal: ">", Line: line, Column: col}
		}
	case ':':
		if l.peekChar() == '=' {
			tok = l.twoChar(REASSIGN, line, col)
		} else {
			tok = Token{Type: COLON, Literal: ":", Line: line, Column: col}
		}
	case '@':
		if l.peekChar() == '@' {
			tok = l.twoChar(ATAT, line, col)
		} else {
			tok = Token{Type: AT, Literal: "@", Line: line, Column: col}
		}
	case '+':
		tok = Token{Type: PLUS, Literal: "+", Line: line, Column: col}
	case '-':
		tok = Token{Type: MINUS, Literal: "-", Line: line, Column: col}
	case '*':
		tok = Token{Type: STAR, Literal: "*", Line: line, Column: col}
	case '/':
		if l.peekChar() == '/' {
			l.skipSingleLineComment()
			return l.NextToken()
		} else if l.peekChar() == '*' {
			l.readChar() // consume '/'
			l.readChar() // consume '*'
			l.skipMultiLineComment()
			return l.NextToken()
		}
		tok = Token{Type: SLASH, Literal: "/", Line: line, Column: col}
	case '%':
		tok = Token{Type: PERCENT, Literal: "%", Line: line, Column: col}
	case '^':
		tok = Token{Type: CARET, Literal: "^", Line: line, Column: col}
	case '&':
		tok = Token{Type: AND, Literal: "&", Line: line, Column: col}
	case '|':
		tok = Token{Type: OR, Literal: "|", Line: line, Column: col}
	case '(':
		tok = Token{Type: LPAREN, Literal: "(", Line: line, Column: col}
	case ')':
		tok = Token{Type: RPAREN, Literal: ")", Line: line, Column: col}
	case '{':
		tok = Token{Type: LBRACE, Literal: "{", Line: line, Column: col}
	case '}':
		tok = Token{Type: RBRACE, Literal: "}", Line: line, Column: col}
	case ',':
		tok = Token{Type: COMMA, Literal: ",", Line: line, Column: col}
	case ';':
		tok = Token{Type: SEMICOLON, Literal: ";", Line: line, Column: col}
	case '.':
		tok = Token{Type: DOT, Literal: ".", Line: line, Column: col}
	case '"':
		str, ok := l.readString()
		if !ok {
			tok = Token{Type: ILLEGAL, Literal: "unterminated string", Line: line, Column: col}
		} else {
			tok = Token{Type: STRING_LIT, Literal: str, Line: line, Column: col}
		}
	case 0:
		return Token{Type: EOF, Literal: "", Line: line, Column: col}
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			return Token{Type: LookupIdent(ident), Literal: ident, Line: line, Column: col}
		} else if isDigit(l.ch) {
			return Token{Type: NUMBER_LIT, Literal: l.readNumber(), Line: line, Column: col}
		}
		tok = Token{Type: ILLEGAL, Literal: string(l.ch), Line: line, Column: col}
	}

	l.readChar()
	return tok
}

// Tokenize returns all tokens from the input
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			break
		}
	}
	return tokens
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
