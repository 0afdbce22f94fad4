package parser

import (
	"strconv"

	"github.com/lhaig/hulkc/internal/ast"
	"github.com/lhaig/hulkc/internal/diagnostic"
	"github.com/lhaig/hulkc/internal/lexer"
)

// New creates a new parser
func New(source string) *Parser {
	l := lexer.New(source)
	tokens := l.Tokenize()
	return &Parser{
		tokens: tokens,
		pos:    0,
		diags:  diagnostic.New(),
	}
}

// Diagnostics returns the parser's diagnostics
func (p *Parser) Diagnostics() *diagnostic.Diagnostics {
	return p.diags
}

// Parse parses the token stream into a Program AST. Type and function
// definitions come first, followed by at most one global expression.
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{Line: 1, Column: 1}

	for {
		switch p.current().Type {
		case lexer.FUNCTION:
			prog.Functions = append(prog.Functions, p.parseFunctionDef())
			continue
		case lexer.TYPE:
			prog.Types = append(prog.Types, p.parseTypeDef())
			continue
		}
		break
	}

	if !p.check(lexer.EOF) {
		prog.Body = p.parseExpression()
		p.match(lexer.SEMICOLON)
	}

	if !p.check(lexer.EOF) {
		tok := p.current()
		if tok.Type == lexer.FUNCTION || tok.Type == lexer.TYPE {
			p.errorAt(tok, "definitions must appear before the global expression")
		} else {
			p.errorAt(tok, "unexpected %s after the global expression", describe(tok))
		}
	}
	return prog
}

// parseFunctionDef parses:
//
//	function name(params): Type => expr;
//	function name(params): Type { ... }
func (p *Parser) parseFunctionDef() *ast.FunctionDef {
	tok := p.expect(lexer.FUNCTION)
	name := p.expect(lexer.IDENT)
	fn := p.parseCallable(name)
	fn.Line, fn.Column = tok.Line, tok.Column
	return fn
}

// parseCallable parses the part shared by functions and methods, after the
// name
func (p *Parser) parseCallable(name lexer.Token) *ast.FunctionDef {
	fn := &ast.FunctionDef{Name: name.Literal, Line: name.Line, Column: name.Column}
	p.expect(lexer.LPAREN)
	fn.Params = p.parseParamList()
	p.expect(lexer.RPAREN)
	if p.match(lexer.COLON) {
		fn.ReturnType = p.parseTypeRef()
	}
	fn.Body = p.parseBody()
	return fn
}

// parseBody parses `=> expr;` or a block with an optional trailing `;`
func (p *Parser) parseBody() ast.Expression {
	if p.match(lexer.ARROW) {
		body := p.parseExpression()
		p.expect(lexer.SEMICOLON)
		return body
	}
	if p.check(lexer.LBRACE) {
		body := p.parseBlock()
		p.match(lexer.SEMICOLON)
		return body
	}
	tok := p.current()
	p.errorAt(tok, "expected '=>' or '{' to start a body, got %s", describe(tok))
	p.synchronize()
	return &ast.Identifier{Name: "<error>", Line: tok.Line, Column: tok.Column}
}

// parseTypeDef parses:
//
//	type Name(params) inherits Parent(args) { members }
func (p *Parser) parseTypeDef() *ast.TypeDef {
	tok := p.expect(lexer.TYPE)
	name := p.expect(lexer.IDENT)
	def := &ast.TypeDef{Name: name.Literal, Line: tok.Line, Column: tok.Column}

	if p.match(lexer.LPAREN) {
		def.Params = p.parseParamList()
		p.expect(lexer.RPAREN)
	}
	if p.match(lexer.INHERITS) {
		def.Parent = p.parseTypeRef()
		if p.match(lexer.LPAREN) {
			def.ParentArgs = p.parseArgList()
			p.expect(lexer.RPAREN)
		}
	}

	p.expect(lexer.LBRACE)
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		start := p.pos
		p.parseMember(def)
		if p.pos == start {
			p.advance() // ensure forward progress
		}
	}
	p.expect(lexer.RBRACE)
	p.match(lexer.SEMICOLON)
	return def
}

// parseMember parses a field `name[: T] = expr;` or a method
// `name(params)[: T] => expr;`
func (p *Parser) parseMember(def *ast.TypeDef) {
	name := p.current()
	if name.Type != lexer.IDENT {
		p.errorAt(name, "expected field or method name, got %s", describe(name))
		p.synchronize()
		return
	}
	p.advance()

	if p.check(lexer.LPAREN) {
		def.Methods = append(def.Methods, p.parseCallable(name))
		return
	}

	field := &ast.FieldDef{Name: name.Literal, Line: name.Line, Column: name.Column}
	if p.match(lexer.COLON) {
		field.Annotation = p.parseTypeRef()
	}
	p.expect(lexer.ASSIGN)
	field.Value = p.parseExpression()
	p.expect(lexer.SEMICOLON)
	def.Fields = append(def.Fields, field)
}

func (p *Parser) parseParamList() []*ast.Param {
	var params []*ast.Param
	if p.check(lexer.RPAREN) {
		return params
	}
	params = append(params, p.parseParam())
	for p.match(lexer.COMMA) {
		params = append(params, p.parseParam())
	}
	return params
}

func (p *Parser) parseParam() *ast.Param {
	name := p.expect(lexer.IDENT)
	param := &ast.Param{Name: name.Literal, Line: name.Line, Column: name.Column}
	if p.match(lexer.COLON) {
		param.Type = p.parseTypeRef()
	}
	return param
}

func (p *Parser) parseTypeRef() *ast.TypeRef {
	tok := p.expect(lexer.IDENT)
	return &ast.TypeRef{Name: tok.Literal, Line: tok.Line, Column: tok.Column}
}

// parseBlock parses { e1; e2; ... }. The semicolon may be omitted after an
// expression that itself ends with a block.
func (p *Parser) parseBlock() *ast.BlockExpr {
	tok := p.expect(lexer.LBRACE)
	block := &ast.BlockExpr{Line: tok.Line, Column: tok.Column}

	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		start := p.pos
		block.Exprs = append(block.Exprs, p.parseExpression())
		if !p.match(lexer.SEMICOLON) && !p.check(lexer.RBRACE) && p.previous().Type != lexer.RBRACE {
			p.errorAt(p.current(), "expected ';' after expression, got %s", describe(p.current()))
			p.synchronize()
		}
		if p.pos == start {
			p.advance() // ensure forward progress
		}
	}
	p.expect(lexer.RBRACE)
	return block
}

// Expression parsing - precedence climbing

// Precedence levels (lowest to highest):
// 1. :=           (right-associative, parsed separately)
// 2. |
// 3. &
// 4. == !=
// 5. < > <= >=
// 6. @ @@
// 7. + -
// 8. * / %
// 9. ^            (right-associative)
// 10. unary (- !)
// 11. postfix (. ())

const (
	precNone       = 0
	precOr         = 1
	precAnd        = 2
	precEquality   = 3
	precComparison = 4
	precConcat     = 5
	precAdditive   = 6
	precMulti      = 7
	precPower      = 8
)

func tokenPrecedence(tt lexer.TokenType) int {
	switch tt {
	case lexer.OR:
		return precOr
	case lexer.AND:
		return precAnd
	case lexer.EQ, lexer.NEQ:
		return precEquality
	case lexer.LT, lexer.GT, lexer.LEQ, lexer.GEQ:
		return precComparison
	case lexer.AT, lexer.ATAT:
		return precConcat
	case lexer.PLUS, lexer.MINUS:
		return precAdditive
	case lexer.STAR, lexer.SLASH, lexer.PERCENT:
		return precMulti
	case lexer.CARET:
		return precPower
	default:
		return precNone
	}
}

func (p *Parser) parseExpression() ast.Expression {
	left := p.parsePrecedence(precOr)

	if p.check(lexer.REASSIGN) {
		op := p.advance()
		switch left.(type) {
		case *ast.Identifier, *ast.FieldAccess:
		default:
			line, col := left.Pos()
			p.diags.Errorf(line, col, "invalid assignment target")
		}
		value := p.parseExpression()
		return &ast.AssignExpr{Target: left, Value: value, Line: op.Line, Column: op.Column}
	}
	return left
}

func (p *Parser) parsePrecedence(minPrec int) ast.Expression {
	left := p.parseUnary()

	for {
		prec := tokenPrecedence(p.current().Type)
		if prec == precNone || prec < minPrec {
			break
		}

		op := p.advance()

		// Right-associative for ^
		nextPrec := prec + 1
		if op.Type == lexer.CARET {
			nextPrec = prec
		}

		right := p.parsePrecedence(nextPrec)
		left = &ast.BinaryExpr{
			Left:   left,
			Op:     op.Type,
			Right:  right,
			Line:   op.Line,
			Column: op.Column,
		}
	}

	return left
}

func (p *Parser) parseUnary() ast.Expression {
	if p.check(lexer.MINUS) || p.check(lexer.NOT) {
		op := p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{
			Op:      op.Type,
			Operand: operand,
			Line:    op.Line,
			Column:  op.Column,
		}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()

	for p.check(lexer.DOT) {
		p.advance()
		name := p.expect(lexer.IDENT)
		if p.match(lexer.LPAREN) {
			args := p.parseArgList()
			p.expect(lexer.RPAREN)
			expr = &ast.MethodCall{
				Object: expr,
				Method: name.Literal,
				Args:   args,
				Line:   name.Line,
				Column: name.Column,
			}
		} else {
			expr = &ast.FieldAccess{
				Object: expr,
				Field:  name.Literal,
				Line:   name.Line,
				Column: name.Column,
			}
		}
	}

	return expr
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.current()

	switch tok.Type {
	case lexer.NUMBER_LIT:
		p.advance()
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorAt(tok, "invalid number literal '%s'", tok.Literal)
		}
		return &ast.NumberLit{Value: value, Raw: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.STRING_LIT:
		p.advance()
		return &ast.StringLit{Value: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.TRUE:
		p.advance()
		return &ast.BoolLit{Value: true, Line: tok.Line, Column: tok.Column}
	case lexer.FALSE:
		p.advance()
		return &ast.BoolLit{Value: false, Line: tok.Line, Column: tok.Column}
	case lexer.IDENT:
		p.advance()
		if p.match(lexer.LPAREN) {
			args := p.parseArgList()
			p.expect(lexer.RPAREN)
			return &ast.CallExpr{Function: tok.Literal, Args: args, Line: tok.Line, Column: tok.Column}
		}
		return &ast.Identifier{Name: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.LPAREN:
		p.advance()
		expr := p.parseExpression()
		p.expect(lexer.RPAREN)
		return expr
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.LET:
		return p.parseLetExpr()
	case lexer.IF:
		return p.parseIfExpr()
	case lexer.WHILE:
		return p.parseWhileExpr()
	case lexer.NEW:
		return p.parseNewExpr()
	default:
		p.errorAt(tok, "unexpected %s in expression", describe(tok))
		if tok.Type != lexer.EOF && tok.Type != lexer.RBRACE && tok.Type != lexer.SEMICOLON {
			p.advance()
		}
		return &ast.Identifier{Name: "<error>", Line: tok.Line, Column: tok.Column}
	}
}

func (p *Parser) parseArgList() []ast.Expression {
	var args []ast.Expression
	if p.check(lexer.RPAREN) {
		return args
	}
	args = append(args, p.parseExpression())
	for p.match(lexer.COMMA) {
		args = append(args, p.parseExpression())
	}
	return args
}

// parseLetExpr parses: let a = 1, b: Number = 2 in body
func (p *Parser) parseLetExpr() *ast.LetExpr {
	tok := p.expect(lexer.LET)
	let := &ast.LetExpr{Line: tok.Line, Column: tok.Column}

	for {
		name := p.expect(lexer.IDENT)
		b := &ast.VarBinding{Name: name.Literal, Line: name.Line, Column: name.Column}
		if p.match(lexer.COLON) {
			b.Annotation = p.parseTypeRef()
		}
		p.expect(lexer.ASSIGN)
		b.Value = p.parseExpression()
		let.Bindings = append(let.Bindings, b)
		if !p.match(lexer.COMMA) {
			break
		}
	}

	p.expect(lexer.IN)
	let.Body = p.parseExpression()
	return let
}

// parseIfExpr parses if (c) e elif (c) e else e. Each elif becomes an
// IfExpr nested in the else branch of the previous one.
func (p *Parser) parseIfExpr() *ast.IfExpr {
	tok := p.advance() // if or elif
	p.expect(lexer.LPAREN)
	cond := p.parseExpression()
	p.expect(lexer.RPAREN)
	then := p.parseExpression()

	expr := &ast.IfExpr{Condition: cond, Then: then, Line: tok.Line, Column: tok.Column}
	switch {
	case p.check(lexer.ELIF):
		expr.Else = p.parseIfExpr()
	case p.match(lexer.ELSE):
		expr.Else = p.parseExpression()
	}
	return expr
}

func (p *Parser) parseWhileExpr() *ast.WhileExpr {
	tok := p.expect(lexer.WHILE)
	p.expect(lexer.LPAREN)
	cond := p.parseExpression()
	p.expect(lexer.RPAREN)
	body := p.parseExpression()
	return &ast.WhileExpr{Condition: cond, Body: body, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseNewExpr() *ast.NewExpr {
	tok := p.expect(lexer.NEW)
	name := p.expect(lexer.IDENT)
	expr := &ast.NewExpr{TypeName: name.Literal, Line: tok.Line, Column: tok.Column}
	p.expect(lexer.LPAREN)
	expr.Args = p.parseArgList()
	p.expect(lexer.RPAREN)
	return expr
}
