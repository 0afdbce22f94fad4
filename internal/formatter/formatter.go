package formatter

import (
	"fmt"
	"strings"

	"github.com/lhaig/hulkc/internal/ast"
	"github.com/lhaig/hulkc/internal/lexer"
)

// Format takes an AST Program and returns canonical HULK source code.
// Parsing the output yields the same tree.
func Format(prog *ast.Program) string {
	f := &formatter{}
	f.formatProgram(prog)
	return f.sb.String()
}

type formatter struct {
	sb     strings.Builder
	indent int
}

// --- helpers ---

func (f *formatter) emitLine(s string) {
	if s == "" {
		f.sb.WriteString("\n")
	} else {
		f.sb.WriteString(f.indentStr())
		f.sb.WriteString(s)
		f.sb.WriteString("\n")
	}
}

func (f *formatter) emitLinef(format string, args ...any) {
	f.emitLine(fmt.Sprintf(format, args...))
}

func (f *formatter) incIndent() { f.indent++ }
func (f *formatter) decIndent() { f.indent-- }

func (f *formatter) indentStr() string {
	return strings.Repeat("    ", f.indent)
}

// --- program-level ---

// Definitions come first: types, then functions, then the global expression.
func (f *formatter) formatProgram(prog *ast.Program) {
	first := true
	separate := func() {
		if !first {
			f.emitLine("")
		}
		first = false
	}

	for _, td := range prog.Types {
		separate()
		f.formatTypeDef(td)
	}
	for _, fn := range prog.Functions {
		separate()
		f.formatCallable("function "+fn.Name, fn)
	}
	if prog.Body != nil {
		separate()
		f.emitLinef("%s;", f.formatExpr(prog.Body))
	}
}

func (f *formatter) formatTypeDef(td *ast.TypeDef) {
	header := "type " + td.Name
	if len(td.Params) > 0 {
		header += formatParams(td.Params)
	}
	if td.Parent != nil {
		header += " inherits " + td.Parent.Name
		if len(td.ParentArgs) > 0 {
			header += "(" + f.formatArgs(td.ParentArgs) + ")"
		}
	}

	if len(td.Fields) == 0 && len(td.Methods) == 0 {
		f.emitLine(header + " {}")
		return
	}

	f.emitLine(header + " {")
	f.incIndent()
	for _, fd := range td.Fields {
		name := fd.Name
		if fd.Annotation != nil {
			name += ": " + fd.Annotation.Name
		}
		f.emitLinef("%s = %s;", name, f.formatExpr(fd.Value))
	}
	for i, m := range td.Methods {
		if i > 0 || len(td.Fields) > 0 {
			f.emitLine("")
		}
		f.formatCallable(m.Name, m)
	}
	f.decIndent()
	f.emitLine("}")
}

// formatCallable writes a function or method. Block bodies drop the arrow.
func (f *formatter) formatCallable(head string, fn *ast.FunctionDef) {
	sig := head + formatParams(fn.Params)
	if fn.ReturnType != nil {
		sig += ": " + fn.ReturnType.Name
	}
	if block, ok := fn.Body.(*ast.BlockExpr); ok {
		f.emitLinef("%s %s", sig, f.formatBlock(block))
		return
	}
	f.emitLinef("%s => %s;", sig, f.formatExpr(fn.Body))
}

func formatParams(params []*ast.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name
		if p.Type != nil {
			parts[i] += ": " + p.Type.Name
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// --- expressions ---

// Precedence levels (higher binds tighter), matching the parser:
//
//	1: |
//	2: &
//	3: == !=
//	4: < > <= >=
//	5: @ @@
//	6: + -
//	7: * / %
//	8: ^ (right-associative)
//	9: unary - !
//	10: postfix . and primaries
const (
	precOpen    = 0
	precUnary   = 9
	precPostfix = 10
)

func (f *formatter) formatExpr(e ast.Expression) string {
	return f.formatExprPrec(e, precOpen)
}

// formatExprPrec formats an expression, wrapping in parens if needed based
// on parent precedence. let, if, while and := extend as far right as
// possible, so they are wrapped whenever they are an operand.
func (f *formatter) formatExprPrec(e ast.Expression, parentPrec int) string {
	switch expr := e.(type) {
	case *ast.BinaryExpr:
		prec := precedence(expr.Op)
		leftPrec, rightPrec := prec, prec+1 // left-associative
		if expr.Op == lexer.CARET {
			leftPrec, rightPrec = prec+1, prec
		}
		left := f.formatExprPrec(expr.Left, leftPrec)
		right := f.formatExprPrec(expr.Right, rightPrec)
		result := fmt.Sprintf("%s %s %s", left, expr.Op, right)
		if prec < parentPrec {
			return "(" + result + ")"
		}
		return result

	case *ast.UnaryExpr:
		result := expr.Op.String() + f.formatExprPrec(expr.Operand, precUnary)
		if precUnary < parentPrec {
			return "(" + result + ")"
		}
		return result

	case *ast.CallExpr:
		return fmt.Sprintf("%s(%s)", expr.Function, f.formatArgs(expr.Args))

	case *ast.NewExpr:
		return fmt.Sprintf("new %s(%s)", expr.TypeName, f.formatArgs(expr.Args))

	case *ast.MethodCall:
		obj := f.formatExprPrec(expr.Object, precPostfix)
		return fmt.Sprintf("%s.%s(%s)", obj, expr.Method, f.formatArgs(expr.Args))

	case *ast.FieldAccess:
		obj := f.formatExprPrec(expr.Object, precPostfix)
		return fmt.Sprintf("%s.%s", obj, expr.Field)

	case *ast.Identifier:
		return expr.Name

	case *ast.NumberLit:
		return expr.Raw

	case *ast.StringLit:
		return quote(expr.Value)

	case *ast.BoolLit:
		if expr.Value {
			return "true"
		}
		return "false"

	case *ast.BlockExpr:
		return f.formatBlock(expr)

	case *ast.AssignExpr:
		target := f.formatExprPrec(expr.Target, precPostfix)
		return wrapOpen(fmt.Sprintf("%s := %s", target, f.formatExpr(expr.Value)), parentPrec)

	case *ast.LetExpr:
		bindings := make([]string, len(expr.Bindings))
		for i, b := range expr.Bindings {
			name := b.Name
			if b.Annotation != nil {
				name += ": " + b.Annotation.Name
			}
			bindings[i] = fmt.Sprintf("%s = %s", name, f.formatExpr(b.Value))
		}
		result := fmt.Sprintf("let %s in %s", strings.Join(bindings, ", "), f.formatExpr(expr.Body))
		return wrapOpen(result, parentPrec)

	case *ast.IfExpr:
		return wrapOpen(f.formatIf(expr), parentPrec)

	case *ast.WhileExpr:
		result := fmt.Sprintf("while (%s) %s", f.formatExpr(expr.Condition), f.formatExpr(expr.Body))
		return wrapOpen(result, parentPrec)

	default:
		return "<unknown>"
	}
}

// formatIf prints nested conditionals in the else branch as elif chains
func (f *formatter) formatIf(expr *ast.IfExpr) string {
	var sb strings.Builder
	keyword := "if"
	for {
		then := f.formatExpr(expr.Then)
		if expr.Else != nil && isOpen(expr.Then) {
			then = "(" + then + ")"
		}
		fmt.Fprintf(&sb, "%s (%s) %s", keyword, f.formatExpr(expr.Condition), then)

		next, ok := expr.Else.(*ast.IfExpr)
		if !ok {
			break
		}
		expr = next
		keyword = " elif"
	}
	if expr.Else != nil {
		sb.WriteString(" else " + f.formatExpr(expr.Else))
	}
	return sb.String()
}

func (f *formatter) formatBlock(block *ast.BlockExpr) string {
	if len(block.Exprs) == 0 {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	f.incIndent()
	for _, e := range block.Exprs {
		sb.WriteString(f.indentStr())
		sb.WriteString(f.formatExpr(e))
		sb.WriteString(";\n")
	}
	f.decIndent()
	sb.WriteString(f.indentStr())
	sb.WriteString("}")
	return sb.String()
}

func (f *formatter) formatArgs(args []ast.Expression) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = f.formatExpr(arg)
	}
	return strings.Join(parts, ", ")
}

func isOpen(e ast.Expression) bool {
	switch e.(type) {
	case *ast.LetExpr, *ast.IfExpr, *ast.WhileExpr, *ast.AssignExpr:
		return true
	}
	return false
}

func wrapOpen(s string, parentPrec int) string {
	if parentPrec > precOpen {
		return "(" + s + ")"
	}
	return s
}

// quote escapes the characters the lexer unescapes
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}

// --- operator precedence ---

func precedence(op lexer.TokenType) int {
	switch op {
	case lexer.OR:
		return 1
	case lexer.AND:
		return 2
	case lexer.EQ, lexer.NEQ:
		return 3
	case lexer.LT, lexer.GT, lexer.LEQ, lexer.GEQ:
		return 4
	case lexer.AT, lexer.ATAT:
		return 5
	case lexer.PLUS, lexer.MINUS:
		return 6
	case lexer.STAR, lexer.SLASH, lexer.PERCENT:
		return 7
	case lexer.CARET:
		return 8
	default:
		return 0
	}
}
