package linter

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/lhaig/hulkc/internal/ast"
	"github.com/lhaig/hulkc/internal/diagnostic"
	"github.com/lhaig/hulkc/internal/lexer"
)

// Rule names, as used in the lint section of hulk.yaml
const (
	RuleNaming         = "naming"
	RuleUnusedParam    = "unused-param"
	RuleUnusedVariable = "unused-variable"
	RuleEmptyType      = "empty-type"
	RuleDeadLoop       = "dead-loop"
)

var allRules = []string{RuleNaming, RuleUnusedParam, RuleUnusedVariable, RuleEmptyType, RuleDeadLoop}

// Rules returns the names of all lint rules
func Rules() []string {
	return append([]string(nil), allRules...)
}

// ValidateRules rejects rule names the linter does not know
func ValidateRules(rules map[string]bool) error {
	for name := range rules {
		known := false
		for _, r := range allRules {
			if r == name {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown lint rule '%s' (known rules: %s)", name, strings.Join(allRules, ", "))
		}
	}
	return nil
}

// Linter performs style and best-practice checks on an AST program.
// It reports warnings (never errors) using the diagnostic system.
type Linter struct {
	prog    *ast.Program
	diag    *diagnostic.Diagnostics
	enabled func(rule string) bool
}

// Lint runs all lint rules on the given program and returns diagnostics.
func Lint(prog *ast.Program) *diagnostic.Diagnostics {
	return LintWith(prog, func(string) bool { return true })
}

// LintWith runs the rules for which enabled returns true
func LintWith(prog *ast.Program, enabled func(rule string) bool) *diagnostic.Diagnostics {
	l := &Linter{
		prog:    prog,
		diag:    diagnostic.New(),
		enabled: enabled,
	}

	l.lintTypes()
	l.lintFunctions()
	if prog.Body != nil {
		l.lintExpr(prog.Body)
	}

	return l.diag
}

func (l *Linter) on(rule string) bool {
	return l.enabled(rule)
}

// lintTypes checks all type definitions.
func (l *Linter) lintTypes() {
	for _, def := range l.prog.Types {
		if l.on(RuleNaming) && !isPascalCase(def.Name) {
			l.diag.Warningf(def.Line, def.Column, "type '%s' should use PascalCase naming", def.Name)
		}
		if l.on(RuleEmptyType) && len(def.Fields) == 0 && len(def.Methods) == 0 && len(def.Params) == 0 {
			l.diag.Warningf(def.Line, def.Column, "type '%s' has an empty body", def.Name)
		}

		// constructor parameters are visible to parent arguments, field
		// initializers and methods
		used := make(map[string]bool)
		for _, arg := range def.ParentArgs {
			collectUsedNames(arg, used)
			l.lintExpr(arg)
		}
		for _, f := range def.Fields {
			collectUsedNames(f.Value, used)
			l.lintExpr(f.Value)
		}
		for _, m := range def.Methods {
			collectUsedNames(m.Body, used)
		}
		l.checkUnusedParams(def.Name, def.Params, used)

		for _, m := range def.Methods {
			l.lintCallable(def.Name+"."+m.Name, m)
		}
	}
}

// lintFunctions checks all top-level functions.
func (l *Linter) lintFunctions() {
	for _, fn := range l.prog.Functions {
		l.lintCallable(fn.Name, fn)
	}
}

func (l *Linter) lintCallable(qualified string, fn *ast.FunctionDef) {
	if l.on(RuleNaming) && !isCamelCase(fn.Name) {
		kind := "function"
		if strings.Contains(qualified, ".") {
			kind = "method"
		}
		l.diag.Warningf(fn.Line, fn.Column, "%s '%s' should use camelCase naming", kind, fn.Name)
	}
	if fn.Body == nil {
		return
	}
	used := make(map[string]bool)
	collectUsedNames(fn.Body, used)
	l.checkUnusedParams(qualified, fn.Params, used)
	l.lintExpr(fn.Body)
}

// --- Lint rules ---

// checkUnusedParams warns about parameters that are never read.
func (l *Linter) checkUnusedParams(scopeName string, params []*ast.Param, used map[string]bool) {
	if !l.on(RuleUnusedParam) {
		return
	}
	for _, p := range params {
		if !used[p.Name] && !strings.HasPrefix(p.Name, "_") {
			l.diag.Warningf(p.Line, p.Column, "parameter '%s' in '%s' is never used", p.Name, scopeName)
		}
	}
}

// lintExpr walks an expression applying the let and loop rules.
func (l *Linter) lintExpr(expr ast.Expression) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *ast.LetExpr:
		l.checkUnusedBindings(e)
		for _, b := range e.Bindings {
			l.lintExpr(b.Value)
		}
		l.lintExpr(e.Body)
	case *ast.WhileExpr:
		if l.on(RuleDeadLoop) && isDeadLoopCondition(e.Condition) {
			l.diag.Warningf(e.Line, e.Column, "loop condition is always false; the body never runs")
		}
		l.lintExpr(e.Condition)
		l.lintExpr(e.Body)
	case *ast.IfExpr:
		l.lintExpr(e.Condition)
		l.lintExpr(e.Then)
		l.lintExpr(e.Else)
	case *ast.BlockExpr:
		for _, x := range e.Exprs {
			l.lintExpr(x)
		}
	case *ast.UnaryExpr:
		l.lintExpr(e.Operand)
	case *ast.BinaryExpr:
		l.lintExpr(e.Left)
		l.lintExpr(e.Right)
	case *ast.AssignExpr:
		l.lintExpr(e.Target)
		l.lintExpr(e.Value)
	case *ast.CallExpr:
		for _, arg := range e.Args {
			l.lintExpr(arg)
		}
	case *ast.NewExpr:
		for _, arg := range e.Args {
			l.lintExpr(arg)
		}
	case *ast.FieldAccess:
		l.lintExpr(e.Object)
	case *ast.MethodCall:
		l.lintExpr(e.Object)
		for _, arg := range e.Args {
			l.lintExpr(arg)
		}
	}
}

// checkUnusedBindings warns about let bindings never read by a later
// initializer or the body.
func (l *Linter) checkUnusedBindings(let *ast.LetExpr) {
	if !l.on(RuleUnusedVariable) {
		return
	}
	for i, b := range let.Bindings {
		used := make(map[string]bool)
		for _, later := range let.Bindings[i+1:] {
			collectUsedNames(later.Value, used)
		}
		collectUsedNames(let.Body, used)
		if !used[b.Name] && !strings.HasPrefix(b.Name, "_") {
			l.diag.Warningf(b.Line, b.Column, "variable '%s' is declared but never used", b.Name)
		}
	}
}

// --- Name collection helpers ---

// collectUsedNames collects every identifier that is read in expr. The
// target of a plain assignment is a write, not a read.
func collectUsedNames(expr ast.Expression, used map[string]bool) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *ast.Identifier:
		used[e.Name] = true
	case *ast.UnaryExpr:
		collectUsedNames(e.Operand, used)
	case *ast.BinaryExpr:
		collectUsedNames(e.Left, used)
		collectUsedNames(e.Right, used)
	case *ast.BlockExpr:
		for _, x := range e.Exprs {
			collectUsedNames(x, used)
		}
	case *ast.IfExpr:
		collectUsedNames(e.Condition, used)
		collectUsedNames(e.Then, used)
		collectUsedNames(e.Else, used)
	case *ast.WhileExpr:
		collectUsedNames(e.Condition, used)
		collectUsedNames(e.Body, used)
	case *ast.LetExpr:
		for _, b := range e.Bindings {
			collectUsedNames(b.Value, used)
		}
		collectUsedNames(e.Body, used)
	case *ast.AssignExpr:
		if fa, ok := e.Target.(*ast.FieldAccess); ok {
			collectUsedNames(fa.Object, used)
		}
		collectUsedNames(e.Value, used)
	case *ast.CallExpr:
		for _, arg := range e.Args {
			collectUsedNames(arg, used)
		}
	case *ast.NewExpr:
		for _, arg := range e.Args {
			collectUsedNames(arg, used)
		}
	case *ast.FieldAccess:
		collectUsedNames(e.Object, used)
	case *ast.MethodCall:
		collectUsedNames(e.Object, used)
		for _, arg := range e.Args {
			collectUsedNames(arg, used)
		}
	}
}

// --- Naming convention helpers ---

// isCamelCase returns true if the name starts with a lowercase letter and
// contains no underscores.
func isCamelCase(name string) bool {
	if len(name) == 0 {
		return false
	}
	runes := []rune(name)
	if !unicode.IsLower(runes[0]) {
		return false
	}
	return !strings.ContainsRune(name, '_')
}

// isPascalCase returns true if the name starts with an uppercase letter
// and contains no underscores.
func isPascalCase(name string) bool {
	if len(name) == 0 {
		return false
	}
	runes := []rune(name)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	return !strings.ContainsRune(name, '_')
}

// isDeadLoopCondition reports whether cond is the literal false
func isDeadLoopCondition(cond ast.Expression) bool {
	if u, ok := cond.(*ast.UnaryExpr); ok && u.Op == lexer.NOT {
		lit, ok := u.Operand.(*ast.BoolLit)
		return ok && lit.Value
	}
	lit, ok := cond.(*ast.BoolLit)
	return ok && !lit.Value
}
