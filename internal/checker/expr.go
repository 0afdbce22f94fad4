package checker

import (
	"fmt"

	"github.com/lhaig/hulkc/internal/ast"
	"github.com/lhaig/hulkc/internal/diagnostic"
	"github.com/lhaig/hulkc/internal/lexer"
	"github.com/lhaig/hulkc/internal/scope"
	"github.com/lhaig/hulkc/internal/types"
)

// storeType records the resolved type on the node and returns it
func (c *Checker) storeType(expr ast.Expression, t ast.TypeID) ast.TypeID {
	expr.SetType(t)
	return t
}

// checkExpression visits expr bottom-up in sc. A failed check reports once
// and yields types.Error; parents seeing types.Error stay silent.
func (c *Checker) checkExpression(expr ast.Expression, sc *scope.Scope) ast.TypeID {
	switch e := expr.(type) {
	case *ast.NumberLit:
		return c.storeType(expr, types.Number)
	case *ast.StringLit:
		return c.storeType(expr, types.String)
	case *ast.BoolLit:
		return c.storeType(expr, types.Bool)
	case *ast.UnaryExpr:
		return c.storeType(expr, c.checkUnaryExpr(e, sc))
	case *ast.BinaryExpr:
		return c.storeType(expr, c.checkBinaryExpr(e, sc))
	case *ast.BlockExpr:
		return c.storeType(expr, c.checkBlockExpr(e, sc))
	case *ast.IfExpr:
		return c.storeType(expr, c.checkIfExpr(e, sc))
	case *ast.WhileExpr:
		return c.storeType(expr, c.checkWhileExpr(e, sc))
	case *ast.LetExpr:
		return c.storeType(expr, c.checkLetExpr(e, sc))
	case *ast.Identifier:
		return c.storeType(expr, c.checkIdentifier(e, sc))
	case *ast.AssignExpr:
		return c.storeType(expr, c.checkAssignExpr(e, sc))
	case *ast.CallExpr:
		return c.storeType(expr, c.checkCallExpr(e, sc))
	case *ast.NewExpr:
		return c.storeType(expr, c.checkNewExpr(e, sc))
	case *ast.FieldAccess:
		return c.storeType(expr, c.checkFieldAccess(e, sc))
	case *ast.MethodCall:
		return c.storeType(expr, c.checkMethodCall(e, sc))
	default:
		panic(fmt.Sprintf("internal error: unexpected expression %T", expr))
	}
}

func (c *Checker) checkUnaryExpr(expr *ast.UnaryExpr, sc *scope.Scope) ast.TypeID {
	operand := c.checkExpression(expr.Operand, sc)
	if operand == types.Error {
		return types.Error
	}

	var want ast.TypeID
	switch expr.Op {
	case lexer.NOT:
		want = types.Bool
	case lexer.MINUS:
		want = types.Number
	default:
		panic(fmt.Sprintf("internal error: unknown unary operator %s", expr.Op))
	}
	if !c.types.Conforms(operand, want) {
		c.errorf(expr, diagnostic.TypeMismatch, "operator '%s' expects %s, got %s",
			expr.Op, c.name(want), c.name(operand))
		return types.Error
	}
	return want
}

func (c *Checker) checkBinaryExpr(expr *ast.BinaryExpr, sc *scope.Scope) ast.TypeID {
	left := c.checkExpression(expr.Left, sc)
	right := c.checkExpression(expr.Right, sc)
	if left == types.Error || right == types.Error {
		return types.Error
	}

	switch expr.Op {
	case lexer.PLUS, lexer.MINUS, lexer.STAR, lexer.SLASH, lexer.PERCENT, lexer.CARET:
		return c.expectOperands(expr, left, right, types.Number, types.Number)

	case lexer.LT, lexer.GT, lexer.LEQ, lexer.GEQ:
		return c.expectOperands(expr, left, right, types.Number, types.Bool)

	case lexer.AND, lexer.OR:
		return c.expectOperands(expr, left, right, types.Bool, types.Bool)

	case lexer.EQ, lexer.NEQ:
		if !c.types.Conforms(left, right) && !c.types.Conforms(right, left) {
			c.errorf(expr, diagnostic.TypeMismatch, "cannot compare %s with %s", c.name(left), c.name(right))
			return types.Error
		}
		return types.Bool

	case lexer.AT, lexer.ATAT:
		if !c.types.Conforms(left, types.String) {
			c.errorf(expr, diagnostic.TypeMismatch, "operator '%s' expects a String on the left, got %s",
				expr.Op, c.name(left))
			return types.Error
		}
		return types.String

	default:
		panic(fmt.Sprintf("internal error: unknown binary operator %s", expr.Op))
	}
}

func (c *Checker) expectOperands(expr *ast.BinaryExpr, left, right, operand, result ast.TypeID) ast.TypeID {
	if !c.types.Conforms(left, operand) || !c.types.Conforms(right, operand) {
		c.errorf(expr, diagnostic.TypeMismatch, "operator '%s' expects %s operands, got %s and %s",
			expr.Op, c.name(operand), c.name(left), c.name(right))
		return types.Error
	}
	return result
}

func (c *Checker) checkBlockExpr(expr *ast.BlockExpr, sc *scope.Scope) ast.TypeID {
	last := types.Null
	for _, e := range expr.Exprs {
		last = c.checkExpression(e, sc)
	}
	return last
}

// checkCondition reports a non-Bool condition and returns false when the
// enclosing expression must be poisoned
func (c *Checker) checkCondition(cond ast.Expression, sc *scope.Scope) bool {
	t := c.checkExpression(cond, sc)
	if t == types.Error {
		return false
	}
	if !c.types.Conforms(t, types.Bool) {
		c.errorf(cond, diagnostic.TypeMismatch, "condition must be Bool, got %s", c.name(t))
		return false
	}
	return true
}

func (c *Checker) checkIfExpr(expr *ast.IfExpr, sc *scope.Scope) ast.TypeID {
	condOK := c.checkCondition(expr.Condition, sc)
	thenType := c.checkExpression(expr.Then, sc)
	if expr.Else == nil {
		if !condOK {
			return types.Error
		}
		return thenType
	}
	elseType := c.checkExpression(expr.Else, sc)

	if !condOK || thenType == types.Error || elseType == types.Error {
		return types.Error
	}
	switch {
	case c.types.Conforms(thenType, elseType):
		return elseType
	case c.types.Conforms(elseType, thenType):
		return thenType
	default:
		c.errorf(expr, diagnostic.TypeMismatch, "branches of conditional have incompatible types %s and %s",
			c.name(thenType), c.name(elseType))
		return types.Error
	}
}

func (c *Checker) checkWhileExpr(expr *ast.WhileExpr, sc *scope.Scope) ast.TypeID {
	condOK := c.checkCondition(expr.Condition, sc)
	body := c.checkExpression(expr.Body, sc)
	if !condOK {
		return types.Error
	}
	return body
}

// checkLetExpr checks each initializer before its variable is inserted, so
// a binding never sees itself
func (c *Checker) checkLetExpr(expr *ast.LetExpr, sc *scope.Scope) ast.TypeID {
	letScope := scope.New(sc)
	for _, b := range expr.Bindings {
		valueType := c.checkExpression(b.Value, letScope)
		varType := valueType
		bindingType := valueType
		if b.Annotation != nil {
			varType = c.resolveTypeRef(b.Annotation, types.Object)
			bindingType = varType
			if !c.types.Conforms(valueType, varType) {
				c.errorf(b.Value, diagnostic.TypeMismatch, "cannot bind %s to '%s' declared as %s",
					c.name(valueType), b.Name, c.name(varType))
				bindingType = types.Error
			}
		}
		if err := letScope.Insert(&scope.Symbol{Name: b.Name, Kind: scope.Variable, Type: varType, Value: b}); err != nil {
			c.errorf(b, diagnostic.Redefinition, "variable '%s' already defined in this let", b.Name)
			bindingType = types.Error
		}
		b.SetType(bindingType)
	}
	return c.checkExpression(expr.Body, letScope)
}

func (c *Checker) checkIdentifier(expr *ast.Identifier, sc *scope.Scope) ast.TypeID {
	sym := sc.Lookup(expr.Name, scope.Any, true)
	if sym == nil {
		c.errorf(expr, diagnostic.Undefined, "undefined variable '%s'", expr.Name)
		return types.Error
	}
	switch sym.Kind {
	case scope.Function, scope.TypeMethod:
		c.errorf(expr, diagnostic.TypeMismatch, "%s '%s' cannot be used as a value", sym.Kind, expr.Name)
		return types.Error
	}
	return sym.Type
}

// checkAssignExpr validates x := e and self.f := e. The target keeps its
// declared type; the expression takes the type of the new value.
func (c *Checker) checkAssignExpr(expr *ast.AssignExpr, sc *scope.Scope) ast.TypeID {
	var target ast.TypeID
	switch t := expr.Target.(type) {
	case *ast.Identifier:
		target = c.checkAssignTarget(t, sc)
	case *ast.FieldAccess:
		target = c.checkExpression(t, sc)
	default:
		panic(fmt.Sprintf("internal error: invalid assignment target %T", expr.Target))
	}

	value := c.checkExpression(expr.Value, sc)
	if target == types.Error || value == types.Error {
		return types.Error
	}
	if !c.types.Conforms(value, target) {
		c.errorf(expr.Value, diagnostic.TypeMismatch, "cannot assign %s to '%s' of type %s",
			c.name(value), targetName(expr.Target), c.name(target))
		return types.Error
	}
	return value
}

func (c *Checker) checkAssignTarget(id *ast.Identifier, sc *scope.Scope) ast.TypeID {
	sym := sc.Lookup(id.Name, scope.Any, true)
	switch {
	case sym == nil:
		c.errorf(id, diagnostic.Undefined, "undefined variable '%s'", id.Name)
		return c.storeType(id, types.Error)
	case sym.Kind == scope.Function || sym.Kind == scope.TypeMethod:
		c.errorf(id, diagnostic.TypeMismatch, "cannot assign to %s '%s'", sym.Kind, id.Name)
		return c.storeType(id, types.Error)
	case id.Name == "self":
		c.errorf(id, diagnostic.TypeMismatch, "cannot assign to 'self'")
		return c.storeType(id, types.Error)
	}
	return c.storeType(id, sym.Type)
}

func targetName(e ast.Expression) string {
	switch t := e.(type) {
	case *ast.Identifier:
		return t.Name
	case *ast.FieldAccess:
		return "self." + t.Field
	default:
		return "?"
	}
}

// checkArgs visits every argument and reports whether one already failed
func (c *Checker) checkArgs(args []ast.Expression, sc *scope.Scope) ([]ast.TypeID, bool) {
	argTypes := make([]ast.TypeID, len(args))
	poisoned := false
	for i, arg := range args {
		argTypes[i] = c.checkExpression(arg, sc)
		if argTypes[i] == types.Error {
			poisoned = true
		}
	}
	return argTypes, poisoned
}

// matchArgs checks argument types positionally against params
func (c *Checker) matchArgs(what string, args []ast.Expression, argTypes, params []ast.TypeID) bool {
	ok := true
	for i, at := range argTypes {
		if !c.types.Conforms(at, params[i]) {
			c.errorf(args[i], diagnostic.TypeMismatch, "argument %d to %s: expected %s, got %s",
				i+1, what, c.name(params[i]), c.name(at))
			ok = false
		}
	}
	return ok
}

// checkCallExpr resolves a call by name and argument count
func (c *Checker) checkCallExpr(expr *ast.CallExpr, sc *scope.Scope) ast.TypeID {
	argTypes, poisoned := c.checkArgs(expr.Args, sc)

	sym := sc.LookupFunctionBySignature(expr.Function, len(expr.Args))
	if sym == nil {
		if other := sc.Lookup(expr.Function, scope.Function, true); other != nil {
			c.errorf(expr, diagnostic.Arity, "function '%s' expects %d arguments, got %d",
				expr.Function, len(other.Params()), len(expr.Args))
		} else {
			c.errorf(expr, diagnostic.Undefined, "unknown function '%s'", expr.Function)
		}
		return types.Error
	}
	if poisoned {
		return types.Error
	}

	def, ok := sym.Value.(*ast.FunctionDef)
	if !ok {
		panic("internal error: function symbol without definition")
	}
	if !c.matchArgs(fmt.Sprintf("'%s'", expr.Function), expr.Args, argTypes, c.sigs[def]) {
		return types.Error
	}
	return sym.Type
}

func (c *Checker) checkNewExpr(expr *ast.NewExpr, sc *scope.Scope) ast.TypeID {
	argTypes, poisoned := c.checkArgs(expr.Args, sc)

	id, ok := c.types.Lookup(expr.TypeName)
	if !ok || expr.TypeName == types.ErrorName {
		c.errorf(expr, diagnostic.Undefined, "unknown type '%s'", expr.TypeName)
		return types.Error
	}
	desc := c.types.Get(id)
	if desc.Tag != types.TagUserDefined {
		c.errorf(expr, diagnostic.TypeMismatch, "cannot instantiate builtin type '%s'", expr.TypeName)
		return types.Error
	}
	if !desc.Initialized {
		if !desc.Circular {
			c.errorf(expr, diagnostic.Undefined, "unknown type '%s'", expr.TypeName)
		}
		return types.Error
	}

	params := c.ctorTypes[id]
	if len(argTypes) != len(params) {
		c.errorf(expr, diagnostic.Arity, "type '%s' expects %d constructor arguments, got %d",
			expr.TypeName, len(params), len(argTypes))
		return types.Error
	}
	if poisoned {
		return types.Error
	}
	if !c.matchArgs(fmt.Sprintf("'%s' constructor", expr.TypeName), expr.Args, argTypes, params) {
		return types.Error
	}
	return id
}

// checkFieldAccess allows field reads only through self, and only for
// fields declared by the receiver's own type
func (c *Checker) checkFieldAccess(expr *ast.FieldAccess, sc *scope.Scope) ast.TypeID {
	object := c.checkExpression(expr.Object, sc)
	if object == types.Error {
		return types.Error
	}
	if !ast.IsSelf(expr.Object) {
		c.errorf(expr, diagnostic.Visibility, "field '%s' is private and can only be accessed through self", expr.Field)
		return types.Error
	}

	desc := c.types.Get(object)
	if desc.Tag != types.TagUserDefined || desc.Info == nil {
		c.errorf(expr, diagnostic.Undefined, "type '%s' has no field '%s'", desc.Name, expr.Field)
		return types.Error
	}
	sym := desc.Info.Scope.Lookup(expr.Field, scope.TypeField, false)
	if sym == nil || sym.Name == "self" {
		c.errorf(expr, diagnostic.Undefined, "type '%s' has no field '%s'", desc.Name, expr.Field)
		return types.Error
	}
	return sym.Type
}

// checkMethodCall resolves the method in the receiver type and then its
// ancestors
func (c *Checker) checkMethodCall(expr *ast.MethodCall, sc *scope.Scope) ast.TypeID {
	object := c.checkExpression(expr.Object, sc)
	argTypes, poisoned := c.checkArgs(expr.Args, sc)
	if object == types.Error {
		return types.Error
	}

	desc := c.types.Get(object)
	sym, owner := c.types.FindMethod(object, expr.Method)
	if sym == nil {
		c.errorf(expr, diagnostic.Undefined, "type '%s' has no method '%s'", desc.Name, expr.Method)
		return types.Error
	}
	def, ok := sym.Value.(*ast.FunctionDef)
	if !ok {
		panic("internal error: method symbol without definition")
	}

	params := c.sigs[def]
	if len(argTypes) != len(params) {
		c.errorf(expr, diagnostic.Arity, "method '%s.%s' expects %d arguments, got %d",
			c.name(owner), expr.Method, len(params), len(argTypes))
		return types.Error
	}
	if poisoned {
		return types.Error
	}
	if !c.matchArgs(fmt.Sprintf("'%s.%s'", c.name(owner), expr.Method), expr.Args, argTypes, params) {
		return types.Error
	}
	return sym.Type
}
