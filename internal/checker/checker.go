package checker

import (
	"github.com/lhaig/hulkc/internal/ast"
	"github.com/lhaig/hulkc/internal/diagnostic"
	"github.com/lhaig/hulkc/internal/scope"
	"github.com/lhaig/hulkc/internal/types"
)

// Checker performs semantic analysis on the AST
type Checker struct {
	prog   *ast.Program
	diag   *diagnostic.Diagnostics
	types  *types.Table
	global *scope.Scope

	typeIDs   map[*ast.TypeDef]ast.TypeID       // definitions that own their descriptor
	scopes    map[*ast.FunctionDef]*scope.Scope // function and method scopes
	sigs      map[*ast.FunctionDef][]ast.TypeID // declared parameter types
	returns   map[*ast.FunctionDef]ast.TypeID   // declared return types
	ctorTypes map[ast.TypeID][]ast.TypeID       // constructor parameter types
	badParent map[ast.TypeID]bool               // parent already reported
	prelude   []*ast.FunctionDef
}

// Result holds the results of semantic analysis for code generation and
// the other downstream stages
type Result struct {
	Program     *ast.Program
	Types       *types.Table
	Global      *scope.Scope
	Scopes      map[*ast.FunctionDef]*scope.Scope
	Prelude     []*ast.FunctionDef
	Diagnostics *diagnostic.Diagnostics
}

// OK reports whether the program was accepted
func (r *Result) OK() bool {
	return !r.Diagnostics.HasErrors()
}

// CheckWithResult registers every global prototype, then checks every
// type, function and the global expression of prog.
func CheckWithResult(prog *ast.Program) *Result {
	c := New(prog)
	c.registerTypes()
	c.registerFunctions()
	c.checkTypes()
	c.checkFunctions()
	c.checkProgramBody()

	return &Result{
		Program:     prog,
		Types:       c.types,
		Global:      c.global,
		Scopes:      c.scopes,
		Prelude:     c.prelude,
		Diagnostics: c.diag,
	}
}

// Check performs semantic analysis on an AST program
func Check(prog *ast.Program) *diagnostic.Diagnostics {
	return CheckWithResult(prog).Diagnostics
}

// New creates a checker over prog with the builtin types registered
func New(prog *ast.Program) *Checker {
	return &Checker{
		prog:      prog,
		diag:      diagnostic.New(),
		types:     types.New(),
		global:    scope.New(nil),
		typeIDs:   make(map[*ast.TypeDef]ast.TypeID),
		scopes:    make(map[*ast.FunctionDef]*scope.Scope),
		sigs:      make(map[*ast.FunctionDef][]ast.TypeID),
		returns:   make(map[*ast.FunctionDef]ast.TypeID),
		ctorTypes: make(map[ast.TypeID][]ast.TypeID),
		badParent: make(map[ast.TypeID]bool),
	}
}

func (c *Checker) errorf(node ast.Node, kind diagnostic.Kind, format string, args ...interface{}) {
	line, col := node.Pos()
	c.diag.Reportf(kind, line, col, format, args...)
}

func (c *Checker) name(id ast.TypeID) string {
	return c.types.Name(id)
}

// resolveTypeRef resolves a type annotation. A nil annotation yields
// fallback. Unknown names are reported once and resolve to _Error.
func (c *Checker) resolveTypeRef(ref *ast.TypeRef, fallback ast.TypeID) ast.TypeID {
	if ref == nil {
		return fallback
	}
	if ref.Name == types.ErrorName {
		c.errorf(ref, diagnostic.Undefined, "unknown type '%s'", ref.Name)
		return types.Error
	}
	id, ok := c.types.Lookup(ref.Name)
	if !ok {
		c.errorf(ref, diagnostic.Undefined, "unknown type '%s'", ref.Name)
		return types.Error
	}
	d := c.types.Get(id)
	if !d.Initialized {
		if !d.Circular {
			c.errorf(ref, diagnostic.Undefined, "unknown type '%s'", ref.Name)
		}
		return types.Error
	}
	return id
}

// checkTypes checks every type definition that owns its descriptor
func (c *Checker) checkTypes() {
	for _, def := range c.prog.Types {
		if id, ok := c.typeIDs[def]; ok {
			c.checkTypeDef(def, id)
		}
	}
}

// checkFunctions checks all function bodies
func (c *Checker) checkFunctions() {
	for _, fn := range c.prog.Functions {
		if sc, ok := c.scopes[fn]; ok {
			c.checkFunctionBody(fn, sc)
		}
	}
}

func (c *Checker) checkProgramBody() {
	if c.prog.Body == nil {
		c.prog.SetType(types.Null)
		return
	}
	c.prog.SetType(c.checkExpression(c.prog.Body, c.global))
}

// checkFunctionBody checks a function or method body against its declared
// return type
func (c *Checker) checkFunctionBody(fn *ast.FunctionDef, sc *scope.Scope) {
	ret := c.returns[fn]
	if fn.Body != nil {
		bodyType := c.checkExpression(fn.Body, sc)
		if !c.types.Conforms(bodyType, ret) {
			c.errorf(fn.Body, diagnostic.TypeMismatch,
				"function '%s' declares return type %s, but its body has type %s",
				fn.Name, c.name(ret), c.name(bodyType))
		}
	}
	fn.SetType(ret)
}

// checkTypeDef validates the parent constructor call, then field
// initializers, then methods. self only becomes visible after the fields.
func (c *Checker) checkTypeDef(def *ast.TypeDef, id ast.TypeID) {
	desc := c.types.Get(id)
	sc := desc.Info.Scope

	// parent arguments and field initializers see the constructor
	// parameters but neither the fields nor self
	ctor := scope.New(c.global)
	for _, p := range sc.Filter(scope.Parameter) {
		c.mustInsert(ctor, p)
	}
	c.checkParentArgs(def, desc, ctor)

	for _, field := range def.Fields {
		valueType := c.checkExpression(field.Value, ctor)
		sym := sc.Lookup(field.Name, scope.TypeField, false)
		if sym == nil || sym.Value != field {
			// duplicate field, already reported during registration
			field.SetType(valueType)
			continue
		}
		if field.Annotation == nil {
			sym.Type = valueType
		} else if !c.types.Conforms(valueType, sym.Type) {
			c.errorf(field.Value, diagnostic.TypeMismatch,
				"field '%s' of type %s cannot be initialized with %s",
				field.Name, c.name(sym.Type), c.name(valueType))
		}
		field.SetType(sym.Type)
	}

	c.mustInsert(sc, &scope.Symbol{Name: "self", Kind: scope.TypeField, Type: id, Value: def})

	for _, method := range def.Methods {
		msc, ok := c.scopes[method]
		if !ok {
			continue
		}
		c.checkOverride(desc, method)
		c.checkFunctionBody(method, msc)
	}

	def.SetType(id)
}

func (c *Checker) checkParentArgs(def *ast.TypeDef, desc *types.Descriptor, sc *scope.Scope) {
	argTypes := make([]ast.TypeID, len(def.ParentArgs))
	for i, arg := range def.ParentArgs {
		argTypes[i] = c.checkExpression(arg, sc)
	}

	if c.badParent[desc.ID] {
		return
	}
	parent := c.types.Get(desc.Parent)
	if !parent.Initialized {
		if !parent.Circular {
			c.errorf(def, diagnostic.Hierarchy, "type '%s' inherits from undefined type '%s'", def.Name, parent.Name)
		}
		return
	}

	expected := c.ctorTypes[parent.ID]
	if len(argTypes) != len(expected) {
		c.errorf(def, diagnostic.Hierarchy, "type '%s' passes %d argument(s) to parent '%s', which expects %d",
			def.Name, len(argTypes), parent.Name, len(expected))
		return
	}
	for i, at := range argTypes {
		if !c.types.Conforms(at, expected[i]) {
			c.errorf(def.ParentArgs[i], diagnostic.Hierarchy, "argument %d to parent '%s': expected %s, got %s",
				i+1, parent.Name, c.name(expected[i]), c.name(at))
		}
	}
}

// checkOverride requires a method that redefines an inherited one to keep
// its parameter list and return a conforming type
func (c *Checker) checkOverride(desc *types.Descriptor, method *ast.FunctionDef) {
	if desc.Parent == ast.NoType {
		return
	}
	inherited, owner := c.types.FindMethod(desc.Parent, method.Name)
	if inherited == nil {
		return
	}
	base, ok := inherited.Value.(*ast.FunctionDef)
	if !ok {
		panic("internal error: method symbol without definition")
	}

	ownName := c.name(owner)
	mine, theirs := c.sigs[method], c.sigs[base]
	if len(mine) != len(theirs) {
		c.errorf(method, diagnostic.Arity, "method '%s' overrides '%s.%s' with %d parameter(s), expected %d",
			method.Name, ownName, method.Name, len(mine), len(theirs))
		return
	}
	for i := range mine {
		if mine[i] == types.Error || theirs[i] == types.Error {
			continue
		}
		if mine[i] != theirs[i] {
			c.errorf(method.Params[i], diagnostic.TypeMismatch,
				"parameter '%s' of method '%s' has type %s, but '%s.%s' declares %s",
				method.Params[i].Name, method.Name, c.name(mine[i]), ownName, method.Name, c.name(theirs[i]))
		}
	}
	if !c.types.Conforms(c.returns[method], c.returns[base]) {
		c.errorf(method, diagnostic.TypeMismatch, "method '%s' returns %s, which does not conform to %s returned by '%s.%s'",
			method.Name, c.name(c.returns[method]), c.name(c.returns[base]), ownName, method.Name)
	}
}
