package checker

import (
	"errors"

	"github.com/lhaig/hulkc/internal/ast"
	"github.com/lhaig/hulkc/internal/diagnostic"
	"github.com/lhaig/hulkc/internal/scope"
	"github.com/lhaig/hulkc/internal/types"
)

// registerTypes inserts every type descriptor first, so forward references
// and cycles are known, then fills each type's scope with its constructor
// parameters, fields and methods.
func (c *Checker) registerTypes() {
	for _, def := range c.prog.Types {
		sc := scope.New(c.global)
		id, err := c.types.AddUserDefined(def, sc)
		switch {
		case err == nil:
			c.typeIDs[def] = id
		case errors.Is(err, types.ErrBadParent):
			c.errorf(def.Parent, diagnostic.Hierarchy, "%s", err)
			c.typeIDs[def] = id
			c.badParent[id] = true
		case errors.Is(err, types.ErrCircular):
			c.errorf(def, diagnostic.Hierarchy, "%s", err)
		case errors.Is(err, types.ErrRedefined):
			c.errorf(def, diagnostic.Redefinition, "type '%s' already defined", def.Name)
		default:
			panic("internal error: " + err.Error())
		}
	}

	// descriptors rejected after registration no longer own their definition
	for def, id := range c.typeIDs {
		if c.types.Get(id).Circular {
			delete(c.typeIDs, def)
		}
	}

	for _, def := range c.prog.Types {
		if id, ok := c.typeIDs[def]; ok {
			c.registerMembers(def, id)
		}
	}
}

func (c *Checker) registerMembers(def *ast.TypeDef, id ast.TypeID) {
	sc := c.types.Get(id).Info.Scope

	ctor := make([]ast.TypeID, 0, len(def.Params))
	for _, p := range def.Params {
		pt := c.registerParam(sc, p)
		ctor = append(ctor, pt)
	}
	c.ctorTypes[id] = ctor

	for _, field := range def.Fields {
		if field.Name == "self" {
			c.errorf(field, diagnostic.Redefinition, "'self' is reserved and cannot be used as a field name")
			continue
		}
		sym := &scope.Symbol{
			Name:  field.Name,
			Kind:  scope.TypeField,
			Type:  c.resolveTypeRef(field.Annotation, types.Undefined),
			Value: field,
		}
		if err := sc.Insert(sym); err != nil {
			c.errorf(field, diagnostic.Redefinition, "field '%s' already defined in type '%s'", field.Name, def.Name)
		}
	}

	for _, method := range def.Methods {
		ret := c.resolveTypeRef(method.ReturnType, types.Object)
		sym := &scope.Symbol{Name: method.Name, Kind: scope.TypeMethod, Type: ret, Value: method}
		if err := sc.Insert(sym); err != nil {
			c.errorf(method, diagnostic.Redefinition, "method '%s' already defined in type '%s'", method.Name, def.Name)
			continue
		}
		c.registerSignature(method, sc, ret)
	}
}

// registerFunctions registers the builtin prelude and then every global
// function in the global scope
func (c *Checker) registerFunctions() {
	c.registerPrelude()

	for _, fn := range c.prog.Functions {
		if c.global.Lookup(fn.Name, scope.Function, false) != nil {
			c.errorf(fn, diagnostic.Redefinition, "function '%s' already defined", fn.Name)
			continue
		}
		ret := c.resolveTypeRef(fn.ReturnType, types.Object)
		c.mustInsert(c.global, &scope.Symbol{Name: fn.Name, Kind: scope.Function, Type: ret, Value: fn})
		c.registerSignature(fn, c.global, ret)
	}
}

// registerSignature creates the scope of a function or method, seeded with
// its parameters
func (c *Checker) registerSignature(fn *ast.FunctionDef, parent *scope.Scope, ret ast.TypeID) {
	sc := scope.New(parent)
	sig := make([]ast.TypeID, 0, len(fn.Params))
	for _, p := range fn.Params {
		sig = append(sig, c.registerParam(sc, p))
	}
	c.scopes[fn] = sc
	c.sigs[fn] = sig
	c.returns[fn] = ret
}

// registerParam inserts a parameter and returns its declared type. The type
// is still returned when the name is rejected, so arity stays intact.
func (c *Checker) registerParam(sc *scope.Scope, p *ast.Param) ast.TypeID {
	pt := c.resolveTypeRef(p.Type, types.Object)
	if p.Name == "self" {
		c.errorf(p, diagnostic.Redefinition, "'self' is reserved and cannot be used as a parameter name")
		return pt
	}
	if err := sc.Insert(&scope.Symbol{Name: p.Name, Kind: scope.Parameter, Type: pt, Value: p}); err != nil {
		c.errorf(p, diagnostic.Redefinition, "parameter '%s' already defined", p.Name)
	}
	return pt
}
