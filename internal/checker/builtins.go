package checker

import (
	"github.com/lhaig/hulkc/internal/ast"
	"github.com/lhaig/hulkc/internal/scope"
	"github.com/lhaig/hulkc/internal/types"
)

type builtinFunc struct {
	name   string
	params []string // parameter type names
	ret    string
}

// Functions provided by the runtime
var builtinFuncs = []builtinFunc{
	{"print", []string{"Object"}, "Object"},
	{"sqrt", []string{"Number"}, "Number"},
	{"sin", []string{"Number"}, "Number"},
	{"cos", []string{"Number"}, "Number"},
	{"exp", []string{"Number"}, "Number"},
	{"log", []string{"Number"}, "Number"},
	{"pow", []string{"Number", "Number"}, "Number"},
	{"fmod", []string{"Number", "Number"}, "Number"},
	{"rand", nil, "Number"},
}

// Global constants
var builtinConsts = []string{"PI", "E"}

var paramNames = []string{"x", "y"}

// Prelude returns synthesized definitions of the builtin functions
func Prelude() []*ast.FunctionDef {
	defs := make([]*ast.FunctionDef, 0, len(builtinFuncs))
	for _, bf := range builtinFuncs {
		def := &ast.FunctionDef{
			Name:       bf.name,
			ReturnType: &ast.TypeRef{Name: bf.ret},
			Builtin:    true,
		}
		for i, pt := range bf.params {
			def.Params = append(def.Params, &ast.Param{Name: paramNames[i], Type: &ast.TypeRef{Name: pt}})
		}
		defs = append(defs, def)
	}
	return defs
}

// IsBuiltinFunc reports whether name is a prelude function
func IsBuiltinFunc(name string) bool {
	for _, bf := range builtinFuncs {
		if bf.name == name {
			return true
		}
	}
	return false
}

func (c *Checker) registerPrelude() {
	for _, name := range builtinConsts {
		c.mustInsert(c.global, &scope.Symbol{Name: name, Kind: scope.Variable, Type: types.Number})
	}
	c.prelude = Prelude()
	for _, def := range c.prelude {
		ret := c.resolveTypeRef(def.ReturnType, types.Object)
		c.mustInsert(c.global, &scope.Symbol{Name: def.Name, Kind: scope.Function, Type: ret, Value: def})
		c.registerSignature(def, c.global, ret)
		def.SetType(ret)
	}
}

func (c *Checker) mustInsert(sc *scope.Scope, sym *scope.Symbol) {
	if err := sc.Insert(sym); err != nil {
		panic("internal error: " + err.Error())
	}
}
