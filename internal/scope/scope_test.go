package scope

import (
	"testing"

	"github.com/lhaig/hulkc/internal/ast"
	"github.com/nalgeon/be"
)

func fn(name string, params ...string) *Symbol {
	def := &ast.FunctionDef{Name: name}
	for _, p := range params {
		def.Params = append(def.Params, &ast.Param{Name: p, Type: &ast.TypeRef{Name: "Number"}})
	}
	return &Symbol{Name: name, Kind: Function, Value: def}
}

func TestInsertAndLookup(t *testing.T) {
	global := New(nil)
	be.Err(t, global.Insert(&Symbol{Name: "x", Kind: Variable, Type: 2}), nil)

	sym := global.Lookup("x", Variable, false)
	be.True(t, sym != nil)
	be.Equal(t, sym.Type, ast.TypeID(2))

	be.True(t, global.Lookup("x", Function, true) == nil)
	be.True(t, global.Lookup("y", Any, true) == nil)
}

func TestInsert_Redeclaration(t *testing.T) {
	s := New(nil)
	be.Err(t, s.Insert(&Symbol{Name: "x", Kind: Variable}), nil)

	err := s.Insert(&Symbol{Name: "x", Kind: Variable})
	be.Err(t, err, ErrRedeclared)
	be.Err(t, err, "variable 'x'")
	be.Equal(t, len(s.Symbols()), 1)
}

func TestInsert_SameNameDifferentKind(t *testing.T) {
	s := New(nil)
	be.Err(t, s.Insert(&Symbol{Name: "x", Kind: Parameter, Type: 1}), nil)
	be.Err(t, s.Insert(&Symbol{Name: "x", Kind: TypeField, Type: 2}), nil)

	// Any returns the first inserted symbol
	be.Equal(t, s.Lookup("x", Any, false).Kind, Parameter)
	be.Equal(t, s.Lookup("x", TypeField, false).Type, ast.TypeID(2))
}

func TestShadowingAcrossScopes(t *testing.T) {
	outer := New(nil)
	be.Err(t, outer.Insert(&Symbol{Name: "x", Kind: Variable, Type: 1}), nil)

	inner := New(outer)
	be.Err(t, inner.Insert(&Symbol{Name: "x", Kind: Variable, Type: 2}), nil)

	be.Equal(t, inner.Lookup("x", Any, true).Type, ast.TypeID(2))
	be.Equal(t, outer.Lookup("x", Any, true).Type, ast.TypeID(1))
}

func TestLookup_SearchParent(t *testing.T) {
	outer := New(nil)
	be.Err(t, outer.Insert(&Symbol{Name: "g", Kind: Variable}), nil)
	inner := New(New(outer))

	be.True(t, inner.Lookup("g", Any, false) == nil)
	be.True(t, inner.Lookup("g", Any, true) != nil)
	be.Equal(t, inner.Depth(), 2)
	be.True(t, inner.Parent().Parent() == outer)
}

func TestLookupFunctionBySignature(t *testing.T) {
	global := New(nil)
	be.Err(t, global.Insert(fn("foo", "a")), nil)
	local := New(global)

	be.True(t, local.LookupFunctionBySignature("foo", 1) != nil)
	be.True(t, local.LookupFunctionBySignature("foo", 2) == nil)
	be.True(t, local.LookupFunctionBySignature("bar", 0) == nil)
}

func TestLookupFunctionBySignature_IgnoresVariables(t *testing.T) {
	s := New(nil)
	be.Err(t, s.Insert(&Symbol{Name: "f", Kind: Variable}), nil)
	be.True(t, s.LookupFunctionBySignature("f", 0) == nil)
}

func TestFilter_KeepsInsertionOrder(t *testing.T) {
	s := New(nil)
	for _, name := range []string{"c", "a", "b"} {
		be.Err(t, s.Insert(&Symbol{Name: name, Kind: TypeField}), nil)
	}
	be.Err(t, s.Insert(fn("m")), nil)

	fields := s.Filter(TypeField)
	be.Equal(t, len(fields), 3)
	be.Equal(t, fields[0].Name, "c")
	be.Equal(t, fields[1].Name, "a")
	be.Equal(t, fields[2].Name, "b")
	be.Equal(t, len(s.Filter(Any)), 4)
}

func TestKind_String(t *testing.T) {
	be.Equal(t, Variable.String(), "variable")
	be.Equal(t, TypeMethod.String(), "method")
	be.Equal(t, Kind(42).String(), "unknown")
}
