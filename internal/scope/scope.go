// Package scope implements HULK's chained symbol tables.
package scope

import (
	"errors"
	"fmt"

	"github.com/lhaig/hulkc/internal/ast"
)

// ErrRedeclared is returned by Insert when the scope already holds a symbol
// with the same name and kind.
var ErrRedeclared = errors.New("symbol already declared in this scope")

// Kind represents the kind of symbol
type Kind int

const (
	Any Kind = iota // lookup filter only
	Variable
	Parameter
	Function
	TypeField
	TypeMethod
)

// String returns the string representation of the symbol kind
func (k Kind) String() string {
	switch k {
	case Any:
		return "any"
	case Variable:
		return "variable"
	case Parameter:
		return "parameter"
	case Function:
		return "function"
	case TypeField:
		return "field"
	case TypeMethod:
		return "method"
	default:
		return "unknown"
	}
}

// Symbol represents a named entry in a scope
type Symbol struct {
	Name  string
	Kind  Kind
	Type  ast.TypeID
	Value ast.Node // defining node, if any
}

// Params returns the parameters of a function or method symbol.
func (s *Symbol) Params() []*ast.Param {
	if fn, ok := s.Value.(*ast.FunctionDef); ok {
		return fn.Params
	}
	return nil
}

// Scope represents a lexical scope. Symbols keep their insertion order.
type Scope struct {
	parent  *Scope
	symbols []*Symbol
}

// New creates a new scope with an optional parent
func New(parent *Scope) *Scope {
	return &Scope{
		parent:  parent,
		symbols: make([]*Symbol, 0, 8),
	}
}

// Parent returns the enclosing scope, or nil for the global scope
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Depth returns the number of enclosing scopes
func (s *Scope) Depth() int {
	depth := 0
	for p := s.parent; p != nil; p = p.parent {
		depth++
	}
	return depth
}

// Insert adds a symbol to this scope. Shadowing a symbol of an enclosing
// scope is allowed; repeating a (name, kind) pair in the same scope is not.
func (s *Scope) Insert(sym *Symbol) error {
	if sym.Kind == Any {
		panic("internal error: cannot insert a symbol of kind any")
	}
	if s.Lookup(sym.Name, sym.Kind, false) != nil {
		return fmt.Errorf("%s '%s': %w", sym.Kind, sym.Name, ErrRedeclared)
	}
	s.symbols = append(s.symbols, sym)
	return nil
}

// Lookup finds a symbol by name. kind Any matches every kind. When
// searchParent is set the enclosing scopes are searched too.
func (s *Scope) Lookup(name string, kind Kind, searchParent bool) *Symbol {
	for cur := s; cur != nil; cur = cur.parent {
		for _, sym := range cur.symbols {
			if sym.Name == name && (kind == Any || sym.Kind == kind) {
				return sym
			}
		}
		if !searchParent {
			break
		}
	}
	return nil
}

// LookupFunctionBySignature finds a function by name and parameter count.
// Arity is the only overload criterion.
func (s *Scope) LookupFunctionBySignature(name string, argCount int) *Symbol {
	for cur := s; cur != nil; cur = cur.parent {
		for _, sym := range cur.symbols {
			if sym.Name == name && sym.Kind == Function && len(sym.Params()) == argCount {
				return sym
			}
		}
	}
	return nil
}

// Symbols returns the symbols of this scope in insertion order
func (s *Scope) Symbols() []*Symbol {
	return s.symbols
}

// Filter returns the symbols of this scope with the given kind
func (s *Scope) Filter(kind Kind) []*Symbol {
	var out []*Symbol
	for _, sym := range s.symbols {
		if kind == Any || sym.Kind == kind {
			out = append(out, sym)
		}
	}
	return out
}
