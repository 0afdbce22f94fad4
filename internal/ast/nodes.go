package ast

import (
	"fmt"

	"github.com/lhaig/hulkc/internal/lexer"
)

// TypeID indexes a type descriptor in the type table. The zero value means
// the node has not been resolved yet.
type TypeID int

// NoType marks an unresolved node.
const NoType TypeID = 0

// Node is the base interface for all AST nodes
type Node interface {
	Pos() (line, col int)
}

// Typed is implemented by every node that carries a resolved type
type Typed interface {
	Node
	Type() TypeID
	SetType(id TypeID)
}

// Expression nodes
type Expression interface {
	Typed
	exprNode()
}

// Resolved holds the type slot shared by typed nodes. It is filled exactly
// once by the checker.
type Resolved struct {
	ResolvedType TypeID
}

// Type returns the resolved type, or NoType before checking.
func (r *Resolved) Type() TypeID { return r.ResolvedType }

// SetType stores the resolved type. A second call is a checker bug.
func (r *Resolved) SetType(id TypeID) {
	if r.ResolvedType != NoType {
		panic(fmt.Sprintf("internal error: resolved type set twice (%d, then %d)", r.ResolvedType, id))
	}
	r.ResolvedType = id
}

// Program represents a whole HULK compilation unit: type and function
// definitions followed by a single global expression.
type Program struct {
	Types     []*TypeDef
	Functions []*FunctionDef
	Body      Expression // nil when the program has no global expression
	Resolved
	Line   int
	Column int
}

func (p *Program) Pos() (int, int) { return p.Line, p.Column }

// TypeRef represents a type annotation
type TypeRef struct {
	Name   string
	Line   int
	Column int
}

func (t *TypeRef) Pos() (int, int) { return t.Line, t.Column }

// Param represents a function, method or constructor parameter
type Param struct {
	Name   string
	Type   *TypeRef
	Line   int
	Column int
}

func (p *Param) Pos() (int, int) { return p.Line, p.Column }

// FunctionDef represents a global function or a method of a type.
// Builtin functions have no body.
type FunctionDef struct {
	Name       string
	Params     []*Param
	ReturnType *TypeRef
	Body       Expression
	Builtin    bool
	Resolved
	Line   int
	Column int
}

func (f *FunctionDef) Pos() (int, int) { return f.Line, f.Column }

// TypeDef represents a user-defined type
//
//	type Point(x: Number, y: Number) inherits Shape(x) { ... }
type TypeDef struct {
	Name       string
	Params     []*Param
	Parent     *TypeRef // nil means Object
	ParentArgs []Expression
	Fields     []*FieldDef
	Methods    []*FunctionDef
	Resolved
	Line   int
	Column int
}

func (t *TypeDef) Pos() (int, int) { return t.Line, t.Column }

// ParentName returns the declared parent type, defaulting to Object.
func (t *TypeDef) ParentName() string {
	if t.Parent == nil {
		return "Object"
	}
	return t.Parent.Name
}

// FieldDef represents a field declaration inside a type body
type FieldDef struct {
	Name       string
	Annotation *TypeRef // nil when the type comes from the initializer
	Value      Expression
	Resolved
	Line   int
	Column int
}

func (f *FieldDef) Pos() (int, int) { return f.Line, f.Column }

// NumberLit represents a numeric literal
type NumberLit struct {
	Value float64
	Raw   string
	Resolved
	Line   int
	Column int
}

func (n *NumberLit) Pos() (int, int) { return n.Line, n.Column }
func (n *NumberLit) exprNode()       {}

// StringLit represents a string literal
type StringLit struct {
	Value string
	Resolved
	Line   int
	Column int
}

func (s *StringLit) Pos() (int, int) { return s.Line, s.Column }
func (s *StringLit) exprNode()       {}

// BoolLit represents a boolean literal
type BoolLit struct {
	Value bool
	Resolved
	Line   int
	Column int
}

func (b *BoolLit) Pos() (int, int) { return b.Line, b.Column }
func (b *BoolLit) exprNode()       {}

// UnaryExpr represents a unary expression
type UnaryExpr struct {
	Op      lexer.TokenType
	Operand Expression
	Resolved
	Line   int
	Column int
}

func (u *UnaryExpr) Pos() (int, int) { return u.Line, u.Column }
func (u *UnaryExpr) exprNode()       {}

// BinaryExpr represents a binary expression
type BinaryExpr struct {
	Left  Expression
	Op    lexer.TokenType
	Right Expression
	Resolved
	Line   int
	Column int
}

func (b *BinaryExpr) Pos() (int, int) { return b.Line, b.Column }
func (b *BinaryExpr) exprNode()       {}

// BlockExpr represents { e1; e2; ... }
type BlockExpr struct {
	Exprs []Expression
	Resolved
	Line   int
	Column int
}

func (b *BlockExpr) Pos() (int, int) { return b.Line, b.Column }
func (b *BlockExpr) exprNode()       {}

// IfExpr represents a conditional. elif chains are nested IfExprs in Else.
type IfExpr struct {
	Condition Expression
	Then      Expression
	Else      Expression // may be nil
	Resolved
	Line   int
	Column int
}

func (i *IfExpr) Pos() (int, int) { return i.Line, i.Column }
func (i *IfExpr) exprNode()       {}

// WhileExpr represents a while loop
type WhileExpr struct {
	Condition Expression
	Body      Expression
	Resolved
	Line   int
	Column int
}

func (w *WhileExpr) Pos() (int, int) { return w.Line, w.Column }
func (w *WhileExpr) exprNode()       {}

// LetExpr represents let a = 1, b: Number = 2 in body
type LetExpr struct {
	Bindings []*VarBinding
	Body     Expression
	Resolved
	Line   int
	Column int
}

func (l *LetExpr) Pos() (int, int) { return l.Line, l.Column }
func (l *LetExpr) exprNode()       {}

// VarBinding represents one binding of a let expression
type VarBinding struct {
	Name       string
	Annotation *TypeRef // optional
	Value      Expression
	Resolved
	Line   int
	Column int
}

func (v *VarBinding) Pos() (int, int) { return v.Line, v.Column }

// Identifier represents a variable reference, including self
type Identifier struct {
	Name string
	Resolved
	Line   int
	Column int
}

func (i *Identifier) Pos() (int, int) { return i.Line, i.Column }
func (i *Identifier) exprNode()       {}

// AssignExpr represents a destructive assignment: x := e or self.f := e.
// Target is an *Identifier or a *FieldAccess.
type AssignExpr struct {
	Target Expression
	Value  Expression
	Resolved
	Line   int
	Column int
}

func (a *AssignExpr) Pos() (int, int) { return a.Line, a.Column }
func (a *AssignExpr) exprNode()       {}

// CallExpr represents a global function call
type CallExpr struct {
	Function string
	Args     []Expression
	Resolved
	Line   int
	Column int
}

func (c *CallExpr) Pos() (int, int) { return c.Line, c.Column }
func (c *CallExpr) exprNode()       {}

// NewExpr represents new T(args)
type NewExpr struct {
	TypeName string
	Args     []Expression
	Resolved
	Line   int
	Column int
}

func (n *NewExpr) Pos() (int, int) { return n.Line, n.Column }
func (n *NewExpr) exprNode()       {}

// FieldAccess represents obj.field
type FieldAccess struct {
	Object Expression
	Field  string
	Resolved
	Line   int
	Column int
}

func (f *FieldAccess) Pos() (int, int) { return f.Line, f.Column }
func (f *FieldAccess) exprNode()       {}

// MethodCall represents obj.method(args)
type MethodCall struct {
	Object Expression
	Method string
	Args   []Expression
	Resolved
	Line   int
	Column int
}

func (m *MethodCall) Pos() (int, int) { return m.Line, m.Column }
func (m *MethodCall) exprNode()       {}

// IsSelf reports whether e is syntactically the self variable.
func IsSelf(e Expression) bool {
	id, ok := e.(*Identifier)
	return ok && id.Name == "self"
}

// Definition nodes carry a resolved type too.
var (
	_ Typed = (*Program)(nil)
	_ Typed = (*TypeDef)(nil)
	_ Typed = (*FunctionDef)(nil)
	_ Typed = (*FieldDef)(nil)
	_ Typed = (*VarBinding)(nil)
)
