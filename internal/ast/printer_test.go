package ast

import (
	"strings"
	"testing"

	"github.com/lhaig/hulkc/internal/lexer"
)

func names(id TypeID) string {
	return map[TypeID]string{2: "Number", 3: "Bool", 7: "_Error"}[id]
}

func TestPrintUntyped(t *testing.T) {
	prog := &Program{
		Types: []*TypeDef{{
			Name:   "Point",
			Params: []*Param{{Name: "x", Type: &TypeRef{Name: "Number"}}},
			Parent: &TypeRef{Name: "Shape"},
			ParentArgs: []Expression{
				&Identifier{Name: "x"},
			},
			Fields: []*FieldDef{{Name: "x", Value: &Identifier{Name: "x"}}},
		}},
		Functions: []*FunctionDef{{
			Name:       "id",
			Params:     []*Param{{Name: "v"}},
			ReturnType: &TypeRef{Name: "Object"},
			Body:       &Identifier{Name: "v"},
		}},
		Body: &CallExpr{Function: "id", Args: []Expression{&StringLit{Value: "hi"}}},
	}

	want := `Program
  Type: Point(x: Number) inherits Shape
    ParentArgs:
      Ident: x
    Field: x
      Ident: x
  Function: id(v): Object
    Ident: v
  Call: id
    String: "hi"
`
	if got := Print(prog); got != want {
		t.Errorf("Print mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrintTyped(t *testing.T) {
	left := &NumberLit{Value: 1, Raw: "1"}
	right := &BoolLit{Value: true}
	bin := &BinaryExpr{Left: left, Op: lexer.PLUS, Right: right}
	left.SetType(2)
	right.SetType(3)
	bin.SetType(7)

	let := &LetExpr{
		Bindings: []*VarBinding{{Name: "n", Annotation: &TypeRef{Name: "Number"}, Value: bin}},
		Body:     &Identifier{Name: "n"},
	}

	want := `Let
  Binding: n: Number
    Binary: + : _Error
      Number: 1 : Number
      Bool: true : Bool
  In:
    Ident: n
`
	if got := PrintTyped(let, names); got != want {
		t.Errorf("PrintTyped mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrintTypedDefinitions(t *testing.T) {
	binding := &VarBinding{Name: "x", Value: &NumberLit{Raw: "1"}}
	binding.Value.SetType(2)
	binding.SetType(2)
	field := &FieldDef{Name: "ok", Annotation: &TypeRef{Name: "Bool"}, Value: &BoolLit{Value: true}}
	field.Value.SetType(3)
	field.SetType(3)

	var typed []Typed
	for _, n := range []Node{binding, field} {
		tn, ok := n.(Typed)
		if !ok {
			t.Fatalf("%T does not expose its resolved type", n)
		}
		typed = append(typed, tn)
	}
	if typed[0].Type() != 2 || typed[1].Type() != 3 {
		t.Errorf("unexpected resolved types %d, %d", typed[0].Type(), typed[1].Type())
	}

	got := PrintTyped(binding, names) + PrintTyped(field, names)
	want := `Binding: x : Number
  Number: 1 : Number
Field: ok: Bool : Bool
  Bool: true : Bool
`
	if got != want {
		t.Errorf("PrintTyped mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrintConditionals(t *testing.T) {
	expr := &IfExpr{
		Condition: &BoolLit{Value: true},
		Then:      &NumberLit{Raw: "1"},
		Else: &WhileExpr{
			Condition: &UnaryExpr{Op: lexer.NOT, Operand: &BoolLit{Value: false}},
			Body:      &BlockExpr{Exprs: []Expression{&AssignExpr{Target: &Identifier{Name: "a"}, Value: &NumberLit{Raw: "2"}}}},
		},
	}
	out := Print(expr)
	for _, want := range []string{"If\n", "  Then:\n", "  Else:\n", "    While\n", "      Unary: !\n", "        Assign\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestSetTypeTwicePanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil || !strings.Contains(r.(string), "internal error") {
			t.Errorf("expected internal error panic, got %v", r)
		}
	}()
	id := &Identifier{Name: "x"}
	id.SetType(2)
	id.SetType(3)
}
