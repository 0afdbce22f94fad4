package ast

import (
	"fmt"
	"strings"
)

// TypeNamer maps a resolved type to its display name
type TypeNamer func(TypeID) string

// Print returns a tree-like string representation of the AST for debugging
func Print(node Node) string {
	return PrintTyped(node, nil)
}

// PrintTyped is like Print but annotates every checked node with the name
// of its resolved type.
func PrintTyped(node Node, names TypeNamer) string {
	p := &printer{names: names}
	p.printNode(node, 0)
	return p.sb.String()
}

type printer struct {
	sb    strings.Builder
	names TypeNamer
}

func (p *printer) line(indent int, node Node, format string, args ...interface{}) {
	p.sb.WriteString(strings.Repeat("  ", indent))
	p.sb.WriteString(fmt.Sprintf(format, args...))
	if t, ok := node.(Typed); ok && p.names != nil && t.Type() != NoType {
		p.sb.WriteString(" : " + p.names(t.Type()))
	}
	p.sb.WriteString("\n")
}

func (p *printer) printNode(node Node, indent int) {
	if node == nil {
		return
	}

	switch n := node.(type) {
	case *Program:
		p.line(indent, n, "Program")
		for _, td := range n.Types {
			p.printNode(td, indent+1)
		}
		for _, fn := range n.Functions {
			p.printNode(fn, indent+1)
		}
		if n.Body != nil {
			p.printNode(n.Body, indent+1)
		}

	case *TypeDef:
		header := "Type: " + n.Name + paramList(n.Params)
		if n.Parent != nil {
			header += " inherits " + n.Parent.Name
		}
		p.line(indent, n, "%s", header)
		if len(n.ParentArgs) > 0 {
			p.line(indent+1, nil, "ParentArgs:")
			for _, arg := range n.ParentArgs {
				p.printNode(arg, indent+2)
			}
		}
		for _, f := range n.Fields {
			p.printNode(f, indent+1)
		}
		for _, m := range n.Methods {
			p.printNode(m, indent+1)
		}

	case *FieldDef:
		if n.Annotation != nil {
			p.line(indent, n, "Field: %s: %s", n.Name, n.Annotation.Name)
		} else {
			p.line(indent, n, "Field: %s", n.Name)
		}
		p.printNode(n.Value, indent+1)

	case *FunctionDef:
		ret := ""
		if n.ReturnType != nil {
			ret = ": " + n.ReturnType.Name
		}
		p.line(indent, n, "Function: %s%s%s", n.Name, paramList(n.Params), ret)
		if n.Body != nil {
			p.printNode(n.Body, indent+1)
		}

	case *NumberLit:
		p.line(indent, n, "Number: %s", n.Raw)

	case *StringLit:
		p.line(indent, n, "String: %q", n.Value)

	case *BoolLit:
		p.line(indent, n, "Bool: %t", n.Value)

	case *UnaryExpr:
		p.line(indent, n, "Unary: %s", n.Op)
		p.printNode(n.Operand, indent+1)

	case *BinaryExpr:
		p.line(indent, n, "Binary: %s", n.Op)
		p.printNode(n.Left, indent+1)
		p.printNode(n.Right, indent+1)

	case *BlockExpr:
		p.line(indent, n, "Block")
		for _, e := range n.Exprs {
			p.printNode(e, indent+1)
		}

	case *IfExpr:
		p.line(indent, n, "If")
		p.printNode(n.Condition, indent+1)
		p.line(indent+1, nil, "Then:")
		p.printNode(n.Then, indent+2)
		if n.Else != nil {
			p.line(indent+1, nil, "Else:")
			p.printNode(n.Else, indent+2)
		}

	case *WhileExpr:
		p.line(indent, n, "While")
		p.printNode(n.Condition, indent+1)
		p.printNode(n.Body, indent+1)

	case *LetExpr:
		p.line(indent, n, "Let")
		for _, b := range n.Bindings {
			p.printNode(b, indent+1)
		}
		p.line(indent+1, nil, "In:")
		p.printNode(n.Body, indent+2)

	case *VarBinding:
		if n.Annotation != nil {
			p.line(indent, n, "Binding: %s: %s", n.Name, n.Annotation.Name)
		} else {
			p.line(indent, n, "Binding: %s", n.Name)
		}
		p.printNode(n.Value, indent+1)

	case *Identifier:
		p.line(indent, n, "Ident: %s", n.Name)

	case *AssignExpr:
		p.line(indent, n, "Assign")
		p.printNode(n.Target, indent+1)
		p.printNode(n.Value, indent+1)

	case *CallExpr:
		p.line(indent, n, "Call: %s", n.Function)
		for _, arg := range n.Args {
			p.printNode(arg, indent+1)
		}

	case *NewExpr:
		p.line(indent, n, "New: %s", n.TypeName)
		for _, arg := range n.Args {
			p.printNode(arg, indent+1)
		}

	case *FieldAccess:
		p.line(indent, n, "Field: .%s", n.Field)
		p.printNode(n.Object, indent+1)

	case *MethodCall:
		p.line(indent, n, "MethodCall: .%s", n.Method)
		p.printNode(n.Object, indent+1)
		for _, arg := range n.Args {
			p.printNode(arg, indent+1)
		}

	default:
		p.line(indent, nil, "Unknown node: %T", node)
	}
}

func paramList(params []*Param) string {
	parts := make([]string, len(params))
	for i, prm := range params {
		if prm.Type != nil {
			parts[i] = prm.Name + ": " + prm.Type.Name
		} else {
			parts[i] = prm.Name
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
