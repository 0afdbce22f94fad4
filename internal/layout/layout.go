// Package layout derives the memory layout of user-defined types from a
// checked program. It is the hand-off consumed by code generation.
package layout

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/lhaig/hulkc/internal/ast"
	"github.com/lhaig/hulkc/internal/checker"
	"github.com/lhaig/hulkc/internal/scope"
	"github.com/lhaig/hulkc/internal/types"
)

// ErrRejected is returned when layouts are requested for a program that
// failed checking
var ErrRejected = errors.New("program has semantic errors")

// Layout lists every user-defined type, parents before children
type Layout struct {
	Types []*Type `yaml:"types"`
}

// Type is the layout of one user-defined type
type Type struct {
	Name    string    `yaml:"name"`
	Parent  string    `yaml:"parent"`
	Stage   int       `yaml:"stage"`
	Params  []Slot    `yaml:"params,omitempty"`
	Fields  []Field   `yaml:"fields,omitempty"`
	Methods []*Method `yaml:"methods,omitempty"`
}

// Slot is a named, typed value such as a parameter
type Slot struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Field is one storage slot of an instance. Inherited fields keep the
// offsets they have in the parent.
type Field struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Offset int    `yaml:"offset"`
	Owner  string `yaml:"owner"`
}

// Method is one dispatch table entry. An override replaces the inherited
// entry at the same index.
type Method struct {
	Name    string `yaml:"name"`
	Owner   string `yaml:"owner"`
	Params  []Slot `yaml:"params,omitempty"`
	Returns string `yaml:"returns"`
}

// Build computes the layout of every user-defined type of a checked
// program and records each type's generation stage in its descriptor
func Build(res *checker.Result) (*Layout, error) {
	if !res.OK() {
		return nil, ErrRejected
	}

	var descs []*types.Descriptor
	for _, d := range res.Types.All() {
		if d.Tag == types.TagUserDefined && d.Initialized {
			d.Stage = stage(res.Types, d.ID)
			descs = append(descs, d)
		}
	}
	sort.SliceStable(descs, func(i, j int) bool {
		return descs[i].Stage < descs[j].Stage
	})

	b := &builder{res: res, byID: make(map[ast.TypeID]*Type)}
	out := &Layout{}
	for _, d := range descs {
		out.Types = append(out.Types, b.build(d))
	}
	return out, nil
}

// stage is the number of user-defined ancestors of id
func stage(tbl *types.Table, id ast.TypeID) int {
	n := 0
	for _, p := range tbl.Ancestors(id) {
		if tbl.Get(p).Tag == types.TagUserDefined {
			n++
		}
	}
	return n
}

type builder struct {
	res  *checker.Result
	byID map[ast.TypeID]*Type
}

func (b *builder) name(id ast.TypeID) string {
	return b.res.Types.Name(id)
}

// build assumes the parent was built first
func (b *builder) build(d *types.Descriptor) *Type {
	t := &Type{Name: d.Name, Parent: b.name(d.Parent), Stage: d.Stage}
	sc := d.Info.Scope

	for _, p := range sc.Filter(scope.Parameter) {
		t.Params = append(t.Params, Slot{Name: p.Name, Type: b.name(p.Type)})
	}

	if parent, ok := b.byID[d.Parent]; ok {
		t.Fields = append(t.Fields, parent.Fields...)
		for _, m := range parent.Methods {
			inherited := *m
			t.Methods = append(t.Methods, &inherited)
		}
	}

	for _, f := range b.res.Types.Fields(d.ID) {
		t.Fields = append(t.Fields, Field{
			Name:   f.Name,
			Type:   b.name(f.Type),
			Offset: len(t.Fields),
			Owner:  d.Name,
		})
	}

	for _, sym := range sc.Filter(scope.TypeMethod) {
		m := &Method{Name: sym.Name, Owner: d.Name, Returns: b.name(sym.Type)}
		if def, ok := sym.Value.(*ast.FunctionDef); ok {
			if msc, ok := b.res.Scopes[def]; ok {
				for _, p := range msc.Filter(scope.Parameter) {
					m.Params = append(m.Params, Slot{Name: p.Name, Type: b.name(p.Type)})
				}
			}
		}
		t.Methods = override(t.Methods, m)
	}

	b.byID[d.ID] = t
	return t
}

func override(methods []*Method, m *Method) []*Method {
	for i, existing := range methods {
		if existing.Name == m.Name {
			methods[i] = m
			return methods
		}
	}
	return append(methods, m)
}

// Lookup returns the layout of the named type
func (l *Layout) Lookup(name string) (*Type, bool) {
	for _, t := range l.Types {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// WriteYAML encodes the layout to w
func (l *Layout) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("layout: marshal: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("layout: encoder close: %w", err)
	}
	return nil
}

// Save writes the YAML layout to path
func (l *Layout) Save(path string) error {
	var buf bytes.Buffer
	if err := l.WriteYAML(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("layout: write %s: %w", path, err)
	}
	return nil
}

// Load reads a layout written by Save
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var l Layout
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("layout: parse %s: %w", path, err)
	}
	return &l, nil
}
