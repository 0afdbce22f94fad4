// Package types holds the HULK type table: every builtin and user-defined
// type descriptor of a compilation unit, the inheritance graph between them
// and the conformance relation used by the checker.
package types

import (
	"errors"
	"fmt"

	"github.com/lhaig/hulkc/internal/ast"
	"github.com/lhaig/hulkc/internal/scope"
)

// ID indexes a descriptor in a Table
type ID = ast.TypeID

// Tag classifies a descriptor
type Tag int

const (
	TagUndefined Tag = iota
	TagNull
	TagNumber
	TagString
	TagBoolean
	TagUserDefined
	TagObject
	TagError
)

// String returns the string representation of the tag
func (t Tag) String() string {
	switch t {
	case TagUndefined:
		return "undefined"
	case TagNull:
		return "null"
	case TagNumber:
		return "number"
	case TagString:
		return "string"
	case TagBoolean:
		return "boolean"
	case TagUserDefined:
		return "user-defined"
	case TagObject:
		return "object"
	case TagError:
		return "error"
	default:
		return "unknown"
	}
}

// Builtin type IDs, in the order RegisterBuiltins creates them.
const (
	Object ID = iota + 1
	Number
	Bool
	String
	Null
	Undefined
	Error
)

// ErrorName is the reserved name of the error sentinel type
const ErrorName = "_Error"

var (
	ErrCircular  = errors.New("circular inheritance")
	ErrRedefined = errors.New("type already defined")
	ErrBadParent = errors.New("cannot inherit from builtin type")
)

// Info describes a user-defined type
type Info struct {
	Params []string     // constructor parameter names, in order
	Scope  *scope.Scope // fields and methods
	Def    *ast.TypeDef // originating definition
}

// Descriptor is one node of the type graph
type Descriptor struct {
	ID          ID
	Name        string
	Tag         Tag
	Parent      ID // ast.NoType for roots
	Info        *Info
	Initialized bool // false for a forward-referenced placeholder
	Circular    bool // rejected as part of an inheritance cycle
	Stage       int  // used by code generation
}

// Table owns every descriptor of a compilation unit. Descriptors live in an
// arena so IDs stay valid while placeholders are completed in place.
type Table struct {
	descs  []*Descriptor
	byName map[string]ID
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{
		descs:  []*Descriptor{nil}, // ID 0 is ast.NoType
		byName: make(map[string]ID),
	}
}

// New creates a table with the builtin types registered
func New() *Table {
	t := NewTable()
	t.RegisterBuiltins()
	return t
}

// RegisterBuiltins creates Object, its builtin children and the _Error
// sentinel. It must run on an empty table.
func (t *Table) RegisterBuiltins() {
	if len(t.descs) != 1 {
		panic("internal error: builtins registered on a non-empty type table")
	}
	t.NewBuiltin(TagObject, "Object", ast.NoType)
	t.NewBuiltin(TagNumber, "Number", Object)
	t.NewBuiltin(TagBoolean, "Bool", Object)
	t.NewBuiltin(TagString, "String", Object)
	t.NewBuiltin(TagNull, "Null", Object)
	t.NewBuiltin(TagUndefined, "Undefined", Object)
	t.NewBuiltin(TagError, ErrorName, ast.NoType)
}

func (t *Table) add(d *Descriptor) ID {
	if _, exists := t.byName[d.Name]; exists {
		panic(fmt.Sprintf("internal error: duplicate type descriptor '%s'", d.Name))
	}
	d.ID = ID(len(t.descs))
	t.descs = append(t.descs, d)
	t.byName[d.Name] = d.ID
	return d.ID
}

// NewBuiltin registers a builtin type
func (t *Table) NewBuiltin(tag Tag, name string, parent ID) ID {
	return t.add(&Descriptor{Name: name, Tag: tag, Parent: parent, Initialized: true})
}

// NewUserDefined registers a user-defined type. info is nil for a
// placeholder created by a forward reference.
func (t *Table) NewUserDefined(name string, info *Info, parent ID, initialized bool) ID {
	return t.add(&Descriptor{
		Name:        name,
		Tag:         TagUserDefined,
		Parent:      parent,
		Info:        info,
		Initialized: initialized,
	})
}

// Lookup finds a type by name
func (t *Table) Lookup(name string) (ID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Get returns the descriptor for id. Unknown IDs are a checker bug.
func (t *Table) Get(id ID) *Descriptor {
	if id <= ast.NoType || int(id) >= len(t.descs) {
		panic(fmt.Sprintf("internal error: unknown type id %d", id))
	}
	return t.descs[id]
}

// Name returns the name of a type, or "<unresolved>" for ast.NoType
func (t *Table) Name(id ID) string {
	if id == ast.NoType {
		return "<unresolved>"
	}
	return t.Get(id).Name
}

// All returns every descriptor in creation order
func (t *Table) All() []*Descriptor {
	return t.descs[1:]
}

// Len returns the number of descriptors
func (t *Table) Len() int {
	return len(t.descs) - 1
}

// IsBuiltin reports whether id is a builtin type
func (t *Table) IsBuiltin(id ID) bool {
	return t.Get(id).Tag != TagUserDefined
}

// AddUserDefined registers the type declared by def, completing an existing
// placeholder in place when a subtype referenced it first. A missing parent
// becomes a placeholder parented to Object. Cycles are rejected before def's
// descriptor is touched. On ErrBadParent the type is still registered, as a
// direct child of Object.
func (t *Table) AddUserDefined(def *ast.TypeDef, sc *scope.Scope) (ID, error) {
	parentName := def.ParentName()

	// Circular descriptors have had their definition processed already, so
	// a later one is a duplicate whatever its parent.
	a, aok := t.Lookup(def.Name)
	if aok && t.IsBuiltin(a) {
		return a, fmt.Errorf("type '%s' is builtin: %w", def.Name, ErrRedefined)
	}
	if aok && (t.Get(a).Initialized || t.Get(a).Circular) {
		return a, fmt.Errorf("type '%s': %w", def.Name, ErrRedefined)
	}

	if parentName == def.Name {
		return t.reject(def.Name), fmt.Errorf("type '%s' inherits from itself: %w", def.Name, ErrCircular)
	}

	b, bok := t.Lookup(parentName)
	if !bok {
		b = t.NewUserDefined(parentName, nil, Object, false)
	}

	if aok && t.InheritsFrom(b, a) {
		for _, id := range t.Ancestors(b) {
			if id == a {
				break
			}
			t.markCircular(id)
		}
		t.markCircular(b)
		t.markCircular(a)
		return a, fmt.Errorf("type '%s' inherits from '%s', which inherits from '%s': %w",
			def.Name, parentName, def.Name, ErrCircular)
	}

	var err error
	if t.IsBuiltin(b) && b != Object {
		err = fmt.Errorf("type '%s' cannot inherit from '%s': %w", def.Name, parentName, ErrBadParent)
		b = Object
	}

	info := &Info{Scope: sc, Def: def}
	for _, p := range def.Params {
		info.Params = append(info.Params, p.Name)
	}

	if aok {
		d := t.Get(a)
		d.Info = info
		d.Parent = b
		d.Initialized = true
		return a, err
	}
	return t.NewUserDefined(def.Name, info, b, true), err
}

func (t *Table) markCircular(id ID) {
	d := t.Get(id)
	if d.Tag != TagUserDefined {
		return
	}
	d.Initialized = false
	d.Circular = true
}

// reject marks a self-inheriting type, creating a placeholder if needed
func (t *Table) reject(name string) ID {
	id, ok := t.Lookup(name)
	if !ok {
		id = t.NewUserDefined(name, nil, Object, false)
	}
	t.markCircular(id)
	return id
}

// Ancestors returns the parent chain of id, nearest first, excluding id
func (t *Table) Ancestors(id ID) []ID {
	var out []ID
	for p := t.Get(id).Parent; p != ast.NoType; p = t.Get(p).Parent {
		out = append(out, p)
	}
	return out
}

func (t *Table) same(a, b ID) bool {
	da, db := t.Get(a), t.Get(b)
	if da.Tag == TagUserDefined || db.Tag == TagUserDefined {
		return da.Tag == db.Tag && da.Name == db.Name
	}
	return da.Tag == db.Tag
}

// InheritsFrom reports whether t2 is a strict ancestor of t1
func (t *Table) InheritsFrom(t1, t2 ID) bool {
	for _, p := range t.Ancestors(t1) {
		if t.same(p, t2) {
			return true
		}
	}
	return false
}

// Conforms reports whether a value of type t1 may be used where t2 is
// expected. The error sentinel conforms both ways since its failure has
// already been reported.
func (t *Table) Conforms(t1, t2 ID) bool {
	if t1 == Error || t2 == Error {
		return true
	}
	return t.same(t1, t2) || t.InheritsFrom(t1, t2)
}

// Fields returns the field symbols of a user-defined type in declaration
// order, without self
func (t *Table) Fields(id ID) []*scope.Symbol {
	d := t.Get(id)
	if d.Info == nil || d.Info.Scope == nil {
		return nil
	}
	var out []*scope.Symbol
	for _, sym := range d.Info.Scope.Filter(scope.TypeField) {
		if sym.Name != "self" {
			out = append(out, sym)
		}
	}
	return out
}

// FindMethod looks name up in id's own scope and then in its ancestors.
// It returns the method symbol and the type that declares it.
func (t *Table) FindMethod(id ID, name string) (*scope.Symbol, ID) {
	for cur := id; cur != ast.NoType; cur = t.Get(cur).Parent {
		d := t.Get(cur)
		if d.Info == nil || d.Info.Scope == nil {
			continue
		}
		if sym := d.Info.Scope.Lookup(name, scope.TypeMethod, false); sym != nil {
			return sym, cur
		}
	}
	return nil, ast.NoType
}

// ConstructorParams returns the declared constructor parameters of a
// user-defined type. Object and placeholders take none.
func (t *Table) ConstructorParams(id ID) []*ast.Param {
	d := t.Get(id)
	if d.Info == nil || d.Info.Def == nil {
		return nil
	}
	return d.Info.Def.Params
}
