// Package schema is the executable type model: the named types, fields and
// directives the executor and the introspection runtime work from.
//
// Only object, enum and scalar types are modelled. Interfaces, unions and
// input objects are rejected by the builder.
package schema

import (
	"strings"

	language "github.com/Monica18narayan/GraphQL/internal/language"
)

type Schema struct {
	Description string

	// Root type names per operation; empty when the operation is not
	// supported.
	Query        string
	Mutation     string
	Subscription string

	Types      map[string]*Type
	Directives map[string]*Directive

	// Source is the validated document the schema was built from. Queries are
	// validated against it; nil for schemas assembled by hand.
	Source *language.Schema `json:"-"`
}

// Root returns the root type for op, or nil.
func (s *Schema) Root(op language.Operation) *Type {
	var name string
	switch op {
	case language.Query:
		name = s.Query
	case language.Mutation:
		name = s.Mutation
	case language.Subscription:
		name = s.Subscription
	}
	if name == "" {
		return nil
	}
	return s.Types[name]
}

// Kind is the introspection kind of a named type.
type Kind string

const (
	Scalar Kind = "SCALAR"
	Object Kind = "OBJECT"
	Enum   Kind = "ENUM"
)

type Type struct {
	Name        string
	Kind        Kind
	Description string
	Fields      []*Field     // objects
	EnumValues  []*EnumValue // enums

	SpecifiedByURL string
	// BuiltIn marks standard scalars and introspection types.
	BuiltIn bool `json:"-"`
}

// Field is an object field. Async fields are resolved in batches, one
// runtime call per depth; the rest are read off the parent value.
type Field struct {
	Name        string
	Description string
	Type        *TypeRef
	Arguments   []*InputValue
	Async       bool
	Deprecation
}

type EnumValue struct {
	Name        string
	Description string
	Deprecation
}

// InputValue is a field or directive argument. DefaultValue is nil when the
// argument has none.
type InputValue struct {
	Name         string
	Description  string
	Type         *TypeRef
	DefaultValue any
	Deprecation
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
	BuiltIn      bool `json:"-"`
}

// Deprecation is shared by fields, arguments and enum values.
type Deprecation struct {
	Deprecated bool
	Reason     string
}

func (d *Deprecation) Deprecate(reason string) {
	d.Deprecated = true
	d.Reason = reason
}

// TypeRef is a type as written at a use site. It mirrors the parser's
// shape: a reference names a type or wraps an element type in a list, and
// either form may be Non-Null.
type TypeRef struct {
	Name    string
	Elem    *TypeRef
	NonNull bool
}

func Named(name string) *TypeRef { return &TypeRef{Name: name} }

func ListOf(elem *TypeRef) *TypeRef { return &TypeRef{Elem: elem} }

// NonNull returns a Non-Null copy of t.
func NonNull(t *TypeRef) *TypeRef {
	c := *t
	c.NonNull = true
	return &c
}

// Nullable returns t without its Non-Null flag.
func (t *TypeRef) Nullable() *TypeRef {
	c := *t
	c.NonNull = false
	return &c
}

// IsList reports whether t is a list, Non-Null or not.
func (t *TypeRef) IsList() bool { return t.Elem != nil }

// NamedType returns the innermost type name.
func (t *TypeRef) NamedType() string {
	for t.Elem != nil {
		t = t.Elem
	}
	return t.Name
}

// String renders t in SDL notation, e.g. [Movie!]!.
func (t *TypeRef) String() string {
	var b strings.Builder
	if t.Elem != nil {
		b.WriteString("[" + t.Elem.String() + "]")
	} else {
		b.WriteString(t.Name)
	}
	if t.NonNull {
		b.WriteString("!")
	}
	return b.String()
}
