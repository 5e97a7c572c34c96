package schema

// New returns an empty schema with no root types.
func New(description string) *Schema {
	return &Schema{
		Description: description,
		Types:       make(map[string]*Type),
		Directives:  make(map[string]*Directive),
	}
}

// AddType registers t under its name, replacing any previous definition.
func (s *Schema) AddType(t *Type) *Schema {
	if s.Types == nil {
		s.Types = make(map[string]*Type)
	}
	s.Types[t.Name] = t
	return s
}

func (s *Schema) AddDirective(d *Directive) *Schema {
	if s.Directives == nil {
		s.Directives = make(map[string]*Directive)
	}
	s.Directives[d.Name] = d
	return s
}

// NewObject returns an object type with the given fields.
func NewObject(name, description string, fields ...*Field) *Type {
	return &Type{Name: name, Kind: Object, Description: description, Fields: fields}
}

// NewEnum returns an enum type with undeprecated values.
func NewEnum(name, description string, values ...string) *Type {
	t := &Type{Name: name, Kind: Enum, Description: description}
	for _, v := range values {
		t.EnumValues = append(t.EnumValues, &EnumValue{Name: v})
	}
	return t
}

func NewScalar(name, description string) *Type {
	return &Type{Name: name, Kind: Scalar, Description: description}
}

// FieldByName returns the field called name, or nil.
func (t *Type) FieldByName(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func NewField(name string, typ *TypeRef, args ...*InputValue) *Field {
	return &Field{Name: name, Type: typ, Arguments: args}
}

// Batched marks f as async.
func (f *Field) Batched() *Field {
	f.Async = true
	return f
}

func (f *Field) Describe(description string) *Field {
	f.Description = description
	return f
}

// Argument returns the argument called name, or nil.
func (f *Field) Argument(name string) *InputValue {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

func NewArgument(name string, typ *TypeRef, defaultValue any) *InputValue {
	return &InputValue{Name: name, Type: typ, DefaultValue: defaultValue}
}
