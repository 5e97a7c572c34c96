package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	language "github.com/Monica18narayan/GraphQL/internal/language"
)

// ResolverDirective marks a field whose value is produced by a resolver
// rather than read from the parent object. Such fields are executed
// asynchronously and batched per depth. The directive never appears in
// rendered SDL.
const ResolverDirective = "resolver"

// BuildFromSDL validates sdl and returns the corresponding Schema. A
// `schema { ... }` block is optional; root types default to Query, Mutation
// and Subscription.
func BuildFromSDL(sdl string) (*Schema, error) {
	if !strings.Contains(sdl, "directive @"+ResolverDirective) {
		sdl = "directive @" + ResolverDirective + " on FIELD_DEFINITION\n" + sdl
	}
	src, err := language.LoadSchema("schema.graphql", sdl)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return BuildFromAST(src)
}

// BuildFromAST converts a validated gqlparser schema. Prelude types (standard
// scalars, introspection types) are kept and flagged BuiltIn so that
// introspection can serve them and Render can skip them.
func BuildFromAST(src *language.Schema) (*Schema, error) {
	s := New(src.Description)
	s.Source = src
	if src.Query != nil {
		s.Query = src.Query.Name
	}
	if src.Mutation != nil {
		s.Mutation = src.Mutation.Name
	}
	if src.Subscription != nil {
		s.Subscription = src.Subscription.Name
	}

	names := make([]string, 0, len(src.Types))
	for name := range src.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t, err := buildType(src.Types[name])
		if err != nil {
			return nil, err
		}
		s.AddType(t)
	}

	for name, def := range src.Directives {
		if name == ResolverDirective {
			continue
		}
		s.AddDirective(buildDirective(def))
	}
	return s, nil
}

func buildType(def *ast.Definition) (*Type, error) {
	t := &Type{Name: def.Name, Description: def.Description, BuiltIn: def.BuiltIn}
	switch def.Kind {
	case ast.Object:
		t.Kind = Object
		for _, fd := range def.Fields {
			// __schema and __type belong to the introspection runtime.
			if strings.HasPrefix(fd.Name, "__") {
				continue
			}
			t.Fields = append(t.Fields, buildField(fd))
		}
	case ast.Enum:
		t.Kind = Enum
		for _, v := range def.EnumValues {
			ev := &EnumValue{Name: v.Name, Description: v.Description}
			if reason, ok := deprecation(v.Directives); ok {
				ev.Deprecate(reason)
			}
			t.EnumValues = append(t.EnumValues, ev)
		}
	case ast.Scalar:
		t.Kind = Scalar
		if d := def.Directives.ForName("specifiedBy"); d != nil {
			if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
				t.SpecifiedByURL = arg.Value.Raw
			}
		}
	default:
		return nil, fmt.Errorf("type %s: %s types are not supported", def.Name, strings.ToLower(string(def.Kind)))
	}
	return t, nil
}

func buildField(fd *ast.FieldDefinition) *Field {
	f := &Field{
		Name:        fd.Name,
		Description: fd.Description,
		Type:        RefOf(fd.Type),
		Async:       fd.Directives.ForName(ResolverDirective) != nil,
	}
	if reason, ok := deprecation(fd.Directives); ok {
		f.Deprecate(reason)
	}
	for _, arg := range fd.Arguments {
		f.Arguments = append(f.Arguments, buildArgument(arg))
	}
	return f
}

func buildArgument(arg *ast.ArgumentDefinition) *InputValue {
	in := &InputValue{
		Name:         arg.Name,
		Description:  arg.Description,
		Type:         RefOf(arg.Type),
		DefaultValue: defaultValue(arg.DefaultValue),
	}
	if reason, ok := deprecation(arg.Directives); ok {
		in.Deprecate(reason)
	}
	return in
}

func buildDirective(def *ast.DirectiveDefinition) *Directive {
	d := &Directive{
		Name:         def.Name,
		Description:  def.Description,
		IsRepeatable: def.IsRepeatable,
		BuiltIn:      def.Position != nil && def.Position.Src != nil && def.Position.Src.BuiltIn,
	}
	for _, loc := range def.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range def.Arguments {
		d.Arguments = append(d.Arguments, buildArgument(arg))
	}
	return d
}

// RefOf converts a parsed type reference, as found on variable definitions.
func RefOf(t *ast.Type) *TypeRef {
	if t == nil {
		return nil
	}
	return &TypeRef{Name: t.NamedType, Elem: RefOf(t.Elem), NonNull: t.NonNull}
}

func defaultValue(v *ast.Value) any {
	if v == nil {
		return nil
	}
	out, err := v.Value(nil)
	if err != nil {
		return nil
	}
	return out
}

func deprecation(dirs ast.DirectiveList) (string, bool) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw, true
	}
	return "No longer supported", true
}
