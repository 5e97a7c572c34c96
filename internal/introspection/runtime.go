package introspection

import (
	"context"
	"sort"
	"strings"

	executor "github.com/Monica18narayan/GraphQL/internal/executor"
	language "github.com/Monica18narayan/GraphQL/internal/language"
	schema "github.com/Monica18narayan/GraphQL/internal/schema"
)

// Wrapper pairs the introspection-aware runtime with the schema it executes
// against. Pass both to executor.New.
type Wrapper struct {
	Runtime executor.Runtime
	Schema  *schema.Schema
}

// Wrap returns a runtime that answers __schema and __type from sch and hands
// every other field to base.
func Wrap(base executor.Runtime, sch *schema.Schema) *Wrapper {
	extended := extendSchema(sch)

	// Introspection describes the schema as written: the query type without
	// the meta fields, plus the meta types.
	visible := *extended
	visible.Types = make(map[string]*schema.Type, len(extended.Types))
	for name, t := range extended.Types {
		visible.Types[name] = t
	}
	if q := sch.Root(language.Query); q != nil {
		visible.Types[q.Name] = q
	}

	return &Wrapper{
		Runtime: &runtime{base: base, schema: &visible, queryType: extended.Query},
		Schema:  extended,
	}
}

type runtime struct {
	base      executor.Runtime
	schema    *schema.Schema
	queryType string
}

func (r *runtime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	if v, ok := r.resolveMeta(objectType, field, source, args); ok {
		return v, nil
	}
	return r.base.ResolveSync(ctx, objectType, field, source, args)
}

func (r *runtime) resolveMeta(objectType, field string, source any, args map[string]any) (any, bool) {
	if objectType == r.queryType {
		switch field {
		case "__schema":
			return r.schema, true
		case "__type":
			name, _ := args["name"].(string)
			if t := r.schema.Types[name]; t != nil {
				return t, true
			}
			return nil, true
		}
		return nil, false
	}
	if !strings.HasPrefix(objectType, "__") {
		return nil, false
	}
	switch src := source.(type) {
	case *schema.Schema:
		return r.schemaField(src, field), true
	case *schema.Type:
		return r.typeField(src, field, args), true
	case *schema.TypeRef:
		return r.typeRefField(src, field, args), true
	case *schema.Field:
		return fieldField(src, field, args), true
	case *schema.InputValue:
		return inputValueField(src, field), true
	case *schema.EnumValue:
		return enumValueField(src, field), true
	case *schema.Directive:
		return directiveField(src, field, args), true
	}
	return nil, false
}

// ResolveBatch passes through: no meta field is async.
func (r *runtime) ResolveBatch(ctx context.Context, tasks []executor.Task) []executor.TaskResult {
	return r.base.ResolveBatch(ctx, tasks)
}

// SerializeLeaf serializes __TypeKind and __DirectiveLocation itself;
// everything else is the base runtime's business.
func (r *runtime) SerializeLeaf(ctx context.Context, typ string, value any) (any, error) {
	if strings.HasPrefix(typ, "__") {
		if s, ok := value.(string); ok {
			return s, nil
		}
	}
	return r.base.SerializeLeaf(ctx, typ, value)
}

func (r *runtime) schemaField(sch *schema.Schema, field string) any {
	switch field {
	case "description":
		return optional(sch.Description)
	case "types":
		out := make([]*schema.Type, 0, len(sch.Types))
		for _, t := range sch.Types {
			out = append(out, t)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out
	case "queryType":
		return sch.Root(language.Query)
	case "mutationType":
		return sch.Root(language.Mutation)
	case "subscriptionType":
		return sch.Root(language.Subscription)
	case "directives":
		out := make([]*schema.Directive, 0, len(sch.Directives))
		for _, d := range sch.Directives {
			out = append(out, d)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out
	}
	return nil
}

func (r *runtime) typeField(t *schema.Type, field string, args map[string]any) any {
	includeDeprecated, _ := args["includeDeprecated"].(bool)
	switch field {
	case "kind":
		return string(t.Kind)
	case "name":
		return t.Name
	case "description":
		return optional(t.Description)
	case "specifiedByURL":
		return optional(t.SpecifiedByURL)
	case "isOneOf":
		return false
	case "fields":
		if t.Kind != schema.Object {
			return nil
		}
		out := []*schema.Field{}
		for _, f := range t.Fields {
			if includeDeprecated || !f.Deprecated {
				out = append(out, f)
			}
		}
		return out
	case "interfaces":
		// Objects implement nothing; other kinds have no interface list.
		if t.Kind != schema.Object {
			return nil
		}
		return []*schema.Type{}
	case "enumValues":
		if t.Kind != schema.Enum {
			return nil
		}
		out := []*schema.EnumValue{}
		for _, v := range t.EnumValues {
			if includeDeprecated || !v.Deprecated {
				out = append(out, v)
			}
		}
		return out
	}
	// ofType, possibleTypes and inputFields are null for named types.
	return nil
}

// typeRefField answers __Type fields for a field or argument type. Wrappers
// report LIST or NON_NULL; a named reference is answered by the named type.
func (r *runtime) typeRefField(tr *schema.TypeRef, field string, args map[string]any) any {
	var kind string
	var ofType *schema.TypeRef
	switch {
	case tr.NonNull:
		kind, ofType = "NON_NULL", tr.Nullable()
	case tr.IsList():
		kind, ofType = "LIST", tr.Elem
	default:
		t := r.schema.Types[tr.Name]
		if t == nil {
			return nil
		}
		return r.typeField(t, field, args)
	}
	switch field {
	case "kind":
		return kind
	case "ofType":
		return ofType
	}
	return nil
}

func fieldField(f *schema.Field, field string, args map[string]any) any {
	switch field {
	case "name":
		return f.Name
	case "description":
		return optional(f.Description)
	case "args":
		includeDeprecated, _ := args["includeDeprecated"].(bool)
		return filterInputValues(f.Arguments, includeDeprecated)
	case "type":
		return f.Type
	case "isDeprecated":
		return f.Deprecated
	case "deprecationReason":
		return deprecationReason(f.Deprecated, f.Reason)
	}
	return nil
}

func inputValueField(v *schema.InputValue, field string) any {
	switch field {
	case "name":
		return v.Name
	case "description":
		return optional(v.Description)
	case "type":
		return v.Type
	case "defaultValue":
		if v.DefaultValue == nil {
			return nil
		}
		return schema.FormatValue(v.DefaultValue)
	case "isDeprecated":
		return v.Deprecated
	case "deprecationReason":
		return deprecationReason(v.Deprecated, v.Reason)
	}
	return nil
}

func enumValueField(v *schema.EnumValue, field string) any {
	switch field {
	case "name":
		return v.Name
	case "description":
		return optional(v.Description)
	case "isDeprecated":
		return v.Deprecated
	case "deprecationReason":
		return deprecationReason(v.Deprecated, v.Reason)
	}
	return nil
}

func directiveField(d *schema.Directive, field string, args map[string]any) any {
	switch field {
	case "name":
		return d.Name
	case "description":
		return optional(d.Description)
	case "isRepeatable":
		return d.IsRepeatable
	case "locations":
		return append([]string(nil), d.Locations...)
	case "args":
		includeDeprecated, _ := args["includeDeprecated"].(bool)
		return filterInputValues(d.Arguments, includeDeprecated)
	}
	return nil
}

func filterInputValues(values []*schema.InputValue, includeDeprecated bool) []*schema.InputValue {
	out := []*schema.InputValue{}
	for _, v := range values {
		if includeDeprecated || !v.Deprecated {
			out = append(out, v)
		}
	}
	return out
}

func deprecationReason(deprecated bool, reason string) any {
	if !deprecated {
		return nil
	}
	return reason
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}
