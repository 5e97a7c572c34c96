package introspection

import (
	"strings"
	"sync"

	language "github.com/Monica18narayan/GraphQL/internal/language"
	schema "github.com/Monica18narayan/GraphQL/internal/schema"
)

var (
	preludeOnce  sync.Once
	preludeTypes map[string]*schema.Type
)

// metaTypes returns the __Schema, __Type, ... definitions of the gqlparser
// prelude. Schemas built from SDL already carry them; hand-assembled ones
// borrow them from here.
func metaTypes() map[string]*schema.Type {
	preludeOnce.Do(func() {
		preludeTypes = make(map[string]*schema.Type)
		sch, err := schema.BuildFromSDL("type Query { _: Boolean }")
		if err != nil {
			panic("introspection: prelude: " + err.Error())
		}
		for name, t := range sch.Types {
			if t.BuiltIn {
				preludeTypes[name] = t
			}
		}
	})
	return preludeTypes
}

// extendSchema returns a copy of original whose query type also exposes
// __schema and __type. original is left untouched.
func extendSchema(original *schema.Schema) *schema.Schema {
	extended := &schema.Schema{
		Description:  original.Description,
		Query:        original.Query,
		Mutation:     original.Mutation,
		Subscription: original.Subscription,
		Types:        make(map[string]*schema.Type, len(original.Types)),
		Directives:   original.Directives,
		Source:       original.Source,
	}
	for name, t := range original.Types {
		extended.Types[name] = t
	}
	for name, t := range metaTypes() {
		if _, ok := extended.Types[name]; !ok && (strings.HasPrefix(name, "__") || name == "String" || name == "Boolean") {
			extended.Types[name] = t
		}
	}

	query := extended.Root(language.Query)
	if query == nil {
		return extended
	}
	q := *query
	q.Fields = append(append([]*schema.Field(nil), query.Fields...),
		schema.NewField("__schema", schema.NonNull(schema.Named("__Schema"))).
			Describe("Access the current type schema of this server."),
		schema.NewField("__type", schema.Named("__Type"),
			schema.NewArgument("name", schema.NonNull(schema.Named("String")), nil)).
			Describe("Request the type information of a single type."),
	)
	extended.Types[q.Name] = &q
	return extended
}
