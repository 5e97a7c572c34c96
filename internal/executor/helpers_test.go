package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	language "github.com/Monica18narayan/GraphQL/internal/language"
	schema "github.com/Monica18narayan/GraphQL/internal/schema"
)

func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	require.NoError(t, err)
	return d
}

func mustBuildSchema(t *testing.T, sdl string) *schema.Schema {
	t.Helper()
	sch, err := schema.BuildFromSDL(sdl)
	require.NoError(t, err)
	return sch
}

// execute runs query and fails the test on a request error.
func execute(t *testing.T, rt Runtime, sch *schema.Schema, query string, vars map[string]any) *Result {
	t.Helper()
	res, err := New(rt, sch).Execute(context.Background(), mustParseQuery(t, query), "", vars)
	require.NoError(t, err)
	return res
}

// fromSource resolves a field by reading key from a map source.
func fromSource(key string) MockResolver {
	return func(_ context.Context, source any, _ map[string]any) (any, error) {
		m, _ := source.(map[string]any)
		return m[key], nil
	}
}

// fieldCalls lists "Type.field" per recorded call, in order.
func fieldCalls(rt *MockRuntime) []string {
	var out []string
	for _, c := range rt.Calls() {
		out = append(out, c.ObjectType+"."+c.Field)
	}
	return out
}
