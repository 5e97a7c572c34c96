package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	catalog "github.com/Monica18narayan/GraphQL/internal/catalog"
	catalogrt "github.com/Monica18narayan/GraphQL/internal/catalogrt"
	eventbus "github.com/Monica18narayan/GraphQL/internal/eventbus"
	events "github.com/Monica18narayan/GraphQL/internal/events"
	executor "github.com/Monica18narayan/GraphQL/internal/executor"
	reqid "github.com/Monica18narayan/GraphQL/internal/reqid"
	schema "github.com/Monica18narayan/GraphQL/internal/schema"
)

func newTestHandler(t *testing.T, opts ...Option) *Handler {
	t.Helper()
	sch, err := catalogrt.Schema()
	require.NoError(t, err)
	h, err := New(catalogrt.New(catalog.NewStore(catalog.DefaultSeed())), sch, opts...)
	require.NoError(t, err)
	return h
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/graphql", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestPostQuery(t *testing.T) {
	h := newTestHandler(t)
	w := post(t, h, `{"query":"{ movie(id: 1) { id name director { name } } }"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	require.JSONEq(t, `{"data":{"movie":{"id":1,"name":"Inception","director":{"name":"Christopher Nolan"}}}}`, w.Body.String())
}

func TestGetQueryWithVariables(t *testing.T) {
	h := newTestHandler(t)
	q := url.Values{}
	q.Set("query", "query D($id: Int) { director(id: $id) { name } }")
	q.Set("variables", `{"id": 2}`)
	q.Set("operationName", "D")
	req := httptest.NewRequest("GET", "/graphql?"+q.Encode(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"data":{"director":{"name":"Quentin Tarantino"}}}`, w.Body.String())
}

func TestGetRejectsMutation(t *testing.T) {
	h := newTestHandler(t)
	q := url.Values{"query": {`mutation { addDirector(name: "X") { id } }`}}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/graphql?"+q.Encode(), nil))

	out := decode(t, w)
	require.NotContains(t, out, "data")
	require.Contains(t, w.Body.String(), "mutations are not allowed over GET")
}

func TestMutationAndBatch(t *testing.T) {
	h := newTestHandler(t)
	w := post(t, h, `[
  {"query":"mutation { addMovie(name: \"Interstellar\", directorId: 1) { id } }"},
  {"query":"{ director(id: 1) { movies { name } } }"}
]`)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[
  {"data":{"addMovie":{"id":7}}},
  {"data":{"director":{"movies":[{"name":"Inception"},{"name":"The Dark Knight"},{"name":"Interstellar"}]}}}
]`, w.Body.String())
}

func TestValidationErrorsHaveLocations(t *testing.T) {
	h := newTestHandler(t)
	w := post(t, h, `{"query":"{\n  movie(id: 1) { title }\n}"}`)

	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	require.NotContains(t, out, "data")
	errs := out["errors"].([]any)
	require.Len(t, errs, 1)
	e := errs[0].(map[string]any)
	require.Contains(t, e["message"], `Cannot query field "title" on type "Movie"`)
	require.Equal(t, []any{map[string]any{"line": float64(2), "column": float64(18)}}, e["locations"])
}

func TestSyntaxError(t *testing.T) {
	h := newTestHandler(t)
	out := decode(t, post(t, h, `{"query":"{ movie(id: 1) { id "}`))
	require.NotContains(t, out, "data")
	require.Len(t, out["errors"], 1)
}

func TestMissingVariable(t *testing.T) {
	h := newTestHandler(t)
	w := post(t, h, `{"query":"query ($id: Int!) { movie(id: $id) { id } }"}`)

	out := decode(t, w)
	require.NotContains(t, out, "data")
	require.Contains(t, w.Body.String(), "variable $id of required type Int! was not provided")
}

func TestDeleteResultEnvelope(t *testing.T) {
	h := newTestHandler(t)
	w := post(t, h, `{"query":"mutation { deleteMovie(id: 42) { status deleted id message } }"}`)
	require.JSONEq(t, `{"data":{"deleteMovie":{"status":"NOT_FOUND","deleted":false,"id":42,"message":"Movie with ID 42 not found."}}}`, w.Body.String())
}

func TestIntrospection(t *testing.T) {
	query := `{"query":"{ __schema { queryType { name } } }"}`

	enabled := newTestHandler(t)
	require.JSONEq(t, `{"data":{"__schema":{"queryType":{"name":"Query"}}}}`, post(t, enabled, query).Body.String())

	disabled := newTestHandler(t, WithIntrospection(false))
	out := decode(t, post(t, disabled, query))
	require.NotContains(t, out, "data")
	require.Contains(t, out["errors"].([]any)[0].(map[string]any)["message"], "introspection is not allowed")

	w := post(t, disabled, `{"query":"{ movies { __typename } }"}`)
	require.JSONEq(t, `{"data":{"movies":[{"__typename":"Movie"},{"__typename":"Movie"},{"__typename":"Movie"},{"__typename":"Movie"},{"__typename":"Movie"},{"__typename":"Movie"}]}}`, w.Body.String())
}

func TestDocumentCache(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })
	var cached []bool
	defer eventbus.Subscribe(func(_ context.Context, e events.GraphQLFinish) { cached = append(cached, e.Cached) })()

	h := newTestHandler(t, WithCacheSize(1))
	post(t, h, `{"query":"{ movies { id } }"}`)
	post(t, h, `{"query":"{ movies { id } }"}`)
	post(t, h, `{"query":"{ directors { id } }"}`)
	post(t, h, `{"query":"{ movies { id } }"}`)
	post(t, h, `{"query":"{ nope }"}`)
	post(t, h, `{"query":"{ nope }"}`)

	require.Equal(t, []bool{false, true, false, false, false, false}, cached)
	require.Equal(t, 1, h.cache.Len())
}

func TestCacheDisabled(t *testing.T) {
	h := newTestHandler(t, WithCacheSize(0))
	require.Nil(t, h.cache)
	require.Equal(t, http.StatusOK, post(t, h, `{"query":"{ movies { id } }"}`).Code)
}

func TestCORSAndPreflight(t *testing.T) {
	h := newTestHandler(t, WithCORS("http://example.com"))

	req := httptest.NewRequest("POST", "/graphql", bytes.NewBufferString(`{"query":"{ movies { id } }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, "http://example.com", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "Origin", w.Header().Get("Vary"))

	pre := httptest.NewRequest("OPTIONS", "/graphql", nil)
	pre.Header.Set("Origin", "http://example.com")
	pre.Header.Set("Access-Control-Request-Headers", "Content-Type")
	pw := httptest.NewRecorder()
	h.ServeHTTP(pw, pre)
	require.Equal(t, http.StatusNoContent, pw.Code)
	require.Equal(t, "Content-Type", pw.Header().Get("Access-Control-Allow-Headers"))
	require.Equal(t, "GET,POST,OPTIONS", pw.Header().Get("Access-Control-Allow-Methods"))

	other := httptest.NewRequest("OPTIONS", "/graphql", nil)
	other.Header.Set("Origin", "http://evil.example")
	ow := httptest.NewRecorder()
	h.ServeHTTP(ow, other)
	require.Empty(t, ow.Header().Get("Access-Control-Allow-Origin"))
}

func TestMaxBodyBytes(t *testing.T) {
	h := newTestHandler(t, WithMaxBodyBytes(10))
	w := post(t, h, `{"query":"1234567890"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestBadRequests(t *testing.T) {
	h := newTestHandler(t)
	tests := []struct {
		name        string
		method      string
		target      string
		contentType string
		body        string
		status      int
		message     string
	}{
		{"invalid json", "POST", "/graphql", "application/json", `{"query":`, http.StatusBadRequest, "invalid JSON"},
		{"missing query", "POST", "/graphql", "application/json", `{}`, http.StatusBadRequest, "missing 'query'"},
		{"empty batch", "POST", "/graphql", "application/json", `[]`, http.StatusBadRequest, "empty batch"},
		{"content type", "POST", "/graphql", "text/plain", `{ movies { id } }`, http.StatusBadRequest, "unsupported Content-Type"},
		{"get without query", "GET", "/graphql", "", "", http.StatusBadRequest, "missing 'query'"},
		{"bad variables", "GET", "/graphql?query=%7Bmovies%7Bid%7D%7D&variables=%7B", "", "", http.StatusBadRequest, "invalid 'variables' JSON"},
		{"method", "PUT", "/graphql", "", "", http.StatusMethodNotAllowed, "method not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			require.Equal(t, tt.status, w.Code)
			require.Contains(t, w.Body.String(), tt.message)
		})
	}
}

func TestJSONContentTypeWithCharset(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(`{"query":"{ directors { id } }"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGraphiQL(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest("GET", "/graphql", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")
	require.Contains(t, w.Body.String(), "GraphiQL")

	off := newTestHandler(t, WithGraphiQL(false))
	w = httptest.NewRecorder()
	off.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPretty(t *testing.T) {
	h := newTestHandler(t, WithPretty())
	w := post(t, h, `{"query":"{ director(id: 1) { id } }"}`)
	require.Equal(t, "{\n  \"data\": {\n    \"director\": {\n      \"id\": 1\n    }\n  }\n}\n", w.Body.String())
}

func TestRequestID(t *testing.T) {
	rt := executor.NewMockRuntime(nil)
	var captured string
	rt.SetResolver("Query", "hello", func(ctx context.Context, _ any, _ map[string]any) (any, error) {
		captured, _ = reqid.FromContext(ctx)
		return "world", nil
	})
	sch, err := schema.BuildFromSDL(`type Query { hello: String }`)
	require.NoError(t, err)
	h, err := New(rt, sch)
	require.NoError(t, err)

	w := post(t, h, `{"query":"{ hello }"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, captured)
	require.Equal(t, captured, w.Header().Get(reqid.Header))

	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(`{"query":"{ hello }"}`))
	req.Header.Set(reqid.Header, "client-7")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, "client-7", captured)
	require.Equal(t, "client-7", w.Header().Get(reqid.Header))
}

func TestHTTPEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })
	var finished []events.HTTPFinish
	defer eventbus.Subscribe(func(_ context.Context, e events.HTTPFinish) { finished = append(finished, e) })()

	h := newTestHandler(t)
	w := post(t, h, `{"query":"{ directors { id } }"}`)
	post(t, h, `{"query":`)

	require.Len(t, finished, 2)
	require.Equal(t, http.StatusOK, finished[0].Status)
	require.Equal(t, w.Body.Len(), finished[0].Bytes)
	require.Equal(t, http.StatusBadRequest, finished[1].Status)
}

func TestTimeout(t *testing.T) {
	rt := executor.NewMockRuntime(nil)
	rt.SetResolver("Query", "slow", func(ctx context.Context, _ any, _ map[string]any) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	sch, err := schema.BuildFromSDL(`type Query { slow: String }`)
	require.NoError(t, err)
	h, err := New(rt, sch, WithTimeout(10*time.Millisecond))
	require.NoError(t, err)

	w := post(t, h, `{"query":"{ slow }"}`)
	require.JSONEq(t, `{"data":{"slow":null},"errors":[{"message":"context deadline exceeded","path":["slow"]}]}`, w.Body.String())
}

func TestNonNullRootFailureNullsData(t *testing.T) {
	h := newTestHandler(t)
	w := post(t, h, `{"query":"mutation { deleteMovie(id: 3000000000) { status } }"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{
  "data": null,
  "errors": [{"message": "argument \"id\" cannot be coerced: 3000000000 is out of 32-bit range", "path": ["deleteMovie"]}]
}`, w.Body.String())

	// The mutation never ran.
	w = post(t, h, `{"query":"{ movies { id } }"}`)
	require.Len(t, decode(t, w)["data"].(map[string]any)["movies"], 6)
}

func TestDataKeyOnlyAfterExecutionStarts(t *testing.T) {
	h := newTestHandler(t)
	w := post(t, h, `[
  {"query":"mutation { deleteDirector(id: 3000000000) { id } }"},
  {"query":"query A { movie(id: 1) { id } } query B { director(id: 1) { id } }"},
  {"query":"{ movie(id: 99) { id } }"}
]`)

	require.Equal(t, http.StatusOK, w.Code)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	require.Len(t, out, 3)

	data, ok := out[0]["data"]
	require.True(t, ok, "executed operation must carry data")
	require.Nil(t, data)

	require.NotContains(t, out[1], "data", "operation selection fails before execution")
	require.Contains(t, w.Body.String(), "operationName is required")

	require.Equal(t, map[string]any{"movie": nil}, out[2]["data"])
	require.NotContains(t, out[2], "errors")
}
