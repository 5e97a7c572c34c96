package catalogrt

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/Monica18narayan/GraphQL/internal/catalog"
	"github.com/Monica18narayan/GraphQL/internal/eventbus"
	"github.com/Monica18narayan/GraphQL/internal/events"
	"github.com/Monica18narayan/GraphQL/internal/executor"
	"github.com/Monica18narayan/GraphQL/internal/language"
	"github.com/Monica18narayan/GraphQL/internal/schema"
)

// countingRuntime records how many batches reach the catalog runtime.
type countingRuntime struct {
	*Runtime
	mu      sync.Mutex
	batches [][]string
}

func (c *countingRuntime) ResolveBatch(ctx context.Context, tasks []executor.Task) []executor.TaskResult {
	keys := make([]string, len(tasks))
	for i, t := range tasks {
		keys[i] = t.ObjectType + "." + t.Field
	}
	c.mu.Lock()
	c.batches = append(c.batches, keys)
	c.mu.Unlock()
	return c.Runtime.ResolveBatch(ctx, tasks)
}

type harness struct {
	store  *catalog.Store
	schema *schema.Schema
	rt     *countingRuntime
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	sch, err := Schema()
	require.NoError(t, err)
	store := catalog.NewStore(catalog.DefaultSeed())
	return &harness{store: store, schema: sch, rt: &countingRuntime{Runtime: New(store)}}
}

func (h *harness) run(t *testing.T, query string, vars map[string]any) map[string]any {
	t.Helper()
	doc, errs := language.LoadQuery(h.schema.Source, query)
	require.Empty(t, errs)
	res, err := executor.New(h.rt, h.schema).Execute(context.Background(), doc, "", vars)
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	return res.Data
}

func TestMovieWithDirector(t *testing.T) {
	h := newHarness(t)
	got := h.run(t, `{ movie(id: 1) { id name director { id name } } }`, nil)
	want := map[string]any{"movie": map[string]any{
		"id":       1,
		"name":     "Inception",
		"director": map[string]any{"id": 1, "name": "Christopher Nolan"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDirectorMovies(t *testing.T) {
	h := newHarness(t)
	got := h.run(t, `{ director(id: 3) { name movies { id name } } }`, nil)
	want := map[string]any{"director": map[string]any{
		"name": "Hayao Miyazaki",
		"movies": []any{
			map[string]any{"id": 5, "name": "Spirited Away"},
			map[string]any{"id": 6, "name": "My Neighbor Totoro"},
		},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLookupMisses(t *testing.T) {
	h := newHarness(t)
	got := h.run(t, `{ movie(id: 99) { id } director(id: 99) { id } none: movie { id } }`, nil)
	require.Equal(t, map[string]any{"movie": nil, "director": nil, "none": nil}, got)
}

func TestEverySeededDirectorByID(t *testing.T) {
	h := newHarness(t)
	for _, d := range catalog.DefaultSeed().Directors {
		got := h.run(t, `query ($id: Int) { director(id: $id) { name } }`, map[string]any{"id": float64(d.ID)})
		require.Equal(t, d.Name, got["director"].(map[string]any)["name"])
	}
}

func TestEveryMovieDirectorMatches(t *testing.T) {
	h := newHarness(t)
	h.store.AddMovie("Orphan", 99)

	got := h.run(t, `{ movies { id directorId director { id } } }`, nil)
	movies := got["movies"].([]any)
	require.Len(t, movies, 7)
	for _, v := range movies {
		m := v.(map[string]any)
		if _, ok := h.store.Director(m["directorId"].(int)); ok {
			require.Equal(t, m["directorId"], m["director"].(map[string]any)["id"])
		} else {
			require.Nil(t, m["director"], "movie %v", m["id"])
		}
	}
}

func TestRelationshipsBatchPerDepth(t *testing.T) {
	h := newHarness(t)
	h.run(t, `{ directors { movies { director { name } } } }`, nil)

	require.Len(t, h.rt.batches, 3)
	require.Equal(t, []string{"Query.directors"}, h.rt.batches[0])
	require.Len(t, h.rt.batches[1], 3)
	require.Len(t, h.rt.batches[2], 6)
	for _, k := range h.rt.batches[2] {
		require.Equal(t, "Movie.director", k)
	}
}

func TestAddThenQuery(t *testing.T) {
	h := newHarness(t)
	added := h.run(t, `mutation { addMovie(name: "X", directorId: 1) { id name directorId } }`, nil)
	m := added["addMovie"].(map[string]any)
	require.Equal(t, map[string]any{"id": 7, "name": "X", "directorId": 1}, m)

	got := h.run(t, `query ($id: Int) { movie(id: $id) { name } }`, map[string]any{"id": m["id"]})
	require.Equal(t, "X", got["movie"].(map[string]any)["name"])
}

func TestAddDirectorExtendsList(t *testing.T) {
	h := newHarness(t)
	h.run(t, `mutation { addDirector(name: "Greta Gerwig") { id } }`, nil)

	got := h.run(t, `{ directors { id name } }`, nil)
	directors := got["directors"].([]any)
	require.Len(t, directors, 4)
	require.Equal(t, map[string]any{"id": 4, "name": "Greta Gerwig"}, directors[3])
	require.Equal(t, map[string]any{"id": 1, "name": "Christopher Nolan"}, directors[0])
}

func TestMutationsRunInDocumentOrder(t *testing.T) {
	h := newHarness(t)
	got := h.run(t, `mutation {
  a: addMovie(name: "A", directorId: 1) { id }
  b: addMovie(name: "B", directorId: 1) { id }
  c: deleteMovie(id: 7) { deleted }
  d: addMovie(name: "D", directorId: 1) { id }
}`, nil)
	want := map[string]any{
		"a": map[string]any{"id": 7},
		"b": map[string]any{"id": 8},
		"c": map[string]any{"deleted": true},
		"d": map[string]any{"id": 9},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateMovie(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  any
		row   catalog.Movie
	}{
		{
			name:  "name only",
			query: `mutation { updateMovie(id: 1, name: "Y") { id name directorId } }`,
			want:  map[string]any{"id": 1, "name": "Y", "directorId": 1},
			row:   catalog.Movie{ID: 1, Name: "Y", DirectorID: 1},
		},
		{
			name:  "zero director id is written",
			query: `mutation { updateMovie(id: 1, directorId: 0) { directorId director { id } } }`,
			want:  map[string]any{"directorId": 0, "director": nil},
			row:   catalog.Movie{ID: 1, Name: "Inception", DirectorID: 0},
		},
		{
			name:  "null leaves field unchanged",
			query: `mutation { updateMovie(id: 1, name: null, directorId: 2) { name directorId } }`,
			want:  map[string]any{"name": "Inception", "directorId": 2},
			row:   catalog.Movie{ID: 1, Name: "Inception", DirectorID: 2},
		},
		{
			name:  "missing id",
			query: `mutation { updateMovie(id: 99, name: "Y") { id } }`,
			want:  nil,
			row:   catalog.Movie{ID: 1, Name: "Inception", DirectorID: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			got := h.run(t, tt.query, nil)
			require.Equal(t, tt.want, got["updateMovie"])
			m, _ := h.store.Movie(1)
			require.Equal(t, tt.row, m)
			require.Len(t, h.store.Movies(), 6)
		})
	}
}

func TestUpdateDirector(t *testing.T) {
	h := newHarness(t)
	got := h.run(t, `mutation {
  found: updateDirector(id: 2, name: "") { id name }
  missing: updateDirector(id: 42, name: "Nobody") { id }
}`, nil)
	require.Equal(t, map[string]any{
		"found":   map[string]any{"id": 2, "name": ""},
		"missing": nil,
	}, got)
}

func TestDeleteMovie(t *testing.T) {
	h := newHarness(t)
	before := h.store.Movies()

	got := h.run(t, `mutation { deleteMovie(id: 3) { status deleted id message } }`, nil)
	require.Equal(t, map[string]any{
		"status":  "OK",
		"deleted": true,
		"id":      3,
		"message": "Movie with ID 3 has been deleted.",
	}, got["deleteMovie"])

	after := h.store.Movies()
	want := append(append([]catalog.Movie{}, before[:2]...), before[3:]...)
	require.Equal(t, want, after)

	got = h.run(t, `mutation { deleteMovie(id: 3) { status deleted message } }`, nil)
	require.Equal(t, map[string]any{
		"status":  "NOT_FOUND",
		"deleted": false,
		"message": "Movie with ID 3 not found.",
	}, got["deleteMovie"])
	require.Equal(t, after, h.store.Movies())
}

func TestDeleteDirectorLeavesMovies(t *testing.T) {
	h := newHarness(t)
	got := h.run(t, `mutation { deleteDirector(id: 1) { status } }`, nil)
	require.Equal(t, map[string]any{"status": "OK"}, got["deleteDirector"])

	got = h.run(t, `{ movie(id: 2) { name directorId director { name } } }`, nil)
	require.Equal(t, map[string]any{"name": "The Dark Knight", "directorId": 1, "director": nil}, got["movie"])
}

func TestIDsStayUniqueAfterDelete(t *testing.T) {
	h := newHarness(t)
	h.run(t, `mutation { deleteMovie(id: 6) { deleted } }`, nil)
	got := h.run(t, `mutation { addMovie(name: "Ponyo", directorId: 3) { id } }`, nil)
	require.Equal(t, map[string]any{"id": 7}, got["addMovie"])
}

func TestMutationEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	var got []events.CatalogMutation
	unsubscribe := eventbus.Subscribe[events.CatalogMutation](func(_ context.Context, e events.CatalogMutation) {
		e.Duration = 0
		got = append(got, e)
	})
	defer unsubscribe()

	h := newHarness(t)
	h.run(t, `mutation {
  addDirector(name: "Agnes Varda") { id }
  deleteMovie(id: 99) { deleted }
}`, nil)

	want := []events.CatalogMutation{
		{Operation: "addDirector", ID: 4, Found: true},
		{Operation: "deleteMovie", ID: 99, Found: false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestSerializeLeaf(t *testing.T) {
	rt := New(catalog.NewStore(catalog.Seed{}))
	ctx := context.Background()

	v, err := rt.SerializeLeaf(ctx, "MutationStatus", catalog.StatusNotFound)
	require.NoError(t, err)
	require.Equal(t, "NOT_FOUND", v)

	v, err = rt.SerializeLeaf(ctx, "Int", int32(7))
	require.NoError(t, err)
	require.Equal(t, 7, v)

	_, err = rt.SerializeLeaf(ctx, "String", struct{}{})
	require.Error(t, err)
}

func TestUnknownFieldErrors(t *testing.T) {
	rt := New(catalog.NewStore(catalog.DefaultSeed()))
	res := rt.ResolveBatch(context.Background(), []executor.Task{
		{ObjectType: "Query", Field: "movies"},
		{ObjectType: "Query", Field: "actors"},
	})
	require.Len(t, res, 2)
	require.NoError(t, res[0].Error)
	require.Len(t, res[0].Value, 6)
	require.ErrorContains(t, res[1].Error, "no resolver for Query.actors")

	_, err := rt.ResolveSync(context.Background(), "Movie", "budget", catalog.Movie{}, nil)
	require.Error(t, err)
}

func TestSchema(t *testing.T) {
	sch, err := Schema()
	require.NoError(t, err)
	require.Equal(t, "Mutation", sch.Mutation)
	require.True(t, sch.Types["Movie"].FieldByName("director").Async)
	require.True(t, sch.Types["Query"].FieldByName("movies").Async)
	require.False(t, sch.Types["Mutation"].FieldByName("addMovie").Async)
	require.False(t, sch.Types["Movie"].FieldByName("name").Async)

	sdl := schema.Render(sch)
	require.NotContains(t, sdl, "@resolver")
	require.Contains(t, sdl, "enum MutationStatus")
}

func TestSchemaDescriptions(t *testing.T) {
	sch, err := Schema()
	require.NoError(t, err)

	require.Equal(t, "Root Query", sch.Types["Query"].Description)
	require.Equal(t, "Root Mutation", sch.Types["Mutation"].Description)
	require.Equal(t, "This represents a movie directed by a director", sch.Types["Movie"].Description)
	require.Equal(t, "This represents a director of a movie", sch.Types["Director"].Description)

	want := map[string]string{
		"Query.movie":             "A Single Movie",
		"Query.movies":            "List of All Movies",
		"Query.director":          "A Single Director",
		"Query.directors":         "List of All Directors",
		"Mutation.addMovie":       "Add a movie",
		"Mutation.addDirector":    "Add a director",
		"Mutation.updateMovie":    "Update a movie",
		"Mutation.updateDirector": "Update a director",
		"Mutation.deleteMovie":    "Delete a movie by ID",
		"Mutation.deleteDirector": "Delete a director by ID",
	}
	got := map[string]string{}
	for _, typ := range []string{"Query", "Mutation"} {
		for _, f := range sch.Types[typ].Fields {
			got[typ+"."+f.Name] = f.Description
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("descriptions mismatch (-want +got):\n%s", diff)
	}

	sdl := schema.Render(sch)
	require.Contains(t, sdl, "\"Root Query\"\ntype Query {\n  \"A Single Movie\"\n  movie(id: Int): Movie\n")
}
