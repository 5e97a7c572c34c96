// Package catalogrt implements executor.Runtime on top of a catalog.Store.
//
// Fields marked @resolver in catalog.graphql (root queries and the
// movie/director relationships) are async: the executor hands them over one
// depth at a time and each (type, field) group is answered with a single
// store call. Scalar fields are read from the parent record synchronously.
// Mutation fields are sync as well, so they run one after another in
// document order.
package catalogrt

import (
	"context"
	_ "embed"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/Monica18narayan/GraphQL/internal/catalog"
	"github.com/Monica18narayan/GraphQL/internal/eventbus"
	"github.com/Monica18narayan/GraphQL/internal/events"
	"github.com/Monica18narayan/GraphQL/internal/executor"
	"github.com/Monica18narayan/GraphQL/internal/schema"
)

//go:embed catalog.graphql
var SDL string

// Schema builds the executable catalog schema.
func Schema() (*schema.Schema, error) {
	return schema.BuildFromSDL(SDL)
}

type fieldKey struct {
	objectType string
	field      string
}

type batchFunc func(r *Runtime, tasks []executor.Task) []executor.TaskResult

type mutationFunc func(r *Runtime, args map[string]any) (value any, id int, found bool)

// Runtime resolves catalog fields against a store. It is safe for
// concurrent use; all synchronization happens inside the store.
type Runtime struct {
	store *catalog.Store
}

var _ executor.Runtime = (*Runtime)(nil)

func New(store *catalog.Store) *Runtime {
	return &Runtime{store: store}
}

var batchResolvers = map[fieldKey]batchFunc{
	{"Query", "movie"}:     (*Runtime).movieByID,
	{"Query", "movies"}:    (*Runtime).allMovies,
	{"Query", "director"}:  (*Runtime).directorByID,
	{"Query", "directors"}: (*Runtime).allDirectors,
	{"Movie", "director"}:  (*Runtime).directorOfMovie,
	{"Director", "movies"}: (*Runtime).moviesOfDirector,
}

var mutations = map[string]mutationFunc{
	"addMovie":       (*Runtime).addMovie,
	"addDirector":    (*Runtime).addDirector,
	"updateMovie":    (*Runtime).updateMovie,
	"updateDirector": (*Runtime).updateDirector,
	"deleteMovie":    (*Runtime).deleteMovie,
	"deleteDirector": (*Runtime).deleteDirector,
}

// ResolveSync reads scalar fields from the parent record and applies
// mutations.
func (r *Runtime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	if objectType == "Mutation" {
		return r.mutate(ctx, field, args)
	}
	switch src := source.(type) {
	case catalog.Movie:
		switch field {
		case "id":
			return src.ID, nil
		case "name":
			return src.Name, nil
		case "directorId":
			return src.DirectorID, nil
		}
	case catalog.Director:
		switch field {
		case "id":
			return src.ID, nil
		case "name":
			return src.Name, nil
		}
	case catalog.DeleteResult:
		switch field {
		case "status":
			return src.Status, nil
		case "deleted":
			return src.Deleted, nil
		case "id":
			return src.ID, nil
		case "message":
			return src.Message, nil
		}
	}
	return nil, fmt.Errorf("catalogrt: no field %s.%s on %T", objectType, field, source)
}

func (r *Runtime) mutate(ctx context.Context, field string, args map[string]any) (any, error) {
	fn, ok := mutations[field]
	if !ok {
		return nil, fmt.Errorf("catalogrt: unknown mutation %s", field)
	}
	start := time.Now()
	value, id, found := fn(r, args)
	eventbus.Publish(ctx, events.CatalogMutation{
		Operation: field,
		ID:        id,
		Found:     found,
		Duration:  time.Since(start),
	})
	return value, nil
}

// ResolveBatch groups tasks by (objectType, field) and resolves each
// group with one store call. Independent groups run concurrently.
func (r *Runtime) ResolveBatch(ctx context.Context, tasks []executor.Task) []executor.TaskResult {
	results := make([]executor.TaskResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	type group struct {
		key  fieldKey
		idxs []int
	}
	var groups []group
	idxByKey := map[fieldKey]int{}
	for i, t := range tasks {
		k := fieldKey{t.ObjectType, t.Field}
		if gi, ok := idxByKey[k]; ok {
			groups[gi].idxs = append(groups[gi].idxs, i)
			continue
		}
		idxByKey[k] = len(groups)
		groups = append(groups, group{key: k, idxs: []int{i}})
	}

	run := func(g group) {
		fn, ok := batchResolvers[g.key]
		if !ok {
			err := fmt.Errorf("catalogrt: no resolver for %s.%s", g.key.objectType, g.key.field)
			for _, i := range g.idxs {
				results[i] = executor.TaskResult{Error: err}
			}
			return
		}
		if err := ctx.Err(); err != nil {
			for _, i := range g.idxs {
				results[i] = executor.TaskResult{Error: err}
			}
			return
		}
		sub := make([]executor.Task, len(g.idxs))
		for j, i := range g.idxs {
			sub[j] = tasks[i]
		}
		for j, res := range fn(r, sub) {
			results[g.idxs[j]] = res
		}
	}

	if len(groups) == 1 {
		run(groups[0])
		return results
	}
	var wg sync.WaitGroup
	wg.Add(len(groups))
	for _, g := range groups {
		g := g
		go func() {
			defer wg.Done()
			run(g)
		}()
	}
	wg.Wait()
	return results
}

// SerializeLeaf maps Go values onto JSON-safe scalars. Named string
// types such as catalog.MutationStatus become plain strings.
func (r *Runtime) SerializeLeaf(_ context.Context, typ string, value any) (any, error) {
	switch v := value.(type) {
	case string, bool, int, float64:
		return v, nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), nil
	case reflect.Float32:
		return rv.Float(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	}
	return nil, fmt.Errorf("catalogrt: cannot serialize %T as %s", value, typ)
}
