package catalogrt

import (
	"errors"
	"fmt"

	"github.com/Monica18narayan/GraphQL/internal/catalog"
	"github.com/Monica18narayan/GraphQL/internal/executor"
)

func (r *Runtime) movieByID(tasks []executor.Task) []executor.TaskResult {
	ids := idArgs(tasks)
	found := r.store.MoviesByID(ids)
	out := make([]executor.TaskResult, len(tasks))
	for i, t := range tasks {
		if id, ok := intArg(t.Args, "id"); ok {
			if m, ok := found[id]; ok {
				out[i].Value = m
			}
		}
	}
	return out
}

func (r *Runtime) directorByID(tasks []executor.Task) []executor.TaskResult {
	ids := idArgs(tasks)
	found := r.store.DirectorsByID(ids)
	out := make([]executor.TaskResult, len(tasks))
	for i, t := range tasks {
		if id, ok := intArg(t.Args, "id"); ok {
			if d, ok := found[id]; ok {
				out[i].Value = d
			}
		}
	}
	return out
}

func (r *Runtime) allMovies(tasks []executor.Task) []executor.TaskResult {
	movies := r.store.Movies()
	out := make([]executor.TaskResult, len(tasks))
	for i := range tasks {
		out[i].Value = movies
	}
	return out
}

func (r *Runtime) allDirectors(tasks []executor.Task) []executor.TaskResult {
	directors := r.store.Directors()
	out := make([]executor.TaskResult, len(tasks))
	for i := range tasks {
		out[i].Value = directors
	}
	return out
}

// directorOfMovie resolves Movie.director for every movie at this depth with
// one lookup. A dangling directorId resolves to null.
func (r *Runtime) directorOfMovie(tasks []executor.Task) []executor.TaskResult {
	out := make([]executor.TaskResult, len(tasks))
	ids := make([]int, 0, len(tasks))
	for i, t := range tasks {
		m, ok := t.Source.(catalog.Movie)
		if !ok {
			out[i].Error = sourceError(t)
			continue
		}
		ids = append(ids, m.DirectorID)
	}
	found := r.store.DirectorsByID(ids)
	for i, t := range tasks {
		if m, ok := t.Source.(catalog.Movie); ok {
			if d, ok := found[m.DirectorID]; ok {
				out[i].Value = d
			}
		}
	}
	return out
}

// moviesOfDirector resolves Director.movies with a single scan of the movie
// table.
func (r *Runtime) moviesOfDirector(tasks []executor.Task) []executor.TaskResult {
	out := make([]executor.TaskResult, len(tasks))
	ids := make([]int, 0, len(tasks))
	for i, t := range tasks {
		d, ok := t.Source.(catalog.Director)
		if !ok {
			out[i].Error = sourceError(t)
			continue
		}
		ids = append(ids, d.ID)
	}
	byDirector := r.store.MoviesByDirector(ids)
	for i, t := range tasks {
		if d, ok := t.Source.(catalog.Director); ok {
			out[i].Value = byDirector[d.ID]
		}
	}
	return out
}

func (r *Runtime) addMovie(args map[string]any) (any, int, bool) {
	name, _ := args["name"].(string)
	directorID, _ := intArg(args, "directorId")
	m := r.store.AddMovie(name, directorID)
	return m, m.ID, true
}

func (r *Runtime) addDirector(args map[string]any) (any, int, bool) {
	name, _ := args["name"].(string)
	d := r.store.AddDirector(name)
	return d, d.ID, true
}

func (r *Runtime) updateMovie(args map[string]any) (any, int, bool) {
	id, _ := intArg(args, "id")
	m, err := r.store.UpdateMovie(id, catalog.MoviePatch{
		Name:       optionalArg[string](args, "name"),
		DirectorID: optionalArg[int](args, "directorId"),
	})
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, id, false
	}
	return m, id, true
}

func (r *Runtime) updateDirector(args map[string]any) (any, int, bool) {
	id, _ := intArg(args, "id")
	d, err := r.store.UpdateDirector(id, catalog.DirectorPatch{
		Name: optionalArg[string](args, "name"),
	})
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, id, false
	}
	return d, id, true
}

func (r *Runtime) deleteMovie(args map[string]any) (any, int, bool) {
	id, _ := intArg(args, "id")
	res := r.store.DeleteMovie(id)
	return res, id, res.Deleted
}

func (r *Runtime) deleteDirector(args map[string]any) (any, int, bool) {
	id, _ := intArg(args, "id")
	res := r.store.DeleteDirector(id)
	return res, id, res.Deleted
}

// optionalArg turns an argument into a patch value: an omitted argument or
// an explicit null is unset, anything else is written.
func optionalArg[T any](args map[string]any, name string) catalog.Optional[T] {
	v, ok := args[name].(T)
	if !ok {
		return catalog.Optional[T]{}
	}
	return catalog.Some(v)
}

func intArg(args map[string]any, name string) (int, bool) {
	id, ok := args[name].(int)
	return id, ok
}

func idArgs(tasks []executor.Task) []int {
	ids := make([]int, 0, len(tasks))
	for _, t := range tasks {
		if id, ok := intArg(t.Args, "id"); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func sourceError(t executor.Task) error {
	return fmt.Errorf("catalogrt: %s.%s: unexpected source %T", t.ObjectType, t.Field, t.Source)
}
