package catalog

import (
	"fmt"
	"sync"
)

// Store is the in-memory catalog. The zero value is not usable; create one
// with NewStore.
type Store struct {
	mu        sync.RWMutex
	directors []Director
	movies    []Movie

	lastDirectorID int
	lastMovieID    int
}

// NewStore returns a store holding a copy of seed. New ids continue from the
// highest seeded id of each table.
func NewStore(seed Seed) *Store {
	s := &Store{
		directors: append([]Director(nil), seed.Directors...),
		movies:    append([]Movie(nil), seed.Movies...),
	}
	for _, d := range s.directors {
		s.lastDirectorID = max(s.lastDirectorID, d.ID)
	}
	for _, m := range s.movies {
		s.lastMovieID = max(s.lastMovieID, m.ID)
	}
	return s
}

// Movie returns the first movie with the given id.
func (s *Store) Movie(id int) (Movie, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.movieIndex(id)
	if i < 0 {
		return Movie{}, false
	}
	return s.movies[i], true
}

// Movies returns every movie in insertion order.
func (s *Store) Movies() []Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Movie{}, s.movies...)
}

// Director returns the first director with the given id.
func (s *Store) Director(id int) (Director, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.directorIndex(id)
	if i < 0 {
		return Director{}, false
	}
	return s.directors[i], true
}

// Directors returns every director in insertion order.
func (s *Store) Directors() []Director {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Director{}, s.directors...)
}

// MoviesByID looks up several movies under one read lock. Missing ids have
// no entry.
func (s *Store) MoviesByID(ids []int) map[int]Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]Movie, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		if i := s.movieIndex(id); i >= 0 {
			out[id] = s.movies[i]
		}
	}
	return out
}

// DirectorsByID looks up several directors under one read lock. Missing ids
// have no entry.
func (s *Store) DirectorsByID(ids []int) map[int]Director {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]Director, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		if i := s.directorIndex(id); i >= 0 {
			out[id] = s.directors[i]
		}
	}
	return out
}

// MoviesByDirector groups the movies of the given directors with a single
// scan of the movie table. Every requested id has an entry, empty when the
// director has no movies; movies keep table order.
func (s *Store) MoviesByDirector(directorIDs []int) map[int][]Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int][]Movie, len(directorIDs))
	for _, id := range directorIDs {
		out[id] = []Movie{}
	}
	for _, m := range s.movies {
		if list, ok := out[m.DirectorID]; ok {
			out[m.DirectorID] = append(list, m)
		}
	}
	return out
}

// AddMovie appends a movie with a fresh id. directorID is stored as given.
func (s *Store) AddMovie(name string, directorID int) Movie {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastMovieID++
	m := Movie{ID: s.lastMovieID, Name: name, DirectorID: directorID}
	s.movies = append(s.movies, m)
	return m
}

// AddDirector appends a director with a fresh id.
func (s *Store) AddDirector(name string) Director {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastDirectorID++
	d := Director{ID: s.lastDirectorID, Name: name}
	s.directors = append(s.directors, d)
	return d
}

// UpdateMovie applies patch to the first movie with the given id and returns
// the result. It fails with ErrNotFound when there is no such movie.
func (s *Store) UpdateMovie(id int, patch MoviePatch) (Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.movieIndex(id)
	if i < 0 {
		return Movie{}, fmt.Errorf("update movie %d: %w", id, ErrNotFound)
	}
	m := &s.movies[i]
	if patch.Name.Set {
		m.Name = patch.Name.Value
	}
	if patch.DirectorID.Set {
		m.DirectorID = patch.DirectorID.Value
	}
	return *m, nil
}

// UpdateDirector applies patch to the first director with the given id.
func (s *Store) UpdateDirector(id int, patch DirectorPatch) (Director, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.directorIndex(id)
	if i < 0 {
		return Director{}, fmt.Errorf("update director %d: %w", id, ErrNotFound)
	}
	d := &s.directors[i]
	if patch.Name.Set {
		d.Name = patch.Name.Value
	}
	return *d, nil
}

// DeleteMovie removes the first movie with the given id.
func (s *Store) DeleteMovie(id int) DeleteResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.movieIndex(id)
	if i >= 0 {
		s.movies = append(s.movies[:i], s.movies[i+1:]...)
	}
	return deleteResult("Movie", id, i >= 0)
}

// DeleteDirector removes the first director with the given id. The
// director's movies are left in place with their DirectorID unchanged.
func (s *Store) DeleteDirector(id int) DeleteResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.directorIndex(id)
	if i >= 0 {
		s.directors = append(s.directors[:i], s.directors[i+1:]...)
	}
	return deleteResult("Director", id, i >= 0)
}

// Snapshot copies both tables under one read lock.
func (s *Store) Snapshot() Seed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Seed{
		Directors: append([]Director{}, s.directors...),
		Movies:    append([]Movie{}, s.movies...),
	}
}

func (s *Store) movieIndex(id int) int {
	for i, m := range s.movies {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) directorIndex(id int) int {
	for i, d := range s.directors {
		if d.ID == id {
			return i
		}
	}
	return -1
}
