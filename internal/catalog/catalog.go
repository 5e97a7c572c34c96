// Package catalog holds the movie and director tables.
//
// A Store owns both tables and guards them with a single RWMutex: each
// operation holds the lock for its whole duration, reads share it and writes
// exclude each other. Operations are not atomic with one another.
package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("catalog: not found")
	// ErrInvalidSeed is returned for seed data that cannot be loaded.
	ErrInvalidSeed = errors.New("catalog: invalid seed")
)

// Director is a person who directs movies.
type Director struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Movie is a film. DirectorID is not checked against the director table and
// may point at a director that does not exist.
type Movie struct {
	ID         int    `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	DirectorID int    `json:"directorId" yaml:"directorId"`
}

// Optional carries a value together with whether it was supplied at all, so
// that zero values can be written on purpose.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] { return Optional[T]{Value: v, Set: true} }

// MoviePatch lists the movie fields an update writes. Unset fields are kept.
type MoviePatch struct {
	Name       Optional[string]
	DirectorID Optional[int]
}

// DirectorPatch lists the director fields an update writes.
type DirectorPatch struct {
	Name Optional[string]
}

// MutationStatus is the outcome of a delete.
type MutationStatus string

const (
	StatusOK       MutationStatus = "OK"
	StatusNotFound MutationStatus = "NOT_FOUND"
)

// DeleteResult reports what a delete did.
type DeleteResult struct {
	Status  MutationStatus `json:"status"`
	Deleted bool           `json:"deleted"`
	ID      int            `json:"id"`
	Message string         `json:"message"`
}

func deleteResult(kind string, id int, deleted bool) DeleteResult {
	if !deleted {
		return DeleteResult{
			Status:  StatusNotFound,
			ID:      id,
			Message: fmt.Sprintf("%s with ID %d not found.", kind, id),
		}
	}
	return DeleteResult{
		Status:  StatusOK,
		Deleted: true,
		ID:      id,
		Message: fmt.Sprintf("%s with ID %d has been deleted.", kind, id),
	}
}
