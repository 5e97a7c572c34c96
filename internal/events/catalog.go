package events

import "time"

// CatalogMutation is emitted after a mutation has been applied to the
// catalog store.
type CatalogMutation struct {
	// Operation is the mutation field name, e.g. "addMovie".
	Operation string
	// ID is the id of the affected record, or the requested id when Found is false.
	ID       int
	Found    bool
	Duration time.Duration
}
