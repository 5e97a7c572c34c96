package executor

import "context"

// Runtime supplies field values to the Executor.
//
// Implementations must be safe for concurrent use and must not modify
// sources or argument maps.
type Runtime interface {
	// ResolveSync returns the value of a sync field. source is nil for root
	// fields. A nil value completes as null.
	ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error)

	// ResolveBatch resolves the async fields of one depth. It returns one
	// result per task, results[i] answering tasks[i]; a failed task does not
	// fail the others.
	ResolveBatch(ctx context.Context, tasks []Task) []TaskResult

	// SerializeLeaf turns a scalar or enum value into its JSON form.
	SerializeLeaf(ctx context.Context, typeName string, value any) (any, error)
}

// Task is one pending async field.
type Task struct {
	ObjectType string
	Field      string
	Source     any
	Args       map[string]any
}

type TaskResult struct {
	Value any
	Error error
}
