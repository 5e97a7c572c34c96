package executor

import (
	"context"
	"sync"
)

// MockResolver resolves one field. MockRuntime uses it for sync and batched
// fields alike.
type MockResolver func(ctx context.Context, source any, args map[string]any) (any, error)

// NewMockValueResolver returns a MockResolver that always returns val.
func NewMockValueResolver(val any) MockResolver {
	return func(context.Context, any, map[string]any) (any, error) { return val, nil }
}

func NewMockErrorResolver(err error) MockResolver {
	return func(context.Context, any, map[string]any) (any, error) { return nil, err }
}

// Call records one resolved field. Batch numbers the ResolveBatch call the
// field arrived in, starting at 1; sync fields have Batch 0.
type Call struct {
	ObjectType string
	Field      string
	Source     any
	Args       map[string]any
	Batch      int
}

// MockRuntime resolves fields from a map keyed by "Type.field" and records
// every call. Fields without a resolver are null; leaves pass through.
type MockRuntime struct {
	mu        sync.Mutex
	resolvers map[string]MockResolver
	calls     []Call
	batches   int
}

func NewMockRuntime(resolvers map[string]MockResolver) *MockRuntime {
	m := &MockRuntime{resolvers: make(map[string]MockResolver, len(resolvers))}
	for k, v := range resolvers {
		m.resolvers[k] = v
	}
	return m
}

func (m *MockRuntime) SetResolver(objectType, field string, r MockResolver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolvers[objectType+"."+field] = r
}

func (m *MockRuntime) call(ctx context.Context, batch int, objectType, field string, source any, args map[string]any) (any, error) {
	m.mu.Lock()
	r := m.resolvers[objectType+"."+field]
	m.calls = append(m.calls, Call{ObjectType: objectType, Field: field, Source: source, Args: args, Batch: batch})
	m.mu.Unlock()
	if r == nil {
		return nil, nil
	}
	return r(ctx, source, args)
}

func (m *MockRuntime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	return m.call(ctx, 0, objectType, field, source, args)
}

func (m *MockRuntime) ResolveBatch(ctx context.Context, tasks []Task) []TaskResult {
	m.mu.Lock()
	m.batches++
	batch := m.batches
	m.mu.Unlock()

	results := make([]TaskResult, len(tasks))
	for i, t := range tasks {
		v, err := m.call(ctx, batch, t.ObjectType, t.Field, t.Source, t.Args)
		results[i] = TaskResult{Value: v, Error: err}
	}
	return results
}

func (m *MockRuntime) SerializeLeaf(_ context.Context, _ string, value any) (any, error) {
	return value, nil
}

// Calls returns the recorded calls in order.
func (m *MockRuntime) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}
