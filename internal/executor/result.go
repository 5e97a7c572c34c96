package executor

import "fmt"

// Path addresses a response position: field names and list indexes.
type Path []any

func (p Path) with(elem any) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, elem)
}

// Error is a GraphQL error. Request errors, raised before execution starts,
// have no path.
type Error struct {
	Message    string         `json:"message"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e *Error) Error() string { return e.Message }

func requestErrorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Result is the outcome of an executed operation. Data is nil when a
// Non-Null root field failed.
type Result struct {
	Data   map[string]any
	Errors []*Error
}
