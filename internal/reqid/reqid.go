package reqid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header carrying the request ID in both directions.
const Header = "X-Request-Id"

const maxIncomingLen = 128

type ctxKey struct{}

// ids holds the request ID, which may come from the client, and a key the
// server always generates itself.
type ids struct {
	id  string
	key string
}

// NewContext returns a copy of parent carrying a request ID. A usable
// incoming ID (from the client's Header) is kept; otherwise a random UUID is
// generated. It also returns the ID.
func NewContext(parent context.Context, incoming string) (context.Context, string) {
	v := ids{id: incoming, key: uuid.NewString()}
	if !valid(v.id) {
		v.id = v.key
	}
	return context.WithValue(parent, ctxKey{}, v), v.id
}

// FromContext extracts the request ID from ctx.
// It returns the ID and whether it was present.
func FromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKey{}).(ids)
	return v.id, ok
}

// Key returns the server-generated key of the request in ctx. Unlike the
// request ID it is unique per request even when clients reuse IDs.
func Key(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKey{}).(ids)
	return v.key, ok
}

// valid accepts short IDs made of visible ASCII only, so they are safe to
// echo in headers and log lines.
func valid(id string) bool {
	if id == "" || len(id) > maxIncomingLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
