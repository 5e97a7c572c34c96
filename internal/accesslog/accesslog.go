// Package accesslog writes one structured log line per HTTP request, GraphQL
// operation and catalog mutation, fed from the event bus.
package accesslog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Monica18narayan/GraphQL/internal/eventbus"
	"github.com/Monica18narayan/GraphQL/internal/events"
	"github.com/Monica18narayan/GraphQL/internal/reqid"
)

// Register subscribes logger to the global event bus. Requests are logged at
// info level, GraphQL operations and mutations at debug level; operations
// that produced errors are logged as warnings.
func Register(logger zerolog.Logger) (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
			ev := logger.Info()
			if e.Status >= 500 {
				ev = logger.Error()
			}
			withRequestID(ctx, ev).
				Str("method", e.Request.Method).
				Str("path", e.Request.URL.Path).
				Int("status", e.Status).
				Int("bytes", e.Bytes).
				Dur("duration", e.Duration).
				Msg("http request")
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
			ev := logger.Debug()
			if len(e.Errors) > 0 {
				ev = logger.Warn().Errs("errors", e.Errors)
			}
			withRequestID(ctx, ev).
				Str("operation", e.OperationName).
				Str("type", e.OperationType).
				Bool("cached", e.Cached).
				Dur("duration", e.Duration).
				Msg("graphql operation")
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.CatalogMutation) {
			withRequestID(ctx, logger.Debug()).
				Str("mutation", e.Operation).
				Int("id", e.ID).
				Bool("found", e.Found).
				Dur("duration", e.Duration).
				Msg("catalog mutation")
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func withRequestID(ctx context.Context, ev *zerolog.Event) *zerolog.Event {
	if rid, ok := reqid.FromContext(ctx); ok {
		return ev.Str("request_id", rid)
	}
	return ev
}
