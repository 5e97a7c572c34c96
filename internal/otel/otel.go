package otel

import (
	"context"
	"fmt"
	"sync"
	"time"

	eventbus "github.com/Monica18narayan/GraphQL/internal/eventbus"
	events "github.com/Monica18narayan/GraphQL/internal/events"
	reqid "github.com/Monica18narayan/GraphQL/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const tracerName = "moviegraph"

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured. The returned function
// detaches the subscribers and flushes the exporter.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	unsubscribe := newSubscriber(tp.Tracer(tracerName)).register()
	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

// subscriber turns eventbus events into spans. Spans of one request are
// correlated by the server-side request key, never by the client-supplied
// ID: http.request > graphql.operation > catalog.*.
type subscriber struct {
	tracer    trace.Tracer
	httpSpans sync.Map // request key -> trace.Span
	gqlSpans  sync.Map // request key -> trace.Span
}

func newSubscriber(tracer trace.Tracer) *subscriber {
	return &subscriber{tracer: tracer}
}

func (s *subscriber) register() (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPStart) {
			rid, _ := reqid.FromContext(ctx)
			key, _ := reqid.Key(ctx)
			_, span := s.tracer.Start(ctx, "http.request", trace.WithSpanKind(trace.SpanKindServer))
			span.SetAttributes(
				semconv.HTTPMethodKey.String(e.Request.Method),
				attribute.String("http.target", e.Request.URL.Path),
				attribute.String("request.id", rid),
			)
			s.httpSpans.Store(key, span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
			key, _ := reqid.Key(ctx)
			v, ok := s.httpSpans.LoadAndDelete(key)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status))
			if e.Status >= 500 {
				span.SetStatus(codes.Error, fmt.Sprintf("status %d", e.Status))
			}
			span.End()
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.GraphQLStart) {
			key, _ := reqid.Key(ctx)
			_, span := s.tracer.Start(s.parent(ctx, key, &s.httpSpans), "graphql.operation")
			span.SetAttributes(
				attribute.String("graphql.operation.name", e.OperationName),
				attribute.String("graphql.operation.type", e.OperationType),
			)
			s.gqlSpans.Store(key, span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
			key, _ := reqid.Key(ctx)
			v, ok := s.gqlSpans.LoadAndDelete(key)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(
				attribute.Int("graphql.error_count", len(e.Errors)),
				attribute.Bool("graphql.document.cached", e.Cached),
			)
			if len(e.Errors) > 0 {
				span.SetStatus(codes.Error, e.Errors[0].Error())
			}
			span.End()
		}),

		// Mutations are reported after the fact, so the span is back-dated
		// by the mutation's duration.
		eventbus.Subscribe(func(ctx context.Context, e events.CatalogMutation) {
			key, _ := reqid.Key(ctx)
			parent := s.parent(ctx, key, &s.gqlSpans)
			end := time.Now()
			_, span := s.tracer.Start(parent, "catalog."+e.Operation, trace.WithTimestamp(end.Add(-e.Duration)))
			span.SetAttributes(
				attribute.Int("catalog.id", e.ID),
				attribute.Bool("catalog.found", e.Found),
			)
			span.End(trace.WithTimestamp(end))
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// parent returns ctx carrying the span stored for key in spans, falling back
// to the HTTP span.
func (s *subscriber) parent(ctx context.Context, key string, spans *sync.Map) context.Context {
	if v, ok := spans.Load(key); ok {
		return trace.ContextWithSpan(ctx, v.(trace.Span))
	}
	if v, ok := s.httpSpans.Load(key); ok {
		return trace.ContextWithSpan(ctx, v.(trace.Span))
	}
	return ctx
}
