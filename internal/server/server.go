package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	eventbus "github.com/Monica18narayan/GraphQL/internal/eventbus"
	events "github.com/Monica18narayan/GraphQL/internal/events"
	executor "github.com/Monica18narayan/GraphQL/internal/executor"
	introspection "github.com/Monica18narayan/GraphQL/internal/introspection"
	language "github.com/Monica18narayan/GraphQL/internal/language"
	reqid "github.com/Monica18narayan/GraphQL/internal/reqid"
	schema "github.com/Monica18narayan/GraphQL/internal/schema"
)

// Handler is an http.Handler that serves a GraphQL endpoint.
// It parses and validates requests, runs the executor, and formats responses
// per the GraphQL spec.
type Handler struct {
	exec   *executor.Executor
	schema *schema.Schema
	cache  *lru.Cache[string, *language.QueryDocument]
	opt    Options
}

type Options struct {
	// Timeout sets a default timeout if the incoming request context has none.
	// 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses (useful for dev).
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// CORS configuration. If AllowedOrigins is empty, CORS is disabled.
	CORS CORSOptions

	// GraphiQL enables the in-browser IDE when true.
	GraphiQL bool

	// Introspection allows __schema and __type queries.
	Introspection bool

	// CacheSize is the number of validated documents kept, keyed by query
	// text. 0 disables the cache.
	CacheSize int
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}
func WithGraphiQL(enable bool) Option      { return func(o *Options) { o.GraphiQL = enable } }
func WithIntrospection(enable bool) Option { return func(o *Options) { o.Introspection = enable } }
func WithCacheSize(n int) Option           { return func(o *Options) { o.CacheSize = n } }

// CORSOptions holds simple CORS settings.
type CORSOptions struct {
	AllowedOrigins []string
}

// New creates a GraphQL HTTP handler for runtime and schema. Introspection
// fields are served by wrapping runtime; whether clients may use them is
// decided by WithIntrospection.
func New(runtime executor.Runtime, sch *schema.Schema, opts ...Option) (*Handler, error) {
	op := Options{Timeout: 10 * time.Second, GraphiQL: true, Introspection: true, CacheSize: 256}
	for _, f := range opts {
		f(&op)
	}
	wrapped := introspection.Wrap(runtime, sch)
	h := &Handler{
		exec:   executor.New(wrapped.Runtime, wrapped.Schema),
		schema: sch,
		opt:    op,
	}
	if op.CacheSize > 0 {
		cache, err := lru.New[string, *language.QueryDocument](op.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("document cache: %w", err)
		}
		h.cache = cache
	}
	return h, nil
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	ctx, rid := reqid.NewContext(ctx, r.Header.Get(reqid.Header))
	w := &responseRecorder{ResponseWriter: rw, status: http.StatusOK}
	w.Header().Set(reqid.Header, rid)

	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: w.status, Bytes: w.bytes, Duration: time.Since(start)})
	}()

	if len(h.opt.CORS.AllowedOrigins) > 0 {
		setCORSHeaders(w, r, h.opt.CORS)
	}

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse(&language.Error{Message: "method not allowed"}), h.opt.Pretty)
		return
	}

	// Serve GraphiQL IDE when enabled and the client expects HTML.
	if r.Method == http.MethodGet && h.opt.GraphiQL && acceptsHTML(r.Header.Get("Accept")) && r.URL.Query().Get("query") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(graphiqlPage)
		return
	}

	req, batch, berr := parseRequest(r, h.opt.MaxBodyBytes)
	if berr != nil {
		status := http.StatusBadRequest
		if berr.Message == errBodyTooLargeMessage {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResponse(berr), h.opt.Pretty)
		return
	}

	if batch != nil {
		out := make([]any, len(batch))
		for i := range batch {
			out[i] = h.executeOne(ctx, batch[i], r.Method)
		}
		writeJSON(w, http.StatusOK, out, h.opt.Pretty)
		return
	}

	writeJSON(w, http.StatusOK, h.executeOne(ctx, req, r.Method), h.opt.Pretty)
}

// executeOne answers one request with an errorResult or a dataResult.
func (h *Handler) executeOne(ctx context.Context, req GraphQLRequest, method string) any {
	start := time.Now()
	doc, cached, errs := h.document(req.Query)
	if len(errs) > 0 {
		eventbus.Publish(ctx, events.GraphQLFinish{
			Query:         req.Query,
			OperationName: req.OperationName,
			Errors:        asErrors(errs),
			Duration:      time.Since(start),
		})
		return validationResult(errs)
	}

	opDef := doc.Operations.ForName(req.OperationName)
	if opDef == nil && req.OperationName == "" && len(doc.Operations) == 1 {
		opDef = doc.Operations[0]
	}
	opType := ""
	if opDef != nil {
		opType = string(opDef.Operation)
	}
	if method == http.MethodGet && opDef != nil && opDef.Operation == language.Mutation {
		return errorResponse(&language.Error{Message: "mutations are not allowed over GET"})
	}

	eventbus.Publish(ctx, events.GraphQLStart{Query: req.Query, OperationName: req.OperationName, OperationType: opType})
	result, err := h.exec.Execute(ctx, doc, req.OperationName, req.Variables)
	finish := events.GraphQLFinish{
		Query:         req.Query,
		OperationName: req.OperationName,
		OperationType: opType,
		Cached:        cached,
	}
	if err != nil {
		finish.Errors, finish.Duration = []error{err}, time.Since(start)
		eventbus.Publish(ctx, finish)
		return errorResponse(&language.Error{Message: err.Error()})
	}
	for _, e := range result.Errors {
		finish.Errors = append(finish.Errors, e)
	}
	finish.Duration = time.Since(start)
	eventbus.Publish(ctx, finish)
	return executedResult(result)
}

// document parses and validates query, consulting the document cache first.
// Only documents that passed validation are cached.
func (h *Handler) document(query string) (*language.QueryDocument, bool, language.ErrorList) {
	if h.cache != nil {
		if doc, ok := h.cache.Get(query); ok {
			return doc, true, nil
		}
	}

	var (
		doc  *language.QueryDocument
		errs language.ErrorList
	)
	if h.schema.Source != nil {
		doc, errs = language.LoadQuery(h.schema.Source, query)
	} else {
		var err error
		if doc, err = language.ParseQuery(query); err != nil {
			errs = language.ErrorList{language.AsError(err)}
		}
	}
	if len(errs) > 0 {
		return nil, false, errs
	}
	if !h.opt.Introspection {
		if errs := language.RejectIntrospection(doc); len(errs) > 0 {
			return nil, false, errs
		}
	}
	if h.cache != nil {
		h.cache.Add(query, doc)
	}
	return doc, false, nil
}

func asErrors(list language.ErrorList) []error {
	out := make([]error, len(list))
	for i, e := range list {
		out[i] = e
	}
	return out
}

// responseRecorder remembers the status code and body size for events.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (w *responseRecorder) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	w.wroteHeader = true
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func setCORSHeaders(w http.ResponseWriter, r *http.Request, opts CORSOptions) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	allowed := false
	for _, o := range opts.AllowedOrigins {
		if o == "*" || o == origin {
			allowed = true
			break
		}
	}
	if !allowed {
		return
	}
	if contains(opts.AllowedOrigins, "*") {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	w.Header().Set("Access-Control-Expose-Headers", reqid.Header)
	if r.Method == http.MethodOptions {
		if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
			w.Header().Set("Access-Control-Allow-Headers", hdr)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func acceptsHTML(accept string) bool {
	if accept == "" {
		return false
	}
	for _, p := range strings.Split(accept, ",") {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(p, "text/html") {
			return true
		}
	}
	return false
}
