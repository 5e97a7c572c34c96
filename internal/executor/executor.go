package executor

import (
	"context"
	"fmt"
	"reflect"

	language "github.com/Monica18narayan/GraphQL/internal/language"
	schema "github.com/Monica18narayan/GraphQL/internal/schema"
)

type Executor struct {
	runtime Runtime
	schema  *schema.Schema
}

func New(runtime Runtime, sch *schema.Schema) *Executor {
	return &Executor{runtime: runtime, schema: sch}
}

// Execute runs one operation of doc, which must already be validated. A
// non-nil error means execution never started: the operation could not be
// selected or the variables could not be coerced.
func (e *Executor) Execute(ctx context.Context, doc *language.QueryDocument, operationName string, variables map[string]any) (*Result, error) {
	op, err := selectOperation(doc, operationName)
	if err != nil {
		return nil, err
	}
	if op.Operation == language.Subscription {
		return nil, requestErrorf("subscriptions are not supported")
	}
	root := e.schema.Root(op.Operation)
	if root == nil {
		return nil, requestErrorf("schema has no %s type", op.Operation)
	}
	vars, err := coerceVariables(op, variables)
	if err != nil {
		return nil, err
	}

	res := &Result{Data: make(map[string]any)}
	x := &execution{ctx: ctx, runtime: e.runtime, schema: e.schema, doc: doc, vars: vars}
	top := &slot{put: func(any) { res.Data = nil }}
	x.executeFields(top, res.Data, root, op.SelectionSet, nil, nil)
	x.drain()
	res.Errors = x.errors
	return res, nil
}

func selectOperation(doc *language.QueryDocument, name string) (*language.OperationDefinition, error) {
	if op := doc.Operations.ForName(name); op != nil {
		return op, nil
	}
	switch {
	case len(doc.Operations) == 0:
		return nil, requestErrorf("document contains no operations")
	case name == "":
		return nil, requestErrorf("operationName is required when the document contains several operations")
	default:
		return nil, requestErrorf("unknown operation %q", name)
	}
}

type execution struct {
	ctx     context.Context
	runtime Runtime
	schema  *schema.Schema
	doc     *language.QueryDocument
	vars    map[string]any

	pending []*pendingField
	errors  []*Error
}

// slot is a position in the response tree: an object field or a list item.
// The root slot stands for data itself.
type slot struct {
	parent  *slot
	nonNull bool
	put     func(any)
	nulled  bool
}

// nullify writes null at the nearest nullable position at or above s.
func (s *slot) nullify() {
	for s.nonNull && s.parent != nil {
		s = s.parent
	}
	s.put(nil)
	s.nulled = true
}

// dead reports whether s sits below a nulled position.
func (s *slot) dead() bool {
	for ; s != nil; s = s.parent {
		if s.nulled {
			return true
		}
	}
	return false
}

// fieldRef is a schema field as selected by one response key.
type fieldRef struct {
	parent *schema.Type
	def    *schema.Field
	nodes  []*language.Field
}

func (f fieldRef) String() string { return f.parent.Name + "." + f.def.Name }

type pendingField struct {
	slot  *slot
	path  Path
	field fieldRef
	task  Task
}

func (x *execution) errorf(path Path, format string, args ...any) {
	x.errors = append(x.errors, &Error{Message: fmt.Sprintf(format, args...), Path: path})
}

func (x *execution) fail(s *slot, path Path, err error) {
	x.errors = append(x.errors, &Error{Message: err.Error(), Path: path})
	s.nullify()
}

// executeFields fills out with the fields of set. Fields are taken in
// document order and stop as soon as s is nulled.
func (x *execution) executeFields(s *slot, out map[string]any, t *schema.Type, set language.SelectionSet, source any, path Path) {
	for _, g := range x.collectFields(t, set) {
		if s.dead() {
			return
		}
		x.executeField(s, out, t, g, source, path)
	}
}

func (x *execution) executeField(s *slot, out map[string]any, t *schema.Type, g fieldGroup, source any, path Path) {
	node := g.nodes[0]
	p := path.with(g.key)
	if node.Name == "__typename" {
		out[g.key] = t.Name
		return
	}
	def := t.FieldByName(node.Name)
	if def == nil {
		x.errorf(p, "Cannot query field %q on type %q.", node.Name, t.Name)
		return
	}

	key := g.key
	cell := &slot{parent: s, nonNull: def.Type.NonNull, put: func(v any) { out[key] = v }}
	f := fieldRef{parent: t, def: def, nodes: g.nodes}
	args, err := x.coerceArguments(def, node.Arguments)
	if err != nil {
		x.fail(cell, p, err)
		return
	}

	if def.Async {
		out[key] = nil
		x.pending = append(x.pending, &pendingField{
			slot:  cell,
			path:  p,
			field: f,
			task:  Task{ObjectType: t.Name, Field: def.Name, Source: source, Args: args},
		})
		return
	}
	v, err := x.runtime.ResolveSync(x.ctx, t.Name, def.Name, source, args)
	if err != nil {
		x.fail(cell, p, err)
		return
	}
	x.complete(cell, f, def.Type, v, p)
}

// drain resolves queued async fields one depth per runtime batch until
// nothing is left. The context is checked between depths.
func (x *execution) drain() {
	for len(x.pending) > 0 {
		live := make([]*pendingField, 0, len(x.pending))
		for _, p := range x.pending {
			if !p.slot.dead() {
				live = append(live, p)
			}
		}
		x.pending = nil
		if len(live) == 0 {
			return
		}

		if err := x.ctx.Err(); err != nil {
			x.failAll(live, err)
			return
		}
		tasks := make([]Task, len(live))
		for i, p := range live {
			tasks[i] = p.task
		}
		results := x.runtime.ResolveBatch(x.ctx, tasks)
		if len(results) != len(tasks) {
			x.failAll(live, fmt.Errorf("runtime returned %d results for %d tasks", len(results), len(tasks)))
			return
		}
		for i, r := range results {
			p := live[i]
			// An earlier result of this batch may have nulled an ancestor.
			if p.slot.dead() {
				continue
			}
			if r.Error != nil {
				x.fail(p.slot, p.path, r.Error)
				continue
			}
			x.complete(p.slot, p.field, p.field.def.Type, r.Value, p.path)
		}
	}
}

func (x *execution) failAll(fields []*pendingField, err error) {
	for _, p := range fields {
		if !p.slot.dead() {
			x.fail(p.slot, p.path, err)
		}
	}
}

// complete writes value into s shaped by typ, recursing into lists and
// objects. Async fields met on the way are queued for the next depth.
func (x *execution) complete(s *slot, f fieldRef, typ *schema.TypeRef, value any, path Path) {
	if isNil(value) {
		if typ.NonNull {
			x.errorf(path, "Cannot return null for non-nullable field %s.", f)
			s.nullify()
			return
		}
		s.put(nil)
		return
	}
	if typ.IsList() {
		x.completeList(s, f, typ.Elem, value, path)
		return
	}

	named := x.schema.Types[typ.Name]
	if named == nil {
		x.errorf(path, "Unknown type %s.", typ.Name)
		s.nullify()
		return
	}
	if named.Kind == schema.Object {
		out := make(map[string]any)
		s.put(out)
		x.executeFields(s, out, named, subSelections(f.nodes), value, path)
		return
	}
	v, err := x.runtime.SerializeLeaf(x.ctx, named.Name, value)
	if err != nil {
		x.fail(s, path, err)
		return
	}
	s.put(v)
}

func (x *execution) completeList(s *slot, f fieldRef, elem *schema.TypeRef, value any, path Path) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		x.errorf(path, "Expected a list for field %s, got %T.", f, value)
		s.nullify()
		return
	}
	items := make([]any, rv.Len())
	s.put(items)
	for i := range items {
		item := &slot{parent: s, nonNull: elem.NonNull, put: func(v any) { items[i] = v }}
		x.complete(item, f, elem, rv.Index(i).Interface(), path.with(i))
		if s.dead() {
			return
		}
	}
}

type fieldGroup struct {
	key   string
	nodes []*language.Field
}

// collectFields groups the fields of set that apply to t by response key,
// in document order. Fragments are followed once each.
func (x *execution) collectFields(t *schema.Type, set language.SelectionSet) []fieldGroup {
	var groups []fieldGroup
	index := make(map[string]int)
	visited := make(map[string]bool)

	var walk func(language.SelectionSet)
	walk = func(set language.SelectionSet) {
		for _, sel := range set {
			switch sel := sel.(type) {
			case *language.Field:
				if !x.included(sel.Directives) {
					continue
				}
				key := sel.Alias
				if key == "" {
					key = sel.Name
				}
				if i, ok := index[key]; ok {
					groups[i].nodes = append(groups[i].nodes, sel)
					continue
				}
				index[key] = len(groups)
				groups = append(groups, fieldGroup{key: key, nodes: []*language.Field{sel}})
			case *language.InlineFragment:
				if x.included(sel.Directives) && applies(sel.TypeCondition, t) {
					walk(sel.SelectionSet)
				}
			case *language.FragmentSpread:
				if visited[sel.Name] || !x.included(sel.Directives) {
					continue
				}
				visited[sel.Name] = true
				if def := x.doc.Fragments.ForName(sel.Name); def != nil && applies(def.TypeCondition, t) {
					walk(def.SelectionSet)
				}
			}
		}
	}
	walk(set)
	return groups
}

// applies reports whether a fragment on typeCondition selects from t. With
// only object types in the schema the condition must name t.
func applies(typeCondition string, t *schema.Type) bool {
	return typeCondition == "" || typeCondition == t.Name
}

// included evaluates @skip and @include.
func (x *execution) included(dirs language.DirectiveList) bool {
	if d := dirs.ForName("skip"); d != nil && x.condition(d) {
		return false
	}
	if d := dirs.ForName("include"); d != nil && !x.condition(d) {
		return false
	}
	return true
}

func (x *execution) condition(d *language.Directive) bool {
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false
	}
	v, err := arg.Value.Value(x.vars)
	if err != nil {
		return false
	}
	b, _ := v.(bool)
	return b
}

func subSelections(nodes []*language.Field) language.SelectionSet {
	if len(nodes) == 1 {
		return nodes[0].SelectionSet
	}
	var set language.SelectionSet
	for _, n := range nodes {
		set = append(set, n.SelectionSet...)
	}
	return set
}

// isNil treats typed nil pointers, maps and slices as null.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
