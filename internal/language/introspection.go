package language

import "github.com/vektah/gqlparser/v2/gqlerror"

var introspectionFields = map[string]struct{}{
	"__schema": {},
	"__type":   {},
}

// RejectIntrospection reports one error per __schema or __type selection on
// the root of any query operation in doc. Fragments are followed once.
func RejectIntrospection(doc *QueryDocument) ErrorList {
	var errs ErrorList
	visited := map[string]bool{}
	var walk func(SelectionSet)
	walk = func(set SelectionSet) {
		for _, sel := range set {
			switch s := sel.(type) {
			case *Field:
				if _, ok := introspectionFields[s.Name]; ok {
					errs = append(errs, gqlerror.ErrorPosf(s.Position, "GraphQL introspection is not allowed, but the query contained %s", s.Name))
				}
			case *InlineFragment:
				walk(s.SelectionSet)
			case *FragmentSpread:
				if visited[s.Name] {
					continue
				}
				visited[s.Name] = true
				if def := doc.Fragments.ForName(s.Name); def != nil {
					walk(def.SelectionSet)
				}
			}
		}
	}
	for _, op := range doc.Operations {
		if op.Operation != Query {
			continue
		}
		walk(op.SelectionSet)
	}
	return errs
}
