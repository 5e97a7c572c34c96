package language

import (
	"errors"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

// ParseQuery parses an executable document without validating it.
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses and validates SDL, merging in the built-in prelude
// (standard scalars, directives and introspection types).
func LoadSchema(name, source string) (*Schema, error) {
	s, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// LoadQuery parses source and validates it against s.
func LoadQuery(s *Schema, source string) (*QueryDocument, ErrorList) {
	doc, errs := gqlparser.LoadQuery(s, source)
	if len(errs) > 0 {
		return nil, errs
	}
	return doc, nil
}

// AsError converts err into a GraphQL error, keeping locations when err
// already is one.
func AsError(err error) *Error {
	var ge *gqlerror.Error
	if errors.As(err, &ge) {
		return ge
	}
	var gl gqlerror.List
	if errors.As(err, &gl) && len(gl) > 0 {
		return gl[0]
	}
	return &Error{Message: err.Error()}
}
