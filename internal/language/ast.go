package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Document and schema types are gqlparser's own; the aliases keep the rest
// of the module off the parser's import path.
type (
	Schema              = ast.Schema
	QueryDocument       = ast.QueryDocument
	OperationDefinition = ast.OperationDefinition
	SelectionSet        = ast.SelectionSet
	Field               = ast.Field
	InlineFragment      = ast.InlineFragment
	FragmentSpread      = ast.FragmentSpread
	Directive           = ast.Directive
	DirectiveList       = ast.DirectiveList
	Argument            = ast.Argument
	ArgumentList        = ast.ArgumentList
	Operation           = ast.Operation
)

// Error is a GraphQL error with message, locations and path.
type Error = gqlerror.Error

type ErrorList = gqlerror.List

const (
	Query        Operation = ast.Query
	Mutation     Operation = ast.Mutation
	Subscription Operation = ast.Subscription

	// Variable is the value kind of a $name reference.
	Variable = ast.Variable
)
