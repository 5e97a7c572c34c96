package server

import (
	"net/http"

	executor "github.com/Monica18narayan/GraphQL/internal/executor"
	language "github.com/Monica18narayan/GraphQL/internal/language"
)

type specLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type specError struct {
	Message    string         `json:"message"`
	Locations  []specLocation `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// errorResult answers a request that failed before execution started. It has
// no data key.
type errorResult struct {
	Errors []specError `json:"errors"`
}

// dataResult answers an executed operation. The data key is always written;
// it is null when a Non-Null root field failed.
type dataResult struct {
	Data   map[string]any `json:"data"`
	Errors []specError    `json:"errors,omitempty"`
}

func errorResponse(err *language.Error) errorResult {
	return validationResult(language.ErrorList{err})
}

// validationResult reports parse and validation errors with their locations.
func validationResult(errs language.ErrorList) errorResult {
	out := errorResult{Errors: make([]specError, len(errs))}
	for i, e := range errs {
		se := specError{Message: e.Message, Extensions: e.Extensions}
		for _, loc := range e.Locations {
			se.Locations = append(se.Locations, specLocation{Line: loc.Line, Column: loc.Column})
		}
		out.Errors[i] = se
	}
	return out
}

func executedResult(res *executor.Result) dataResult {
	out := dataResult{Data: res.Data}
	if len(res.Errors) == 0 {
		return out
	}
	out.Errors = make([]specError, len(res.Errors))
	for i, e := range res.Errors {
		out.Errors[i] = specError{Message: e.Message, Path: e.Path, Extensions: e.Extensions}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	var (
		body []byte
		err  error
	)
	if pretty {
		body, err = json.MarshalIndent(v, "", "  ")
	} else {
		body, err = json.Marshal(v)
	}
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"errors":[{"message":"failed to encode response"}]}`)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
