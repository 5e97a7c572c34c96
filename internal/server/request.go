package server

import (
	"io"
	"mime"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	language "github.com/Monica18narayan/GraphQL/internal/language"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const errBodyTooLargeMessage = "body too large"

type GraphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

// parseRequest reads a GET query string or a POST JSON body. A JSON array
// body is a batch and is returned as the second value.
func parseRequest(r *http.Request, maxBody int64) (GraphQLRequest, []GraphQLRequest, *language.Error) {
	if r.Method == http.MethodGet {
		q := r.URL.Query().Get("query")
		if q == "" {
			return GraphQLRequest{}, nil, &language.Error{Message: "missing 'query'"}
		}
		vars := map[string]any{}
		if v := r.URL.Query().Get("variables"); v != "" {
			if err := json.UnmarshalFromString(v, &vars); err != nil {
				return GraphQLRequest{}, nil, &language.Error{Message: "invalid 'variables' JSON"}
			}
		}
		op := r.URL.Query().Get("operationName")
		return GraphQLRequest{Query: q, Variables: vars, OperationName: op}, nil, nil
	}

	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != "application/json" {
			return GraphQLRequest{}, nil, &language.Error{Message: "unsupported Content-Type"}
		}
	}

	defer r.Body.Close()
	reader := io.Reader(r.Body)
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return GraphQLRequest{}, nil, &language.Error{Message: "failed to read body"}
	}
	if maxBody > 0 && int64(len(body)) > maxBody {
		return GraphQLRequest{}, nil, &language.Error{Message: errBodyTooLargeMessage}
	}

	if first := firstNonSpace(body); first == '[' {
		var arr []GraphQLRequest
		if err := json.Unmarshal(body, &arr); err != nil {
			return GraphQLRequest{}, nil, &language.Error{Message: "invalid JSON"}
		}
		if len(arr) == 0 {
			return GraphQLRequest{}, nil, &language.Error{Message: "empty batch"}
		}
		for _, req := range arr {
			if req.Query == "" {
				return GraphQLRequest{}, nil, &language.Error{Message: "missing 'query'"}
			}
		}
		return GraphQLRequest{}, arr, nil
	}

	var req GraphQLRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return GraphQLRequest{}, nil, &language.Error{Message: "invalid JSON"}
	}
	if req.Query == "" {
		return GraphQLRequest{}, nil, &language.Error{Message: "missing 'query'"}
	}
	return req, nil, nil
}

func firstNonSpace(b []byte) byte {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return c
	}
	return 0
}
