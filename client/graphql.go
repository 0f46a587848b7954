package client

import (
	"context"
	"net/http"
)

// GraphQLRequest follows the standard GraphQL-over-HTTP request shape.
type GraphQLRequest struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
}

// GraphQLError is one entry of a GraphQL response's "errors" array.
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQLResponse follows the standard GraphQL-over-HTTP response shape.
type GraphQLResponse struct {
	Data   map[string]interface{} `json:"data"`
	Errors []GraphQLError         `json:"errors,omitempty"`
}

// GraphQL executes req against db/branch's GraphQL endpoint.
func (c *Client) GraphQL(ctx context.Context, db, branch string, req GraphQLRequest) (GraphQLResponse, error) {
	body, err := encodeJSON(req)
	if err != nil {
		return GraphQLResponse{}, err
	}
	u := GraphQLURL(c.baseEndpoint, c.org, db, branch)
	resp, err := c.send(ctx, http.MethodPost, u, nil, body)
	out, err := parseResponse[GraphQLResponse](resp, err)
	c.recordQueryLog(db, branch, map[string]interface{}{"query": req.Query}, err)
	return out, err
}
