package client

import (
	"context"
	"net/http"
)

// ServerInfo is the /api/info response: server identity and version.
type ServerInfo struct {
	Version string `json:"terminusdb_version"`
	GitHash string `json:"terminusdb_git_hash,omitempty"`
}

// Info fetches the connected server's version/identity information.
func (c *Client) Info(ctx context.Context) (ServerInfo, error) {
	u := c.url().Endpoint("info").Build()
	resp, err := c.send(ctx, http.MethodGet, u, nil, nil)
	return parseResponse[ServerInfo](resp, err)
}
