package client

import (
	"context"
	"net/http"
)

type collaborationBody struct {
	Remote       string `json:"remote"`
	RemoteBranch string `json:"remote_branch,omitempty"`
	Author       string `json:"author,omitempty"`
	Message      string `json:"message,omitempty"`
}

// Fetch pulls refs from remoteURL into path's local repository state.
func (c *Client) Fetch(ctx context.Context, path, remoteURL string) (map[string]interface{}, error) {
	return c.collaborationCall(ctx, "fetch", path, collaborationBody{Remote: remoteURL})
}

// Push sends local commits under path to remoteURL, optionally onto
// remoteBranch.
func (c *Client) Push(ctx context.Context, path, remoteURL, remoteBranch, author, message string) (map[string]interface{}, error) {
	return c.collaborationCall(ctx, "push", path, collaborationBody{
		Remote: remoteURL, RemoteBranch: remoteBranch, Author: author, Message: message,
	})
}

// Pull fetches and merges remoteURL into path.
func (c *Client) Pull(ctx context.Context, path, remoteURL, author, message string) (map[string]interface{}, error) {
	return c.collaborationCall(ctx, "pull", path, collaborationBody{Remote: remoteURL, Author: author, Message: message})
}

// CloneRepository clones remoteURL into a new local database named db.
func (c *Client) CloneRepository(ctx context.Context, db, remoteURL, label, comment string) (map[string]interface{}, error) {
	body, err := encodeJSON(map[string]interface{}{
		"remote_url": remoteURL,
		"label":      label,
		"comment":    comment,
	})
	if err != nil {
		return nil, err
	}
	u := c.url().Endpoint("clone").AddPath(c.org).AddPath(db).Build()
	resp, err := c.send(ctx, http.MethodPost, u, nil, body)
	return parseResponse[map[string]interface{}](resp, err)
}

func (c *Client) collaborationCall(ctx context.Context, endpoint, path string, body collaborationBody) (map[string]interface{}, error) {
	encoded, err := encodeJSON(body)
	if err != nil {
		return nil, err
	}
	u := c.url().Endpoint(endpoint).AddPath(path).Build()
	resp, err := c.send(ctx, http.MethodPost, u, nil, encoded)
	return parseResponse[map[string]interface{}](resp, err)
}
