package client

import (
	"context"
	"net/http"
)

// RemoteInfo describes a registered remote repository.
type RemoteInfo struct {
	RemoteURL string `json:"remote_url"`
	Name      string `json:"name"`
}

func (c *Client) remoteURL(path string) string {
	return c.url().Endpoint("remote").AddPath(path).Build()
}

// AddRemote registers remoteURL at path (e.g. "admin/mydb/remote/origin").
func (c *Client) AddRemote(ctx context.Context, path, remoteURL string) (map[string]interface{}, error) {
	body, err := encodeJSON(map[string]string{"remote_url": remoteURL})
	if err != nil {
		return nil, err
	}
	resp, err := c.send(ctx, http.MethodPost, c.remoteURL(path), nil, body)
	return parseResponse[map[string]interface{}](resp, err)
}

// GetRemote fetches info about the remote registered at path.
func (c *Client) GetRemote(ctx context.Context, path string) (RemoteInfo, error) {
	resp, err := c.send(ctx, http.MethodGet, c.remoteURL(path), nil, nil)
	return parseResponse[RemoteInfo](resp, err)
}

// UpdateRemote replaces the URL of the remote registered at path.
func (c *Client) UpdateRemote(ctx context.Context, path, remoteURL string) (map[string]interface{}, error) {
	body, err := encodeJSON(map[string]string{"remote_url": remoteURL})
	if err != nil {
		return nil, err
	}
	resp, err := c.send(ctx, http.MethodPut, c.remoteURL(path), nil, body)
	return parseResponse[map[string]interface{}](resp, err)
}

// DeleteRemote removes the remote registered at path.
func (c *Client) DeleteRemote(ctx context.Context, path string) (map[string]interface{}, error) {
	resp, err := c.send(ctx, http.MethodDelete, c.remoteURL(path), nil, nil)
	return parseResponse[map[string]interface{}](resp, err)
}

// ListRemotes lists every remote registered under db.
func (c *Client) ListRemotes(ctx context.Context, db string) ([]RemoteInfo, error) {
	u := c.url().Endpoint("remote").AddPath(c.org).AddPath(db).Build()
	resp, err := c.send(ctx, http.MethodGet, u, nil, nil)
	return parseResponse[[]RemoteInfo](resp, err)
}
