package client

import (
	"context"
	"net/http"
)

func (c *Client) branchURL(db, branch string) string {
	return c.url().Endpoint("branch").Database(c.org, db, Branch(branch)).Build()
}

// CreateBranch creates a new branch in db, optionally forked from origin
// (a branch name, or "" to fork from the current HEAD).
func (c *Client) CreateBranch(ctx context.Context, db, branch, origin string) error {
	body := map[string]interface{}{}
	if origin != "" {
		body["origin"] = origin
	}
	payload, err := encodeJSON(body)
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, http.MethodPost, c.branchURL(db, branch), nil, payload)
	_, err = parseResponse[map[string]interface{}](resp, err)
	return err
}

// DeleteBranch removes branch from db.
func (c *Client) DeleteBranch(ctx context.Context, db, branch string) error {
	resp, err := c.send(ctx, http.MethodDelete, c.branchURL(db, branch), nil, nil)
	_, err = parseResponse[map[string]interface{}](resp, err)
	return err
}
