package client

import (
	"context"
	"net/http"
)

// User is one TerminusDB user account.
type User struct {
	ID    string   `json:"id"`
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// CreateUser registers a new user account.
func (c *Client) CreateUser(ctx context.Context, userID, name, email, password string) (map[string]interface{}, error) {
	body, err := encodeJSON(map[string]string{"id": userID, "name": name, "email": email, "password": password})
	if err != nil {
		return nil, err
	}
	u := c.url().Endpoint("user").Build()
	resp, err := c.send(ctx, http.MethodPost, u, nil, body)
	return parseResponse[map[string]interface{}](resp, err)
}

// GetUser fetches one user's account info.
func (c *Client) GetUser(ctx context.Context, userID string) (User, error) {
	u := c.url().Endpoint("user").AddPath(userID).Build()
	resp, err := c.send(ctx, http.MethodGet, u, nil, nil)
	return parseResponse[User](resp, err)
}

// UpdateUser applies a partial update to an existing user; empty fields
// are left unchanged.
func (c *Client) UpdateUser(ctx context.Context, userID, name, email, password string) (map[string]interface{}, error) {
	body, err := encodeJSON(map[string]string{"name": name, "email": email, "password": password})
	if err != nil {
		return nil, err
	}
	u := c.url().Endpoint("user").AddPath(userID).Build()
	resp, err := c.send(ctx, http.MethodPut, u, nil, body)
	return parseResponse[map[string]interface{}](resp, err)
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, userID string) (map[string]interface{}, error) {
	u := c.url().Endpoint("user").AddPath(userID).Build()
	resp, err := c.send(ctx, http.MethodDelete, u, nil, nil)
	return parseResponse[map[string]interface{}](resp, err)
}

// ListUsers lists every user account the caller can see.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	u := c.url().Endpoint("user").Build()
	resp, err := c.send(ctx, http.MethodGet, u, nil, nil)
	return parseResponse[[]User](resp, err)
}

// CreateOrganization registers a new organization.
func (c *Client) CreateOrganization(ctx context.Context, name string) (map[string]interface{}, error) {
	body, err := encodeJSON(map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	u := c.url().Endpoint("organization").Build()
	resp, err := c.send(ctx, http.MethodPost, u, nil, body)
	return parseResponse[map[string]interface{}](resp, err)
}

// DeleteOrganization removes an organization.
func (c *Client) DeleteOrganization(ctx context.Context, name string) (map[string]interface{}, error) {
	u := c.url().Endpoint("organization").AddPath(name).Build()
	resp, err := c.send(ctx, http.MethodDelete, u, nil, nil)
	return parseResponse[map[string]interface{}](resp, err)
}

// ListOrganizations lists every organization the caller can see.
func (c *Client) ListOrganizations(ctx context.Context) ([]string, error) {
	u := c.url().Endpoint("organization").Build()
	resp, err := c.send(ctx, http.MethodGet, u, nil, nil)
	return parseResponse[[]string](resp, err)
}
