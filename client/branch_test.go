package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBranchPostsOriginWhenGiven(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "u", "p", "admin", WithGovernors(RateLimitConfig{}, ConcurrencyLimitConfig{}))
	err := c.CreateBranch(context.Background(), "mydb", "feature", "main")
	require.NoError(t, err)
	assert.Equal(t, "/branch/admin/mydb/local/branch/feature", gotPath)
	assert.Equal(t, "main", gotBody["origin"])
}

func TestDeleteBranchUsesDELETE(t *testing.T) {
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "u", "p", "admin", WithGovernors(RateLimitConfig{}, ConcurrencyLimitConfig{}))
	err := c.DeleteBranch(context.Background(), "mydb", "feature")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, method)
}
