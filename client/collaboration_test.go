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

func TestPushSendsRemoteBranchAuthorMessage(t *testing.T) {
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
	_, err := c.Push(context.Background(), "admin/mydb", "https://remote/db", "main", "alice", "sync")
	require.NoError(t, err)
	assert.Equal(t, "/push/admin/mydb", gotPath)
	assert.Equal(t, "https://remote/db", gotBody["remote"])
	assert.Equal(t, "main", gotBody["remote_branch"])
	assert.Equal(t, "alice", gotBody["author"])
}

func TestCloneRepositoryPostsToCloneEndpoint(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "u", "p", "admin", WithGovernors(RateLimitConfig{}, ConcurrencyLimitConfig{}))
	_, err := c.CloneRepository(context.Background(), "mydb", "https://remote/db", "label", "comment")
	require.NoError(t, err)
	assert.Equal(t, "/clone/admin/mydb", gotPath)
}
