package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFetchesCommitHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/log/admin/mydb/local/branch/main", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[{"identifier":"c1","author":"a","message":"touches Person/1"},{"identifier":"c2","author":"a","message":"unrelated"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "u", "p", "admin", WithGovernors(RateLimitConfig{}, ConcurrencyLimitConfig{}))
	entries, err := c.Log(context.Background(), "mydb", "main")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c1", entries[0].Identifier)
}

func TestCommitLogForFiltersByMessageMention(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[{"identifier":"c1","message":"touches Person/1"},{"identifier":"c2","message":"unrelated"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "u", "p", "admin", WithGovernors(RateLimitConfig{}, ConcurrencyLimitConfig{}))
	commits, err := c.commitLogFor(context.Background(), "mydb", "Person/1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, commits)
}
