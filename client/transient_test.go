package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransientHasDocumentPinsWorkingBranch(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "u", "p", "admin", WithGovernors(RateLimitConfig{}, ConcurrencyLimitConfig{}))
	tc := NewTransientClient(c, "mydb", "feature")
	assert.True(t, tc.HasDocument(context.Background(), "Person/1"))
	assert.Equal(t, "/document/admin/mydb/local/branch/feature", gotPath)
}

func TestTransientInsertDocumentForcesWorkingBranchRegardlessOfArgs(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`["Person/1"]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "u", "p", "admin", WithGovernors(RateLimitConfig{}, ConcurrencyLimitConfig{}))
	tc := NewTransientClient(c, "mydb", "feature")
	id, err := tc.InsertDocument(context.Background(), map[string]interface{}{"@id": "Person/1"}, InsertArgs{Author: "a", Message: "m", Branch: "main"})
	require.NoError(t, err)
	assert.Equal(t, "Person/1", id)
	assert.Equal(t, "/document/admin/mydb/local/branch/feature", gotPath)
}

func TestTransientDeleteDocumentUsesWorkingBranch(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "u", "p", "admin", WithGovernors(RateLimitConfig{}, ConcurrencyLimitConfig{}))
	tc := NewTransientClient(c, "mydb", "feature")
	err := tc.DeleteDocument(context.Background(), "Person/1", InsertArgs{Author: "a", Message: "m", Branch: "bogus"})
	require.NoError(t, err)
	assert.Equal(t, "/document/admin/mydb/local/branch/feature", gotPath)
}

func TestSaveInstanceTransientForcesWorkingBranch(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`["instanceTestPerson/1"]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "u", "p", "admin", WithGovernors(RateLimitConfig{}, ConcurrencyLimitConfig{}))
	tc := NewTransientClient(c, "mydb", "feature")
	err := SaveInstanceTransient(context.Background(), tc, &instanceTestPerson{Name: "Bart"}, InsertArgs{Author: "a", Message: "m", Branch: "main"})
	require.NoError(t, err)
	assert.Equal(t, "/document/admin/mydb/local/branch/feature", gotPath)
}

func TestGetInstanceWithHeadersTransientUsesWorkingBranch(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set(DataVersionHeader, "branch:feature:abc")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"Name":"Lisa","@id":"instanceTestPerson/2"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "u", "p", "admin", WithGovernors(RateLimitConfig{}, ConcurrencyLimitConfig{}))
	tc := NewTransientClient(c, "mydb", "feature")
	out, err := GetInstanceWithHeadersTransient[instanceTestPerson](context.Background(), tc, "instanceTestPerson/2")
	require.NoError(t, err)
	assert.Equal(t, "Lisa", out.Data.Name)
	assert.Contains(t, gotPath, "/local/branch/feature")
}

func TestTransientDBAndWorkingBranchAccessors(t *testing.T) {
	c := NewClient("http://h", "u", "p", "admin", WithGovernors(RateLimitConfig{}, ConcurrencyLimitConfig{}))
	tc := NewTransientClient(c, "mydb", "feature")
	assert.Equal(t, "mydb", tc.DB())
	assert.Equal(t, "feature", tc.WorkingBranch())
}
