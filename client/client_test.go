package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := NewClient(srv.URL, "admin", "secret", "admin",
		WithGovernors(RateLimitConfig{}, ConcurrencyLimitConfig{}))
	return c, srv
}

func TestSendAppendsOperationLogEntryOnSuccess(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})
	defer srv.Close()

	resp, err := c.send(context.Background(), http.MethodGet, srv.URL+"/info", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 1, c.OperationLog().Len())
	assert.True(t, c.OperationLog().Recent(1)[0].Outcome.Success)
}

func TestSendAppendsOperationLogEntryOnFailure(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	_, err := c.send(context.Background(), http.MethodGet, srv.URL+"/info", nil, nil)
	require.NoError(t, err) // transport itself succeeds; status is non-2xx
	assert.Equal(t, 1, c.OperationLog().Len())
	assert.False(t, c.OperationLog().Recent(1)[0].Outcome.Success)
}

func TestCheckStatusPrefersStructuredServerError(t *testing.T) {
	resp := &rawResponse{Status: 400, Body: []byte(`{"api:failure":"DocumentNotFound","api:what":"x"}`)}
	err := checkStatus(resp)
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "DocumentNotFound", serverErr.Kind)
}

func TestCheckStatusFallsBackToNotFound(t *testing.T) {
	resp := &rawResponse{Status: http.StatusNotFound, Body: []byte(`not json`)}
	err := checkStatus(resp)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestCheckStatusFallsBackToGenericHTTPStatusError(t *testing.T) {
	resp := &rawResponse{Status: 418, Body: []byte("teapot")}
	err := checkStatus(resp)
	var statusErr *HttpStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 418, statusErr.Status)
}

func TestParseResponseWithHeadersExtractsCommitID(t *testing.T) {
	resp := &rawResponse{
		Status:  200,
		Body:    []byte(`["a","b"]`),
		Headers: http.Header{DataVersionHeader: []string{"branch:abc123"}},
	}
	out, err := parseResponseWithHeaders[[]string](resp, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out.Data)
	assert.True(t, out.HasCommitID)
	assert.Equal(t, "branch:abc123", out.CommitID)
}

func TestIsWriteMethod(t *testing.T) {
	assert.True(t, isWriteMethod(http.MethodPost))
	assert.True(t, isWriteMethod(http.MethodPut))
	assert.True(t, isWriteMethod(http.MethodDelete))
	assert.True(t, isWriteMethod(http.MethodPatch))
	assert.False(t, isWriteMethod(http.MethodGet))
}
