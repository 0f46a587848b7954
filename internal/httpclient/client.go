// Package httpclient builds the *http.Client instances the client package
// wraps with governors, operation logging, and basic auth.
package httpclient

import (
	"net/http"
	"time"
)

// NewDefaultHTTPClient creates a simple HTTP client with a timeout.
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// NewHTTPClientWithAuth creates an HTTP client ready to make requests
// authenticated with HTTP Basic auth against a single TerminusDB
// host. The credentials are applied per-request by the caller (the basic
// auth header depends on user/pass supplied at call time, not at transport
// construction time), so this constructor only fixes the timeout and
// transport-level behavior.
func NewHTTPClientWithAuth(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
