// Package client implements the TerminusDB HTTP client: URL building,
// governed/logged request dispatch, document and typed-instance CRUD, WOQL
// execution, database lifecycle, and collaboration endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/terminusdb-labs/terminusdb-go/internal/common"
	"github.com/terminusdb-labs/terminusdb-go/internal/httpclient"
)

// DataVersionHeader is the response header carrying a commit id.
const DataVersionHeader = "TerminusDB-Data-Version"

// Client is a single TerminusDB connection: base endpoint, credentials,
// organization, the HTTP engine, the operation log, and optional governors
// and query-log sink.
type Client struct {
	baseEndpoint string
	org          string
	user         string
	pass         string

	httpEngine *http.Client

	opLog     *OperationLog
	querySink QueryLogSink

	readGovernor  *Governor
	writeGovernor *Governor

	logger arbor.ILogger
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP engine (e.g. for tests).
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.httpEngine = h } }

// WithQueryLogSink attaches a sink receiving structured GraphQL/WOQL records.
func WithQueryLogSink(sink QueryLogSink) Option { return func(c *Client) { c.querySink = sink } }

// WithGovernors installs rate and concurrency limiters resolved explicitly
// by the caller, taking priority over environment configuration.
func WithGovernors(rl RateLimitConfig, cl ConcurrencyLimitConfig) Option {
	return func(c *Client) {
		c.readGovernor = ReadGovernor(c.baseEndpoint, rl, cl)
		c.writeGovernor = WriteGovernor(c.baseEndpoint, rl, cl)
	}
}

// WithLogger overrides the package-level logger fallback.
func WithLogger(l arbor.ILogger) Option { return func(c *Client) { c.logger = l } }

// NewClient builds a client against endpoint, authenticating as user/pass
// and scoped to org. Governors default to environment-variable resolution
// ("explicit builder call > environment > no governor" order) unless
// WithGovernors overrides them.
func NewClient(endpoint, user, pass, org string, opts ...Option) *Client {
	c := &Client{
		baseEndpoint: endpoint,
		org:          org,
		user:         user,
		pass:         pass,
		httpEngine:   httpclient.NewHTTPClientWithAuth(30 * time.Second),
		opLog:        NewOperationLog(),
		logger:       common.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.readGovernor == nil {
		c.readGovernor = ReadGovernor(endpoint, RateLimitConfigFromEnv(), ConcurrencyLimitConfigFromEnv())
	}
	if c.writeGovernor == nil {
		c.writeGovernor = WriteGovernor(endpoint, RateLimitConfigFromEnv(), ConcurrencyLimitConfigFromEnv())
	}
	return c
}

// OperationLog exposes the client's append-only call history.
func (c *Client) OperationLog() *OperationLog { return c.opLog }

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	default:
		return false
	}
}

// rawResponse bundles a response's status, body bytes, and headers — the
// common shape send() produces before callers decode a typed result.
type rawResponse struct {
	Status  int
	Body    []byte
	Headers http.Header
}

// send applies basic auth, acquires the read/write governor for the
// method, performs the request, and appends exactly one operation log
// entry regardless of outcome.
func (c *Client) send(ctx context.Context, method, rawURL string, headers http.Header, body []byte) (*rawResponse, error) {
	started := time.Now()
	entry := OperationEntry{
		OpType:    method,
		Endpoint:  rawURL,
		StartedAt: started,
		Extra:     map[string]string{},
	}

	resp, err := c.doSend(ctx, method, rawURL, headers, body)

	entry.DurationMs = time.Since(started).Milliseconds()
	if err != nil {
		entry.Outcome = Outcome{Success: false, Message: err.Error()}
	} else {
		entry.Outcome = Outcome{Success: resp.Status >= 200 && resp.Status < 300}
		if !entry.Outcome.Success {
			entry.Outcome.Message = fmt.Sprintf("status %d", resp.Status)
		}
	}
	c.opLog.Append(entry)

	if c.logger != nil {
		c.logger.Debug().Str("method", method).Str("url", rawURL).
			Int64("duration_ms", entry.DurationMs).Msg("terminusdb request")
	}

	return resp, err
}

func (c *Client) doSend(ctx context.Context, method, rawURL string, headers http.Header, body []byte) (*rawResponse, error) {
	governor := c.readGovernor
	if isWriteMethod(method) {
		governor = c.writeGovernor
	}
	if governor != nil {
		release, err := governor.Acquire(ctx)
		if err != nil {
			return nil, &GovernorUnavailableError{Err: err}
		}
		defer release()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, &HttpTransportError{Err: err}
	}
	req.SetBasicAuth(c.user, c.pass)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpEngine.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &TimeoutError{Err: ctx.Err()}
		}
		return nil, &HttpTransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &HttpTransportError{Err: err}
	}

	return &rawResponse{Status: resp.StatusCode, Body: data, Headers: resp.Header}, nil
}

// checkStatus converts a non-2xx raw response into the appropriate typed
// error, preferring a structured api:failure/api:what body when present.
func checkStatus(resp *rawResponse) error {
	if resp.Status >= 200 && resp.Status < 300 {
		return nil
	}
	var structured struct {
		Failure string `json:"api:failure"`
		What    string `json:"api:what"`
	}
	if json.Unmarshal(resp.Body, &structured) == nil && structured.Failure != "" {
		return &ServerError{Kind: structured.Failure, Message: structured.What}
	}
	if resp.Status == http.StatusNotFound {
		return &NotFoundError{Resource: ""}
	}
	return &HttpStatusError{Status: resp.Status, Body: string(resp.Body)}
}

// parseResponse decodes resp's body into T after checking its status.
func parseResponse[T any](resp *rawResponse, err error) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if statusErr := checkStatus(resp); statusErr != nil {
		return out, statusErr
	}
	if len(resp.Body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, fmt.Errorf("client: decode response: %w", err)
	}
	return out, nil
}

// WithCommitID pairs a decoded value with the commit id extracted from the
// TerminusDB-Data-Version header, when present.
type WithCommitID[T any] struct {
	Data        T
	CommitID    string
	HasCommitID bool
}

// parseResponseWithHeaders decodes resp's body into T and extracts the
// TerminusDB-Data-Version header into CommitID.
func parseResponseWithHeaders[T any](resp *rawResponse, err error) (WithCommitID[T], error) {
	var out WithCommitID[T]
	if err != nil {
		return out, err
	}
	if statusErr := checkStatus(resp); statusErr != nil {
		return out, statusErr
	}
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &out.Data); err != nil {
			return out, fmt.Errorf("client: decode response: %w", err)
		}
	}
	if commit := resp.Headers.Get(DataVersionHeader); commit != "" {
		out.CommitID, out.HasCommitID = commit, true
	}
	return out, nil
}

func (c *Client) url() *URLBuilder { return BuildURL(c.baseEndpoint) }

func encodeJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
