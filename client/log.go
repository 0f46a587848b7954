package client

import (
	"context"
	"net/http"
	"strings"
)

// LogEntry is one commit log record as the log endpoint reports it.
type LogEntry struct {
	Identifier string  `json:"identifier"`
	Author     string  `json:"author"`
	Message    string  `json:"message"`
	Timestamp  float64 `json:"timestamp"`
}

// Log fetches db/branch's commit log, most recent first.
func (c *Client) Log(ctx context.Context, db, branch string) ([]LogEntry, error) {
	u := c.url().Endpoint("log").Database(c.org, db, Branch(branch)).Build()
	resp, err := c.send(ctx, http.MethodGet, u, nil, nil)
	return parseResponse[[]LogEntry](resp, err)
}

// commitLogFor returns the commit identifiers touching id, most recent
// first. TerminusDB's log endpoint does not filter server-side by document
// id, so this walks the full branch log and keeps entries whose commit
// message mentions id — an approximation, since a commit can touch id
// without naming it in the message; exact per-commit attribution would
// require diffing document state at each commit against its parent.
func (c *Client) commitLogFor(ctx context.Context, db, id string) ([]string, error) {
	entries, err := c.Log(ctx, db, "main")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if id == "" || strings.Contains(e.Message, id) {
			out = append(out, e.Identifier)
		}
	}
	return out, nil
}
