package client

import (
	"fmt"
	"net/url"
	"strings"
)

// BranchSpec selects either a branch name or a commit id on a database, the
// `/local/branch/<branch>` or `/local/commit/<commit>` URL segment.
type BranchSpec struct {
	Branch   string
	Commit   string
	IsCommit bool
}

// Branch builds a BranchSpec naming a branch.
func Branch(name string) BranchSpec { return BranchSpec{Branch: name} }

// AtCommit builds a BranchSpec naming a specific commit.
func AtCommit(commit string) BranchSpec { return BranchSpec{Commit: commit, IsCommit: true} }

func (b BranchSpec) segments() []string {
	if b.IsCommit {
		return []string{"local", "commit", b.Commit}
	}
	if b.Branch != "" {
		return []string{"local", "branch", b.Branch}
	}
	return nil
}

// DocumentParams carries the query-string parameters the document endpoints
// accept: author/message/graph_type on writes, id/as_list/unfold on reads.
type DocumentParams struct {
	Author    string
	Message   string
	GraphType string // "instance" or "schema"
	ID        string
	AsList    bool
	Unfold    bool
}

// URLBuilder assembles TerminusDB endpoint URLs:
// <base>/<endpoint>/<org>/<db>[/local/branch/<branch>|/local/commit/<commit>][/<extra>].
type URLBuilder struct {
	base     string
	endpoint string
	org      string
	db       string
	spec     BranchSpec
	hasSpec  bool
	params   url.Values
	extra    []string
}

// BuildURL starts a new builder rooted at base (e.g. "http://127.0.0.1:6363").
func BuildURL(base string) *URLBuilder {
	return &URLBuilder{base: strings.TrimRight(base, "/"), params: url.Values{}}
}

func (b *URLBuilder) Endpoint(name string) *URLBuilder { b.endpoint = name; return b }

// Database scopes the URL to org/db, optionally with a branch or commit spec.
func (b *URLBuilder) Database(org, db string, spec ...BranchSpec) *URLBuilder {
	b.org, b.db = org, db
	if len(spec) > 0 {
		b.spec, b.hasSpec = spec[0], true
	}
	return b
}

// DocumentParams applies author/message/graph_type/id/as_list/unfold as
// query-string parameters.
func (b *URLBuilder) WithDocumentParams(p DocumentParams) *URLBuilder {
	if p.Author != "" {
		b.params.Set("author", p.Author)
	}
	if p.Message != "" {
		b.params.Set("message", p.Message)
	}
	if p.GraphType != "" {
		b.params.Set("graph_type", p.GraphType)
	}
	if p.ID != "" {
		b.params.Set("id", p.ID)
	}
	if p.AsList {
		b.params.Set("as_list", "true")
	}
	if p.Unfold {
		b.params.Set("unfold", "true")
	}
	return b
}

// Param sets an arbitrary single query-string parameter.
func (b *URLBuilder) Param(key, value string) *URLBuilder {
	if value != "" {
		b.params.Set(key, value)
	}
	return b
}

// AddPath appends a raw path segment after the database/branch portion.
func (b *URLBuilder) AddPath(seg string) *URLBuilder {
	b.extra = append(b.extra, seg)
	return b
}

// Build renders the accumulated builder state to a final URL string.
func (b *URLBuilder) Build() string {
	var sb strings.Builder
	sb.WriteString(b.base)
	if b.endpoint != "" {
		fmt.Fprintf(&sb, "/%s", b.endpoint)
	}
	if b.org != "" {
		fmt.Fprintf(&sb, "/%s", b.org)
	}
	if b.db != "" {
		fmt.Fprintf(&sb, "/%s", b.db)
	}
	if b.hasSpec {
		for _, seg := range b.spec.segments() {
			sb.WriteString("/")
			sb.WriteString(seg)
		}
	}
	for _, seg := range b.extra {
		sb.WriteString("/")
		sb.WriteString(seg)
	}
	if len(b.params) > 0 {
		sb.WriteString("?")
		sb.WriteString(b.params.Encode())
	}
	return sb.String()
}

// GraphQLURL builds the <base>/graphql/<org>/<db>/local/branch/<branch> form
// GraphQL endpoints use instead of the generic document/query layout.
func GraphQLURL(base, org, db, branch string) string {
	return BuildURL(base).Endpoint("graphql").Database(org, db, Branch(branch)).Build()
}
