package client

import (
	"context"

	"github.com/terminusdb-labs/terminusdb-go/woql"
	"github.com/terminusdb-labs/terminusdb-go/woqlbuilder"
)

// TransientClient is a scope-restricted wrapper bound to one working branch
// of one database. It exposes only read/write data operations and WOQL —
// never schema, database, or branch management — and forces every outgoing
// request's branch spec to the working branch regardless of what a caller
// passes, so code written against it cannot drift onto another branch, a
// commit, or a database it was not handed.
type TransientClient struct {
	base    *Client
	db      string
	working string
}

// NewTransientClient binds base to db's working branch.
func NewTransientClient(base *Client, db, working string) *TransientClient {
	return &TransientClient{base: base, db: db, working: working}
}

// DB returns the database name this client is bound to.
func (t *TransientClient) DB() string { return t.db }

// WorkingBranch returns the branch every request on this client targets.
func (t *TransientClient) WorkingBranch() string { return t.working }

func (t *TransientClient) forceArgs(args InsertArgs) InsertArgs {
	args.Branch = t.working
	return args
}

// HasDocument delegates to the base client, pinned to the working branch.
func (t *TransientClient) HasDocument(ctx context.Context, id string) bool {
	return t.base.HasDocument(ctx, t.db, t.working, id)
}

// GetDocument delegates to the base client, pinned to the working branch.
func (t *TransientClient) GetDocument(ctx context.Context, id string, unfold, asList bool) (map[string]interface{}, error) {
	return t.base.GetDocument(ctx, t.db, t.working, id, unfold, asList)
}

// InsertDocuments delegates to the base client, pinned to the working branch.
func (t *TransientClient) InsertDocuments(ctx context.Context, docs []map[string]interface{}, args InsertArgs) ([]string, error) {
	return t.base.InsertDocuments(ctx, t.db, docs, t.forceArgs(args))
}

// InsertDocument delegates to the base client, pinned to the working branch.
func (t *TransientClient) InsertDocument(ctx context.Context, doc map[string]interface{}, args InsertArgs) (string, error) {
	return t.base.InsertDocument(ctx, t.db, doc, t.forceArgs(args))
}

// ReplaceDocument delegates to the base client, pinned to the working branch.
func (t *TransientClient) ReplaceDocument(ctx context.Context, doc map[string]interface{}, args InsertArgs) error {
	return t.base.ReplaceDocument(ctx, t.db, doc, t.forceArgs(args))
}

// DeleteDocument delegates to the base client, pinned to the working branch.
func (t *TransientClient) DeleteDocument(ctx context.Context, id string, args InsertArgs) error {
	return t.base.DeleteDocument(ctx, t.db, t.working, id, t.forceArgs(args))
}

// Query executes q against the working branch and returns raw bindings.
func (t *TransientClient) Query(ctx context.Context, q *woql.Query) ([]map[string]interface{}, error) {
	return t.base.Query(ctx, t.db, t.working, q)
}

// QueryRaw executes a pre-built JSON-LD WOQL document against the working
// branch.
func (t *TransientClient) QueryRaw(ctx context.Context, rawQuery map[string]interface{}) ([]map[string]interface{}, error) {
	return t.base.QueryRaw(ctx, t.db, t.working, rawQuery)
}

// SaveInstanceTransient inserts or replaces t on tc's working branch
// depending on whether it already exists.
func SaveInstanceTransient[T any](ctx context.Context, tc *TransientClient, t *T, args InsertArgs) error {
	return SaveInstanceT(ctx, tc.base, tc.db, t, tc.forceArgs(args))
}

// CreateInstanceTransient inserts t on tc's working branch, failing if it
// already exists.
func CreateInstanceTransient[T any](ctx context.Context, tc *TransientClient, t *T, args InsertArgs) error {
	return CreateInstanceT(ctx, tc.base, tc.db, t, tc.forceArgs(args))
}

// UpdateInstanceTransient replaces an existing t on tc's working branch,
// failing if it does not already exist.
func UpdateInstanceTransient[T any](ctx context.Context, tc *TransientClient, t *T, args InsertArgs) error {
	return UpdateInstanceT(ctx, tc.base, tc.db, t, tc.forceArgs(args))
}

// GetInstanceWithHeadersTransient fetches id on tc's working branch.
func GetInstanceWithHeadersTransient[T any](ctx context.Context, tc *TransientClient, id string) (WithCommitID[T], error) {
	return GetInstanceWithHeadersT[T](ctx, tc.base, tc.db, tc.working, id)
}

// ListInstancesTransient lists instances of T on tc's working branch.
func ListInstancesTransient[T any](ctx context.Context, tc *TransientClient, limit, offset uint64) (WithCommitID[[]T], error) {
	return ListInstancesT[T](ctx, tc.base, tc.db, tc.working, limit, offset)
}

// QueryInstancesTransient runs an augmented type-ISA query on tc's working
// branch.
func QueryInstancesTransient[T any](ctx context.Context, tc *TransientClient, limit, offset uint64, queryable Queryable[T]) (WithCommitID[[]T], error) {
	return QueryInstancesT[T](ctx, tc.base, tc.db, tc.working, limit, offset, queryable)
}

// ListInstancesWhereTransient filters instances of T by field equality on
// tc's working branch.
func ListInstancesWhereTransient[T any](ctx context.Context, tc *TransientClient, limit, offset uint64, filters []FieldFilter) (WithCommitID[[]T], error) {
	return ListInstancesWhereT[T](ctx, tc.base, tc.db, tc.working, limit, offset, filters)
}

// NewQueryBuilder starts a fluent WOQL builder for use with Query.
func (t *TransientClient) NewQueryBuilder() *woqlbuilder.Builder {
	return woqlbuilder.New()
}
