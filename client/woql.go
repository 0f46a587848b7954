package client

import (
	"context"
	"fmt"
	"net/http"
	"reflect"

	"github.com/terminusdb-labs/terminusdb-go/schema"
	"github.com/terminusdb-labs/terminusdb-go/woql"
	"github.com/terminusdb-labs/terminusdb-go/woqlbuilder"
	"github.com/terminusdb-labs/terminusdb-go/xsdtype"
)

// WoqlResult is the decoded shape of a /woql response: the raw variable
// bindings from the server plus (for the typed convenience methods) T
// values decoded out of a well-known "doc" binding.
type WoqlResult[T any] struct {
	Bindings []map[string]interface{}
	Values   []T
}

type woqlRequestBody struct {
	Query map[string]interface{} `json:"query"`
}

type woqlResponseBody struct {
	Bindings []map[string]interface{} `json:"bindings"`
}

func (c *Client) queryURL(db, branch string) string {
	b := c.url().Endpoint("woql")
	if branch != "" {
		return b.Database(c.org, db, Branch(branch)).Build()
	}
	return b.Database(c.org, db).Build()
}

// QueryRaw executes a pre-built JSON-LD WOQL document against db/branch.
func (c *Client) QueryRaw(ctx context.Context, db, branch string, rawQuery map[string]interface{}) ([]map[string]interface{}, error) {
	body, err := encodeJSON(woqlRequestBody{Query: rawQuery})
	if err != nil {
		return nil, err
	}
	u := c.queryURL(db, branch)
	resp, err := c.send(ctx, http.MethodPost, u, nil, body)
	out, err := parseResponse[woqlResponseBody](resp, err)
	c.recordQueryLog(db, branch, rawQuery, err)
	if err != nil {
		return nil, err
	}
	return out.Bindings, nil
}

// Query executes q against db/branch and returns the raw bindings; callers
// that know the shape of a particular variable decode it themselves.
func (c *Client) Query(ctx context.Context, db, branch string, q *woql.Query) ([]map[string]interface{}, error) {
	raw, err := q.ToJSONLD()
	if err != nil {
		return nil, err
	}
	return c.QueryRaw(ctx, db, branch, raw)
}

// QueryString does not parse or execute dsl: it always returns an error and
// sends no request.
func (c *Client) QueryString(ctx context.Context, db, branch, dsl string) ([]map[string]interface{}, error) {
	return nil, fmt.Errorf("client: QueryString requires a JSON-LD-producing DSL parser, not yet wired")
}

func (c *Client) recordQueryLog(db, branch string, rawQuery map[string]interface{}, err error) {
	if c.querySink == nil {
		return
	}
	rec := QueryLogRecord{Endpoint: "woql", DB: db, Branch: branch, Success: err == nil}
	if err != nil {
		rec.Error = err.Error()
	}
	if body, mErr := encodeJSON(rawQuery); mErr == nil {
		rec.Query = string(body)
	}
	c.querySink.Record(rec)
}

// ListInstancesT lists up to limit instances of T (0 = no limit) starting
// at offset, via an implicit type-ISA query wrapped in read_document.
func ListInstancesT[T any](ctx context.Context, c *Client, db, branch string, limit, offset uint64) (WithCommitID[[]T], error) {
	var out WithCommitID[[]T]
	s, err := schema.Describe[T]()
	if err != nil {
		return out, err
	}

	b := woqlbuilder.New().
		IsA(woql.NodeVar("x"), woql.NodeIRI(s.ClassName)).
		ReadDocument(woql.NodeVar("x"), woql.Var("doc")).
		Select("doc")
	if offset > 0 {
		b = b.Offset(offset)
	}
	if limit > 0 {
		b = b.Limit(limit)
	}

	bindings, err := c.runBuilder(ctx, db, branch, b)
	if err != nil {
		return out, err
	}
	out.Data, err = decodeDocBindings[T](bindings)
	return out, err
}

// CountInstancesT counts instances of T via WOQL Count.
func CountInstancesT[T any](ctx context.Context, c *Client, db, branch string) (int, error) {
	s, err := schema.Describe[T]()
	if err != nil {
		return 0, err
	}
	q := woql.Count(woql.IsA(woql.NodeVar("x"), woql.NodeIRI(s.ClassName)), woql.DataVar("n"))
	bindings, err := c.Query(ctx, db, branch, q)
	if err != nil {
		return 0, err
	}
	if len(bindings) == 0 {
		return 0, nil
	}
	return toInt(bindings[0]["n"]), nil
}

// Queryable augments a partial builder already bound to the subject
// variable, used by the typed query-instances/count-instances helpers.
type Queryable[T any] func(subject woql.Value, b *woqlbuilder.Builder) *woqlbuilder.Builder

// QueryInstancesT builds IsA(x, T) and augments it with queryable, then
// wraps the result with select(doc) and read_document.
func QueryInstancesT[T any](ctx context.Context, c *Client, db, branch string, limit, offset uint64, queryable Queryable[T]) (WithCommitID[[]T], error) {
	var out WithCommitID[[]T]
	s, err := schema.Describe[T]()
	if err != nil {
		return out, err
	}
	subject := woql.Var("x")
	b := woqlbuilder.New().IsA(woql.NodeVar("x"), woql.NodeIRI(s.ClassName))
	b = queryable(subject, b)
	b = b.ReadDocument(woql.NodeVar("x"), woql.Var("doc")).Select("doc")
	if offset > 0 {
		b = b.Offset(offset)
	}
	if limit > 0 {
		b = b.Limit(limit)
	}

	bindings, err := c.runBuilder(ctx, db, branch, b)
	if err != nil {
		return out, err
	}
	out.Data, err = decodeDocBindings[T](bindings)
	return out, err
}

// QueryInstancesCountT is QueryInstancesT's count-only counterpart.
func QueryInstancesCountT[T any](ctx context.Context, c *Client, db, branch string, queryable Queryable[T]) (int, error) {
	s, err := schema.Describe[T]()
	if err != nil {
		return 0, err
	}
	subject := woql.Var("x")
	b := woqlbuilder.New().IsA(woql.NodeVar("x"), woql.NodeIRI(s.ClassName))
	b = queryable(subject, b)
	inner, err := b.Finalize()
	if err != nil {
		return 0, err
	}
	q := woql.Count(inner, woql.DataVar("n"))
	bindings, err := c.Query(ctx, db, branch, q)
	if err != nil {
		return 0, err
	}
	if len(bindings) == 0 {
		return 0, nil
	}
	return toInt(bindings[0]["n"]), nil
}

// FieldFilter is one (field, value) pair for ListInstancesWhereT. String
// values desugar to a data-literal triple; the string-filter contract is
// the one this package guarantees end to end.
type FieldFilter struct {
	Field string
	Value interface{}
}

// filterLiteral applies the same typed-literal wrapping the instance codec
// uses on write, inferring Value's XSD class from its Go type so a numeric
// or boolean filter round-trips the same way an equivalent struct field
// would, instead of landing on the wire as a bare untyped scalar.
func filterLiteral(v interface{}) interface{} {
	if v == nil {
		return v
	}
	class, ok := xsdtype.ClassForKind(reflect.TypeOf(v).Kind().String())
	if !ok || !xsdtype.NeedsTypedLiteral(class) {
		return v
	}
	return map[string]interface{}{"@type": class, "@value": v}
}

// ListInstancesWhereT desugars each filter to a triple constraining field's
// value, alongside the type-ISA clause, and reads matching documents back.
func ListInstancesWhereT[T any](ctx context.Context, c *Client, db, branch string, limit, offset uint64, filters []FieldFilter) (WithCommitID[[]T], error) {
	var out WithCommitID[[]T]
	s, err := schema.Describe[T]()
	if err != nil {
		return out, err
	}

	b := woqlbuilder.New().IsA(woql.NodeVar("x"), woql.NodeIRI(s.ClassName))
	for _, f := range filters {
		b = b.Triple(woql.NodeVar("x"), woql.NodeIRI(f.Field), woql.Data(filterLiteral(f.Value)))
	}
	b = b.ReadDocument(woql.NodeVar("x"), woql.Var("doc")).Select("doc")
	if offset > 0 {
		b = b.Offset(offset)
	}
	if limit > 0 {
		b = b.Limit(limit)
	}

	bindings, err := c.runBuilder(ctx, db, branch, b)
	if err != nil {
		return out, err
	}
	out.Data, err = decodeDocBindings[T](bindings)
	return out, err
}

// ListInstanceVersionsT walks the commit log for id and returns the
// decoded value plus commit id at each change.
func ListInstanceVersionsT[T any](ctx context.Context, c *Client, db, id string) ([]WithCommitID[T], error) {
	commits, err := c.commitLogFor(ctx, db, id)
	if err != nil {
		return nil, err
	}
	out := make([]WithCommitID[T], 0, len(commits))
	for _, commit := range commits {
		versions, err := GetInstanceVersionsT[T](ctx, c, db, id, []string{commit})
		if err != nil {
			return nil, err
		}
		out = append(out, WithCommitID[T]{Data: versions[commit], CommitID: commit, HasCommitID: true})
	}
	return out, nil
}

func (c *Client) runBuilder(ctx context.Context, db, branch string, b *woqlbuilder.Builder) ([]map[string]interface{}, error) {
	q, err := b.Finalize()
	if err != nil {
		return nil, err
	}
	return c.Query(ctx, db, branch, q)
}

func decodeDocBindings[T any](bindings []map[string]interface{}) ([]T, error) {
	out := make([]T, 0, len(bindings))
	for _, binding := range bindings {
		raw, ok := binding["doc"].(map[string]interface{})
		if !ok {
			continue
		}
		decoded, err := decodeInstance[T](raw)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded)
	}
	return out, nil
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
