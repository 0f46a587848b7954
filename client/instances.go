package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/terminusdb-labs/terminusdb-go/instance"
	"github.com/terminusdb-labs/terminusdb-go/schema"
)

// instanceID extracts the typed-id string from t via the same IDCarrier
// seam the codec uses, returning "" if t has no populated id field. The
// codec stores only the bare id portion (ToJSONLD prepends the class name
// itself), so this returns the "Class/id" form every document endpoint
// expects in its id parameter.
func instanceID[T any](t *T) string {
	inst, err := instance.ToInstance[T](*t, "")
	if err != nil || !inst.HasID {
		return ""
	}
	return inst.SchemaRef + "/" + inst.ID
}

func encodeInstance[T any](t *T) (map[string]interface{}, string, error) {
	id := instanceID(t)
	inst, err := instance.ToInstance[T](*t, id)
	if err != nil {
		return nil, "", err
	}
	doc, err := instance.ToJSONLD(inst)
	if err != nil {
		return nil, "", err
	}
	return doc, inst.SchemaRef, nil
}

func decodeInstance[T any](raw map[string]interface{}) (T, error) {
	var zero T
	s, err := schema.Describe[T]()
	if err != nil {
		return zero, err
	}
	schemas, err := schema.Tree[T]()
	if err != nil {
		return zero, err
	}
	resolver := instance.ResolverFromSchemas(schemas)
	inst, err := instance.FromJSONLD(s, resolver, raw)
	if err != nil {
		return zero, err
	}
	return instance.FromInstance[T](inst)
}

// SaveInstanceT upserts t. If T's schema uses a server-generated key and t
// has no id set, the response is expected to carry one.
func SaveInstanceT[T any](ctx context.Context, c *Client, db string, t *T, args InsertArgs) error {
	doc, _, err := encodeInstance(t)
	if err != nil {
		return err
	}
	if id := instanceID(t); id != "" && c.HasDocument(ctx, db, args.Branch, id) {
		return c.ReplaceDocument(ctx, db, doc, args)
	}
	_, err = c.InsertDocument(ctx, db, doc, args)
	return err
}

// CreateInstanceT fails if an instance with the same id already exists.
func CreateInstanceT[T any](ctx context.Context, c *Client, db string, t *T, args InsertArgs) error {
	id := instanceID(t)
	if id != "" {
		if c.HasDocument(ctx, db, args.Branch, id) {
			return &ServerError{Kind: "DocumentAlreadyExists", Message: id}
		}
	}
	return SaveInstanceT(ctx, c, db, t, args)
}

// UpdateInstanceT fails if no instance with t's id exists.
func UpdateInstanceT[T any](ctx context.Context, c *Client, db string, t *T, args InsertArgs) error {
	id := instanceID(t)
	if id == "" || !c.HasDocument(ctx, db, args.Branch, id) {
		return &NotFoundError{Resource: id}
	}
	doc, _, err := encodeInstance(t)
	if err != nil {
		return err
	}
	return c.ReplaceDocument(ctx, db, doc, args)
}

// ReplaceInstanceT overwrites an instance regardless of its previous state.
func ReplaceInstanceT[T any](ctx context.Context, c *Client, db string, t *T, args InsertArgs) error {
	doc, _, err := encodeInstance(t)
	if err != nil {
		return err
	}
	return c.ReplaceDocument(ctx, db, doc, args)
}

// InsertInstanceWithCommitIDT inserts t and returns the commit id extracted
// from the response's TerminusDB-Data-Version header.
func InsertInstanceWithCommitIDT[T any](ctx context.Context, c *Client, db string, t *T, args InsertArgs) (string, error) {
	if err := validateStruct("InsertInstanceWithCommitIDT", args); err != nil {
		return "", err
	}
	doc, _, err := encodeInstance(t)
	if err != nil {
		return "", err
	}
	deduped := []map[string]interface{}{doc}
	body, err := encodeJSON(deduped)
	if err != nil {
		return "", err
	}
	u := c.documentsURL(db, args.Branch, DocumentParams{Author: args.Author, Message: args.Message, GraphType: args.graphType()})
	resp, err := c.send(ctx, http.MethodPost, u, nil, body)
	result, err := parseResponseWithHeaders[[]string](resp, err)
	if err != nil {
		return "", err
	}
	return result.CommitID, nil
}

// InsertInstancesT flattens every item's tree, drops entries that must
// remain embedded, dedupes by id, and sends one bulk insert.
func InsertInstancesT[T any](ctx context.Context, c *Client, db string, items []*T, args InsertArgs) error {
	docs := make([]map[string]interface{}, 0, len(items))
	for _, t := range items {
		id := instanceID(t)
		inst, err := instance.ToInstance[T](*t, id)
		if err != nil {
			return err
		}
		for _, flat := range instance.Flatten(inst, true) {
			if flat.ShouldRemainEmbedded() {
				continue
			}
			doc, err := instance.ToJSONLD(flat)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		}
	}
	_, err := c.InsertDocuments(ctx, db, docs, args)
	return err
}

// InsertInstanceAndRetrieveT inserts t, then reads it back so
// server-issued ids are filled in, returning the refreshed value and its
// commit id.
func InsertInstanceAndRetrieveT[T any](ctx context.Context, c *Client, db string, t *T, args InsertArgs) (T, string, error) {
	var zero T
	commitID, err := InsertInstanceWithCommitIDT(ctx, c, db, t, args)
	if err != nil {
		return zero, "", err
	}
	id := instanceID(t)
	if id == "" {
		return zero, commitID, fmt.Errorf("client: cannot retrieve instance without an id after insert")
	}
	result, err := GetInstanceWithHeadersT[T](ctx, c, db, args.Branch, id)
	if err != nil {
		return zero, commitID, err
	}
	return result.Data, commitID, nil
}

// GetInstanceWithHeadersT reads id on branch and returns its decoded value
// alongside the commit id from the response header.
func GetInstanceWithHeadersT[T any](ctx context.Context, c *Client, db, branch, id string) (WithCommitID[T], error) {
	var out WithCommitID[T]
	u := c.documentsURL(db, branch, DocumentParams{ID: id, Unfold: true})
	resp, err := c.send(ctx, http.MethodGet, u, nil, nil)
	raw, err := parseResponseWithHeaders[map[string]interface{}](resp, err)
	if err != nil {
		return out, err
	}
	decoded, err := decodeInstance[T](raw.Data)
	if err != nil {
		return out, err
	}
	out.Data, out.CommitID, out.HasCommitID = decoded, raw.CommitID, raw.HasCommitID
	return out, nil
}

// GetInstancesWithHeadersT reads ids on branch; an empty ids slice means
// "all instances of T".
func GetInstancesWithHeadersT[T any](ctx context.Context, c *Client, db, branch string, ids []string) (WithCommitID[[]T], error) {
	var out WithCommitID[[]T]
	if len(ids) == 0 {
		return ListInstancesT[T](ctx, c, db, branch, 0, 0)
	}
	for _, id := range ids {
		one, err := GetInstanceWithHeadersT[T](ctx, c, db, branch, id)
		if err != nil {
			return out, err
		}
		out.Data = append(out.Data, one.Data)
		out.CommitID, out.HasCommitID = one.CommitID, one.HasCommitID
	}
	return out, nil
}

// GetLatestVersionT is shorthand for id's current commit id.
func GetLatestVersionT[T any](ctx context.Context, c *Client, db, branch, id string) (string, error) {
	result, err := GetInstanceWithHeadersT[T](ctx, c, db, branch, id)
	if err != nil {
		return "", err
	}
	return result.CommitID, nil
}

// GetInstanceVersionsT fetches T as it existed at each of the supplied
// commits, erroring if any commit is unknown.
func GetInstanceVersionsT[T any](ctx context.Context, c *Client, db, id string, commits []string) (map[string]T, error) {
	out := make(map[string]T, len(commits))
	for _, commit := range commits {
		u := BuildURL(c.baseEndpoint).Endpoint("document").Database(c.org, db, AtCommit(commit)).
			WithDocumentParams(DocumentParams{ID: id, Unfold: true}).Build()
		resp, err := c.send(ctx, http.MethodGet, u, nil, nil)
		raw, err := parseResponse[map[string]interface{}](resp, err)
		if err != nil {
			return nil, fmt.Errorf("client: commit %s: %w", commit, err)
		}
		decoded, err := decodeInstance[T](raw)
		if err != nil {
			return nil, err
		}
		out[commit] = decoded
	}
	return out, nil
}
