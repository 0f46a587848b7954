package client

import (
	"context"
	"net/http"
)

// InsertArgs carries the author/message/graph-type/branch parameters that
// document writes accept. Validated with go-playground/validator before
// any request is built.
type InsertArgs struct {
	Author             string `validate:"required"`
	Message            string `validate:"required"`
	Type               string `validate:"omitempty,oneof=instance schema"`
	Branch             string
	Force              bool
	SkipExistenceCheck bool
	Timeout            int // seconds; 0 means no explicit timeout
}

func (a InsertArgs) graphType() string {
	if a.Type == "" {
		return "instance"
	}
	return a.Type
}

func (c *Client) documentsURL(db string, branch string, params DocumentParams) string {
	b := c.url().Endpoint("document")
	if branch != "" {
		b = b.Database(c.org, db, Branch(branch))
	} else {
		b = b.Database(c.org, db)
	}
	return b.WithDocumentParams(params).Build()
}

// HasDocument reports whether id exists on branch, swallowing any error and
// returning false.
func (c *Client) HasDocument(ctx context.Context, db, branch, id string) bool {
	_, err := c.GetDocument(ctx, db, branch, id, false, false)
	return err == nil
}

// GetDocument fetches a single document by id, returning NotFoundError if
// absent.
func (c *Client) GetDocument(ctx context.Context, db, branch, id string, unfold, asList bool) (map[string]interface{}, error) {
	u := c.documentsURL(db, branch, DocumentParams{ID: id, Unfold: unfold, AsList: asList})
	resp, err := c.send(ctx, http.MethodGet, u, nil, nil)
	return parseResponse[map[string]interface{}](resp, err)
}

// InsertDocuments deduplicates docs by "@id" and inserts them in one call.
func (c *Client) InsertDocuments(ctx context.Context, db string, docs []map[string]interface{}, args InsertArgs) ([]string, error) {
	if err := validateStruct("InsertDocuments", args); err != nil {
		return nil, err
	}
	deduped := dedupeByID(docs)
	body, err := encodeJSON(deduped)
	if err != nil {
		return nil, err
	}
	u := c.documentsURL(db, args.Branch, DocumentParams{
		Author: args.Author, Message: args.Message, GraphType: args.graphType(),
	})
	resp, err := c.send(ctx, http.MethodPost, u, nil, body)
	return parseResponse[[]string](resp, err)
}

// InsertDocument is the single-document convenience over InsertDocuments.
func (c *Client) InsertDocument(ctx context.Context, db string, doc map[string]interface{}, args InsertArgs) (string, error) {
	ids, err := c.InsertDocuments(ctx, db, []map[string]interface{}{doc}, args)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}

// ReplaceDocument overwrites an existing document regardless of its
// previous state via PUT.
func (c *Client) ReplaceDocument(ctx context.Context, db string, doc map[string]interface{}, args InsertArgs) error {
	if err := validateStruct("ReplaceDocument", args); err != nil {
		return err
	}
	body, err := encodeJSON(doc)
	if err != nil {
		return err
	}
	u := c.documentsURL(db, args.Branch, DocumentParams{
		Author: args.Author, Message: args.Message, GraphType: args.graphType(),
	})
	resp, err := c.send(ctx, http.MethodPut, u, nil, body)
	_, err = parseResponse[map[string]interface{}](resp, err)
	return err
}

// DeleteDocument removes id from db/branch.
func (c *Client) DeleteDocument(ctx context.Context, db, branch, id string, args InsertArgs) error {
	if err := validateStruct("DeleteDocument", args); err != nil {
		return err
	}
	u := c.documentsURL(db, branch, DocumentParams{ID: id, Author: args.Author, Message: args.Message, GraphType: args.graphType()})
	resp, err := c.send(ctx, http.MethodDelete, u, nil, nil)
	_, err = parseResponse[map[string]interface{}](resp, err)
	return err
}

func dedupeByID(docs []map[string]interface{}) []map[string]interface{} {
	seen := make(map[string]bool, len(docs))
	out := make([]map[string]interface{}, 0, len(docs))
	for _, d := range docs {
		id, _ := d["@id"].(string)
		if id != "" {
			if seen[id] {
				continue
			}
			seen[id] = true
		}
		out = append(out, d)
	}
	return out
}
