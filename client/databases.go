package client

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/url"
	"time"

	"github.com/terminusdb-labs/terminusdb-go/instance"
	"github.com/terminusdb-labs/terminusdb-go/schema"
)

// DatabaseExists reports whether db exists, swallowing errors as false.
func (c *Client) DatabaseExists(ctx context.Context, db string) bool {
	u := c.url().Endpoint("db").AddPath(c.org).AddPath(db).Build()
	resp, err := c.send(ctx, http.MethodGet, u, nil, nil)
	if err != nil {
		return false
	}
	return resp.Status >= 200 && resp.Status < 300
}

// CreateDatabase creates db with the given label/comment, failing if it
// already exists.
func (c *Client) CreateDatabase(ctx context.Context, db, label, comment string) error {
	body, err := encodeJSON(map[string]string{"label": label, "comment": comment})
	if err != nil {
		return err
	}
	u := c.url().Endpoint("db").AddPath(c.org).AddPath(db).Build()
	resp, err := c.send(ctx, http.MethodPost, u, nil, body)
	_, err = parseResponse[map[string]interface{}](resp, err)
	return err
}

// EnsureDatabase creates db if it does not already exist.
func (c *Client) EnsureDatabase(ctx context.Context, db, label, comment string) error {
	if c.DatabaseExists(ctx, db) {
		return nil
	}
	return c.CreateDatabase(ctx, db, label, comment)
}

// DeleteDatabase deletes db.
func (c *Client) DeleteDatabase(ctx context.Context, db string) error {
	u := c.url().Endpoint("db").AddPath(c.org).AddPath(db).Build()
	resp, err := c.send(ctx, http.MethodDelete, u, nil, nil)
	_, err = parseResponse[map[string]interface{}](resp, err)
	return err
}

// ListDatabases lists every database under c's organization.
func (c *Client) ListDatabases(ctx context.Context) ([]string, error) {
	u := c.url().Endpoint("db").AddPath(c.org).Build()
	resp, err := c.send(ctx, http.MethodGet, u, nil, nil)
	return parseResponse[[]string](resp, err)
}

// SchemaState is the per-database singleton recording the schema fingerprint
// a database was opened with, keyed lexically by db_name so repeat
// open_database calls against the same database resolve to the same
// document.
type SchemaState struct {
	DBName        string  `tdb:"name=db_name"`
	SchemaHash    string  `tdb:"name=schema_hash"`
	InitializedAt float64 `tdb:"name=initialized_at"`
}

// SchemaMeta declares SchemaState's lexical key on db_name.
func (SchemaState) SchemaMeta() schema.TypeMeta {
	return schema.TypeMeta{Key: schema.Key{Kind: schema.KeyLexical, Fields: []string{"db_name"}}}
}

// BoxedInstance is a heterogeneous, already-encoded instance tree a seeder
// hands back for insertion: the Go stand-in for a type-erased owned
// instance, since Go generics cannot express a slice of differently
// parameterized T's.
type BoxedInstance struct {
	// Document is the JSON-LD document body produced by encodeInstance.
	Document map[string]interface{}
	// ReferenceOnly marks a placeholder entry the seeder emitted purely to
	// establish a relation target that another entry already inserts in
	// full; it is dropped before insertion rather than sent twice.
	ReferenceOnly bool
}

// Seeder produces the initial documents for a freshly opened database. It
// runs at most once, only on the branch of open_database that just created
// the database or its SchemaState singleton.
type Seeder func() ([]BoxedInstance, error)

// OpenDatabaseResult reports what open_database actually did.
type OpenDatabaseResult struct {
	WasCreated bool
	WasSeeded  bool
}

// OpenDatabase realizes the database lifecycle state machine: create the
// database and its SchemaState singleton if missing, detect schema drift by
// comparing fingerprints, and run seeder at most once on first open.
func OpenDatabase(ctx context.Context, c *Client, db string, schemas []schema.Schema, seeder Seeder) (OpenDatabaseResult, error) {
	currentHash := schema.Fingerprint(schemas)

	dbExisted := c.DatabaseExists(ctx, db)
	if !dbExisted {
		if err := c.CreateDatabase(ctx, db, db, "created by terminusdb-go"); err != nil {
			return OpenDatabaseResult{}, err
		}
	}

	state, found, err := c.getSchemaState(ctx, db)
	if err != nil {
		return OpenDatabaseResult{}, err
	}
	if found {
		if state.SchemaHash == currentHash {
			return OpenDatabaseResult{WasCreated: false, WasSeeded: false}, nil
		}
		return OpenDatabaseResult{}, &SchemaMigrationRequiredError{Expected: state.SchemaHash, Current: currentHash}
	}

	if err := c.insertSchemas(ctx, db, schemas); err != nil {
		return OpenDatabaseResult{}, err
	}

	now := float64(unixNow())
	if err := c.insertSchemaState(ctx, db, SchemaState{DBName: db, SchemaHash: currentHash, InitializedAt: now}); err != nil {
		return OpenDatabaseResult{}, err
	}

	wasSeeded := false
	if seeder != nil {
		if err := c.runSeeder(ctx, db, seeder); err != nil {
			return OpenDatabaseResult{}, err
		}
		wasSeeded = true
	}

	return OpenDatabaseResult{WasCreated: true, WasSeeded: wasSeeded}, nil
}

// OpenDatabaseNoSeed is open_database's seeder-less convenience.
func OpenDatabaseNoSeed(ctx context.Context, c *Client, db string, schemas []schema.Schema) (OpenDatabaseResult, error) {
	return OpenDatabase(ctx, c, db, schemas, nil)
}

func (c *Client) getSchemaState(ctx context.Context, db string) (SchemaState, bool, error) {
	raw, err := c.GetDocument(ctx, db, "", "SchemaState/"+url.PathEscape(db), true, false)
	if err != nil {
		if _, ok := err.(*NotFoundError); ok {
			return SchemaState{}, false, nil
		}
		return SchemaState{}, false, err
	}
	schemas, err := schema.Tree[SchemaState]()
	if err != nil {
		return SchemaState{}, false, err
	}
	resolver := instance.ResolverFromSchemas(schemas)
	s, err := schema.Describe[SchemaState]()
	if err != nil {
		return SchemaState{}, false, err
	}
	inst, err := instance.FromJSONLD(s, resolver, raw)
	if err != nil {
		return SchemaState{}, false, err
	}
	state, err := instance.FromInstance[SchemaState](inst)
	if err != nil {
		return SchemaState{}, false, err
	}
	return state, true, nil
}

func (c *Client) insertSchemas(ctx context.Context, db string, schemas []schema.Schema) error {
	docs := make([]map[string]interface{}, 0, len(schemas)+1)
	for _, s := range schemas {
		docs = append(docs, schemaToDocument(s))
	}
	stateSchema, err := schema.Describe[SchemaState]()
	if err != nil {
		return err
	}
	docs = append(docs, schemaToDocument(stateSchema))
	_, err = c.InsertDocuments(ctx, db, docs, InsertArgs{
		Author:  "terminusdb-go",
		Message: "insert schema",
		Type:    "schema",
	})
	return err
}

func (c *Client) insertSchemaState(ctx context.Context, db string, s SchemaState) error {
	doc, _, err := encodeInstance(&s)
	if err != nil {
		return err
	}
	return c.ReplaceDocument(ctx, db, doc, InsertArgs{
		Author:  "terminusdb-go",
		Message: "record schema fingerprint",
	})
}

func (c *Client) runSeeder(ctx context.Context, db string, seeder Seeder) error {
	items, err := seeder()
	if err != nil {
		return err
	}
	docs := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if item.ReferenceOnly {
			continue
		}
		docs = append(docs, assignRandomIDPrefix(item.Document))
	}
	if len(docs) == 0 {
		return nil
	}
	_, err = c.InsertDocuments(ctx, db, docs, InsertArgs{
		Author:             "terminusdb-go",
		Message:            "seed database",
		SkipExistenceCheck: true,
		Timeout:            seedTimeoutSeconds,
	})
	return err
}

const seedTimeoutSeconds = 120

// assignRandomIDPrefix gives a seeded document a fresh random id prefix
// unless it already carries one, so repeated seeder runs across databases
// never collide on identifier.
func assignRandomIDPrefix(doc map[string]interface{}) map[string]interface{} {
	if _, hasID := doc["@id"]; hasID {
		return doc
	}
	out := make(map[string]interface{}, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out["@id"] = randomIDPrefix()
	return out
}

func randomIDPrefix() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// schemaToDocument renders a Schema as the JSON-LD schema-frame document
// the /document?graph_type=schema endpoint expects.
func schemaToDocument(s schema.Schema) map[string]interface{} {
	doc := map[string]interface{}{
		"@type": "Class",
		"@id":   s.ClassName,
	}
	if s.Kind == schema.KindEnum {
		doc["@type"] = "Enum"
		doc["@value"] = s.Values
		return doc
	}
	if s.Subdocument {
		doc["@subdocument"] = []string{}
	}
	if s.Abstract {
		doc["@abstract"] = []string{}
	}
	if len(s.Inherits) > 0 {
		doc["@inherits"] = s.Inherits
	}
	switch s.Key.Kind {
	case schema.KeyLexical:
		doc["@key"] = map[string]interface{}{"@type": "Lexical", "@fields": s.Key.Fields}
	case schema.KeyHash:
		doc["@key"] = map[string]interface{}{"@type": "Hash", "@fields": s.Key.Fields}
	case schema.KeyValueHash:
		doc["@key"] = map[string]interface{}{"@type": "ValueHash"}
	default:
		doc["@key"] = map[string]interface{}{"@type": "Random"}
	}
	for _, p := range s.Properties {
		class := p.Class
		switch p.Family {
		case schema.Option:
			doc[p.Name] = map[string]interface{}{"@type": "Optional", "@class": class}
		case schema.List:
			doc[p.Name] = map[string]interface{}{"@type": "List", "@class": class}
		case schema.Set:
			doc[p.Name] = map[string]interface{}{"@type": "Set", "@class": class}
		default:
			doc[p.Name] = class
		}
	}
	return doc
}

func unixNow() int64 {
	return time.Now().Unix()
}
