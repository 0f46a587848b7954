package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminusdb-labs/terminusdb-go/schema"
)

type dbTestAnimal struct {
	Name string `tdb:""`
}

func schemasFor(t *testing.T) []schema.Schema {
	t.Helper()
	schemas, err := schema.Tree[dbTestAnimal]()
	require.NoError(t, err)
	return schemas
}

// openDatabaseServer simulates a TerminusDB server for the open_database
// state machine: databases and their SchemaState singleton live in simple
// in-memory maps keyed by db name.
type openDatabaseServer struct {
	dbExists     bool
	schemaState  map[string]interface{}
	insertedDocs []map[string]interface{}
}

func newOpenDatabaseServer() *openDatabaseServer {
	return &openDatabaseServer{}
}

func (s *openDatabaseServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && len(r.URL.Path) > len("/db/") && r.URL.Path[:4] == "/db/":
			if s.dbExists {
				w.WriteHeader(http.StatusOK)
			} else {
				w.WriteHeader(http.StatusNotFound)
			}
		case r.Method == http.MethodPost && r.URL.Path[:4] == "/db/":
			s.dbExists = true
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{}`))
		case r.Method == http.MethodGet && r.URL.Query().Get("id") == "SchemaState/mydb":
			if s.schemaState == nil {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
			body, _ := json.Marshal(s.schemaState)
			_, _ = w.Write(body)
		case r.Method == http.MethodPost:
			var docs []map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&docs)
			s.insertedDocs = append(s.insertedDocs, docs...)
			ids := make([]string, len(docs))
			for i := range docs {
				ids[i] = "doc"
			}
			body, _ := json.Marshal(ids)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
		case r.Method == http.MethodPut:
			var doc map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&doc)
			s.schemaState = doc
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestOpenDatabaseCreatesDatabaseAndSchemaStateWhenMissing(t *testing.T) {
	srv := newOpenDatabaseServer()
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	c := NewClient(ts.URL, "u", "p", "admin", WithGovernors(RateLimitConfig{}, ConcurrencyLimitConfig{}))
	result, err := OpenDatabaseNoSeed(context.Background(), c, "mydb", schemasFor(t))
	require.NoError(t, err)
	assert.True(t, result.WasCreated)
	assert.False(t, result.WasSeeded)
	assert.True(t, srv.dbExists)
	require.NotNil(t, srv.schemaState)
	assert.Equal(t, "mydb", srv.schemaState["db_name"])
}

func TestOpenDatabaseIsNoOpWhenHashMatches(t *testing.T) {
	schemas := schemasFor(t)
	hash := schema.Fingerprint(schemas)

	srv := newOpenDatabaseServer()
	srv.dbExists = true
	srv.schemaState = map[string]interface{}{"db_name": "mydb", "schema_hash": hash, "initialized_at": float64(1)}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	c := NewClient(ts.URL, "u", "p", "admin", WithGovernors(RateLimitConfig{}, ConcurrencyLimitConfig{}))
	result, err := OpenDatabaseNoSeed(context.Background(), c, "mydb", schemas)
	require.NoError(t, err)
	assert.False(t, result.WasCreated)
	assert.False(t, result.WasSeeded)
}

func TestOpenDatabaseReturnsMigrationRequiredOnHashMismatch(t *testing.T) {
	srv := newOpenDatabaseServer()
	srv.dbExists = true
	srv.schemaState = map[string]interface{}{"db_name": "mydb", "schema_hash": "stalehash0000000", "initialized_at": float64(1)}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	c := NewClient(ts.URL, "u", "p", "admin", WithGovernors(RateLimitConfig{}, ConcurrencyLimitConfig{}))
	_, err := OpenDatabaseNoSeed(context.Background(), c, "mydb", schemasFor(t))
	var migrationErr *SchemaMigrationRequiredError
	require.ErrorAs(t, err, &migrationErr)
	assert.Equal(t, "stalehash0000000", migrationErr.Expected)
}

func TestOpenDatabaseRunsSeederOnFirstOpen(t *testing.T) {
	srv := newOpenDatabaseServer()
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	c := NewClient(ts.URL, "u", "p", "admin", WithGovernors(RateLimitConfig{}, ConcurrencyLimitConfig{}))
	seedCalls := 0
	seeder := func() ([]BoxedInstance, error) {
		seedCalls++
		return []BoxedInstance{
			{Document: map[string]interface{}{"Name": "Snowball"}},
			{Document: map[string]interface{}{"Name": "placeholder"}, ReferenceOnly: true},
		}, nil
	}

	result, err := OpenDatabase(context.Background(), c, "mydb", schemasFor(t), seeder)
	require.NoError(t, err)
	assert.True(t, result.WasSeeded)
	assert.Equal(t, 1, seedCalls)
	// one real doc inserted (reference-only entry dropped) plus the schema
	// insertion call; assert the seeded doc got a random id assigned.
	found := false
	for _, d := range srv.insertedDocs {
		if d["Name"] == "Snowball" {
			_, hasID := d["@id"]
			assert.True(t, hasID)
			found = true
		}
	}
	assert.True(t, found, "expected the seeded non-reference document to be inserted")
}

func TestSchemaToDocumentRendersLexicalKey(t *testing.T) {
	s := schema.Schema{
		Kind:      schema.KindClass,
		ClassName: "SchemaState",
		Key:       schema.Key{Kind: schema.KeyLexical, Fields: []string{"db_name"}},
		Properties: []schema.Property{
			{Name: "db_name", Family: schema.One, Class: "xsd:string"},
		},
	}
	doc := schemaToDocument(s)
	assert.Equal(t, "Class", doc["@type"])
	key := doc["@key"].(map[string]interface{})
	assert.Equal(t, "Lexical", key["@type"])
}
