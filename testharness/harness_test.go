package testharness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminusdb-labs/terminusdb-go/client"
)

type harnessPerson struct {
	Name string `tdb:""`
	Age  float64
}

func newHarnessClient(t *testing.T, srv *EmbeddedServer) *client.Client {
	t.Helper()
	return client.NewClient(srv.URL(), "admin", "root", "admin",
		client.WithGovernors(client.RateLimitConfig{}, client.ConcurrencyLimitConfig{}))
}

func newHarness(t *testing.T) *EmbeddedServer {
	t.Helper()
	srv, err := NewEmbeddedServer(WithJanitorSchedule(""))
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return srv
}

func TestDatabaseLifecycle(t *testing.T) {
	srv := newHarness(t)
	c := newHarnessClient(t, srv)
	ctx := context.Background()

	assert.False(t, c.DatabaseExists(ctx, "mydb"))
	require.NoError(t, c.CreateDatabase(ctx, "mydb", "My DB", "a test database"))
	assert.True(t, c.DatabaseExists(ctx, "mydb"))

	names, err := c.ListDatabases(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "mydb")

	require.NoError(t, c.DeleteDatabase(ctx, "mydb"))
	assert.False(t, c.DatabaseExists(ctx, "mydb"))
}

func TestInsertAndGetDocument(t *testing.T) {
	srv := newHarness(t)
	c := newHarnessClient(t, srv)
	ctx := context.Background()
	require.NoError(t, c.CreateDatabase(ctx, "mydb", "", ""))

	doc := map[string]interface{}{"@id": "harnessPerson/1", "@type": "harnessPerson", "Name": "Bart", "Age": 10.0}
	ids, err := c.InsertDocuments(ctx, "mydb", []map[string]interface{}{doc}, client.InsertArgs{
		Author: "tester", Message: "insert person",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"harnessPerson/1"}, ids)

	got, err := c.GetDocument(ctx, "mydb", "", "harnessPerson/1", true, false)
	require.NoError(t, err)
	assert.Equal(t, "Bart", got["Name"])

	assert.True(t, c.HasDocument(ctx, "mydb", "", "harnessPerson/1"))
	assert.False(t, c.HasDocument(ctx, "mydb", "", "harnessPerson/nope"))
}

func TestTypedInstanceRoundTrip(t *testing.T) {
	srv := newHarness(t)
	c := newHarnessClient(t, srv)
	ctx := context.Background()
	require.NoError(t, c.CreateDatabase(ctx, "mydb", "", ""))

	p := &harnessPerson{Name: "Lisa", Age: 8}
	require.NoError(t, client.SaveInstanceT(ctx, c, "mydb", p, client.InsertArgs{
		Author: "tester", Message: "save lisa",
	}))

	listed, err := client.ListInstancesT[harnessPerson](ctx, c, "mydb", "main", 0, 0)
	require.NoError(t, err)
	require.Len(t, listed.Data, 1)
	assert.Equal(t, "Lisa", listed.Data[0].Name)

	count, err := client.CountInstancesT[harnessPerson](ctx, c, "mydb", "main")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestReplaceAndDeleteDocument(t *testing.T) {
	srv := newHarness(t)
	c := newHarnessClient(t, srv)
	ctx := context.Background()
	require.NoError(t, c.CreateDatabase(ctx, "mydb", "", ""))

	doc := map[string]interface{}{"@id": "harnessPerson/2", "@type": "harnessPerson", "Name": "Maggie"}
	_, err := c.InsertDocuments(ctx, "mydb", []map[string]interface{}{doc}, client.InsertArgs{
		Author: "tester", Message: "insert",
	})
	require.NoError(t, err)

	doc["Name"] = "Maggie Simpson"
	require.NoError(t, c.ReplaceDocument(ctx, "mydb", doc, client.InsertArgs{Author: "tester", Message: "rename"}))

	got, err := c.GetDocument(ctx, "mydb", "", "harnessPerson/2", true, false)
	require.NoError(t, err)
	assert.Equal(t, "Maggie Simpson", got["Name"])

	require.NoError(t, c.DeleteDocument(ctx, "mydb", "main", "harnessPerson/2", client.InsertArgs{Author: "tester", Message: "remove"}))
	assert.False(t, c.HasDocument(ctx, "mydb", "main", "harnessPerson/2"))
}

func TestBranchCreateCopiesDocumentsAndDeleteRemovesThem(t *testing.T) {
	srv := newHarness(t)
	c := newHarnessClient(t, srv)
	ctx := context.Background()
	require.NoError(t, c.CreateDatabase(ctx, "mydb", "", ""))

	doc := map[string]interface{}{"@id": "harnessPerson/3", "@type": "harnessPerson", "Name": "Homer"}
	_, err := c.InsertDocuments(ctx, "mydb", []map[string]interface{}{doc}, client.InsertArgs{
		Author: "tester", Message: "insert", Branch: "main",
	})
	require.NoError(t, err)

	require.NoError(t, c.CreateBranch(ctx, "mydb", "feature", "main"))
	assert.True(t, c.HasDocument(ctx, "mydb", "feature", "harnessPerson/3"))

	require.NoError(t, c.DeleteBranch(ctx, "mydb", "feature"))
	assert.False(t, c.HasDocument(ctx, "mydb", "feature", "harnessPerson/3"))
	assert.True(t, c.HasDocument(ctx, "mydb", "main", "harnessPerson/3"))
}

func TestLogRecordsCommits(t *testing.T) {
	srv := newHarness(t)
	c := newHarnessClient(t, srv)
	ctx := context.Background()
	require.NoError(t, c.CreateDatabase(ctx, "mydb", "", ""))

	doc := map[string]interface{}{"@id": "harnessPerson/4", "@type": "harnessPerson", "Name": "Flanders"}
	_, err := c.InsertDocuments(ctx, "mydb", []map[string]interface{}{doc}, client.InsertArgs{
		Author: "tester", Message: "insert flanders",
	})
	require.NoError(t, err)

	entries, err := c.Log(ctx, "mydb", "main")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "insert flanders", entries[0].Message)
}
