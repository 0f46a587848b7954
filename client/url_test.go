package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildURLDatabaseWithBranch(t *testing.T) {
	u := BuildURL("http://127.0.0.1:6363").Endpoint("document").Database("admin", "mydb", Branch("main")).Build()
	assert.Equal(t, "http://127.0.0.1:6363/document/admin/mydb/local/branch/main", u)
}

func TestBuildURLDatabaseWithCommit(t *testing.T) {
	u := BuildURL("http://127.0.0.1:6363").Endpoint("document").Database("admin", "mydb", AtCommit("abc123")).Build()
	assert.Equal(t, "http://127.0.0.1:6363/document/admin/mydb/local/commit/abc123", u)
}

func TestBuildURLWithoutBranchSpec(t *testing.T) {
	u := BuildURL("http://127.0.0.1:6363").Endpoint("db").Database("admin", "mydb").Build()
	assert.Equal(t, "http://127.0.0.1:6363/db/admin/mydb", u)
}

func TestBuildURLTrimsTrailingSlashFromBase(t *testing.T) {
	u := BuildURL("http://127.0.0.1:6363/").Endpoint("info").Build()
	assert.Equal(t, "http://127.0.0.1:6363/info", u)
}

func TestBuildURLWithDocumentParams(t *testing.T) {
	u := BuildURL("http://h").Endpoint("document").Database("admin", "mydb").
		WithDocumentParams(DocumentParams{Author: "a", Message: "m", Unfold: true}).Build()
	assert.Contains(t, u, "author=a")
	assert.Contains(t, u, "message=m")
	assert.Contains(t, u, "unfold=true")
}

func TestBuildURLAddPathAppendsAfterDatabase(t *testing.T) {
	u := BuildURL("http://h").Endpoint("branch").Database("admin", "mydb").AddPath("extra").Build()
	assert.Equal(t, "http://h/branch/admin/mydb/extra", u)
}

func TestGraphQLURL(t *testing.T) {
	u := GraphQLURL("http://h", "admin", "mydb", "main")
	assert.Equal(t, "http://h/graphql/admin/mydb/local/branch/main", u)
}

func TestBranchSpecSegments(t *testing.T) {
	assert.Equal(t, []string{"local", "branch", "main"}, Branch("main").segments())
	assert.Equal(t, []string{"local", "commit", "xyz"}, AtCommit("xyz").segments())
	assert.Nil(t, BranchSpec{}.segments())
}
