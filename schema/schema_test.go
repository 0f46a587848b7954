package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminusdb-labs/terminusdb-go/schema"
)

type Address struct {
	Street string `tdb:""`
	City   string `tdb:""`
}

type Person struct {
	Name    string   `tdb:""`
	Age     int      `tdb:""`
	Tags    []string `tdb:"list"`
	Address Address  `tdb:""`
}

func TestDescribeClass(t *testing.T) {
	s, err := schema.Describe[Person]()
	require.NoError(t, err)
	assert.Equal(t, schema.KindClass, s.Kind)
	assert.Equal(t, "Person", s.ClassName)

	names := map[string]schema.Property{}
	for _, p := range s.Properties {
		names[p.Name] = p
	}
	require.Contains(t, names, "Tags")
	assert.Equal(t, schema.List, names["Tags"].Family)
	require.Contains(t, names, "Address")
	assert.Equal(t, "Address", names["Address"].Class)
}

func TestFingerprintDeterministic(t *testing.T) {
	tree, err := schema.Tree[Person]()
	require.NoError(t, err)

	fp1 := schema.Fingerprint(tree)
	fp2 := schema.Fingerprint(tree)
	assert.Equal(t, fp1, fp2)
	assert.Len(t, fp1, 16)
}

func TestFingerprintOrderIndependent(t *testing.T) {
	tree, err := schema.Tree[Person]()
	require.NoError(t, err)
	require.Len(t, tree, 2)

	reversed := []schema.Schema{tree[1], tree[0]}
	assert.Equal(t, schema.Fingerprint(tree), schema.Fingerprint(reversed))
}

func TestCanonicalizeSortsProperties(t *testing.T) {
	s := schema.Schema{
		ClassName: "X",
		Properties: []schema.Property{
			{Name: "b"}, {Name: "a"},
		},
	}
	c := schema.Canonicalize(s)
	assert.Equal(t, "a", c.Properties[0].Name)
	assert.Equal(t, "b", c.Properties[1].Name)
}

type lexicalKeyed struct {
	Code string `tdb:""`
}

func (lexicalKeyed) SchemaMeta() schema.TypeMeta {
	return schema.TypeMeta{Key: schema.Key{Kind: schema.KeyLexical, Fields: []string{"Code"}}}
}

func TestDescribeAcceptsLexicalKeyWithFields(t *testing.T) {
	type badKeyed struct {
		Code string `tdb:""`
	}
	_, err := schema.Describe[lexicalKeyed]()
	require.NoError(t, err)

	_ = badKeyed{} // no SchemaMeta: defaults to KeyRandom, always valid
}
