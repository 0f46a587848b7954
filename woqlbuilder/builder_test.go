package woqlbuilder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminusdb-labs/terminusdb-go/woql"
	"github.com/terminusdb-labs/terminusdb-go/woqlbuilder"
)

func TestTripleIsARoundTrip(t *testing.T) {
	q, err := woqlbuilder.New().
		Triple(woql.NodeVar("x"), woql.NodeIRI("rdf:type"), woql.Node("Person")).
		IsA(woql.NodeVar("x"), woql.NodeIRI("Person")).
		Finalize()
	require.NoError(t, err)
	assert.Equal(t, "And", q.Kind())
	assert.Len(t, q.And, 2)
}

func TestSingleClauseFinalizesWithoutAnd(t *testing.T) {
	q, err := woqlbuilder.New().
		Triple(woql.NodeVar("x"), woql.NodeIRI("rdf:type"), woql.Node("Person")).
		Finalize()
	require.NoError(t, err)
	assert.Equal(t, "Triple", q.Kind())
}

func TestSelectLimitOffsetUsingWrapOutermostFirst(t *testing.T) {
	q, err := woqlbuilder.New().
		Triple(woql.NodeVar("x"), woql.NodeIRI("rdf:type"), woql.Node("Person")).
		Using("my_db").
		Select("x").
		Limit(10).
		Offset(5).
		Finalize()
	require.NoError(t, err)

	require.Equal(t, "Using", q.Kind())
	assert.Equal(t, "my_db", q.Using.Collection)

	sel := q.Using.Query
	require.Equal(t, "Select", sel.Kind())
	assert.Equal(t, []string{"x"}, sel.Select.Variables)

	lim := sel.Select.Query
	require.Equal(t, "Limit", lim.Kind())
	assert.Equal(t, uint64(10), lim.Limit.Limit)

	off := lim.Limit.Query
	require.Equal(t, "Offset", off.Kind())
	assert.Equal(t, uint64(5), off.Offset.Offset)
	assert.Equal(t, "Triple", off.Offset.Query.Kind())
}

func TestTripleRejectsDataValueInSubjectSlot(t *testing.T) {
	_, err := woqlbuilder.New().
		Triple(woql.Data(42), woql.NodeIRI("rdf:type"), woql.Node("Person")).
		Finalize()
	assert.Error(t, err)
}

func TestOrComposesSubBuilders(t *testing.T) {
	left := woqlbuilder.New().Triple(woql.NodeVar("x"), woql.NodeIRI("rdf:type"), woql.Node("Person"))
	right := woqlbuilder.New().Triple(woql.NodeVar("x"), woql.NodeIRI("rdf:type"), woql.Node("Organization"))

	q, err := woqlbuilder.Or(left, right).Finalize()
	require.NoError(t, err)
	assert.Equal(t, "Or", q.Kind())
	assert.Len(t, q.Or, 2)
}

func TestNotWrapsSubBuilder(t *testing.T) {
	inner := woqlbuilder.New().IsA(woql.NodeVar("x"), woql.NodeIRI("Person"))
	q, err := woqlbuilder.Not(inner).Finalize()
	require.NoError(t, err)
	assert.Equal(t, "Not", q.Kind())
	assert.Equal(t, "IsA", q.Not.Kind())
}

func TestReadDocumentAndEq(t *testing.T) {
	q, err := woqlbuilder.New().
		ReadDocument(woql.NodeIRI("Person/1"), woql.Var("doc")).
		Eq(woql.DataVar("a"), woql.DataLit(1)).
		Finalize()
	require.NoError(t, err)
	assert.Equal(t, "And", q.Kind())
	assert.Equal(t, "ReadDocument", q.And[0].Kind())
	assert.Equal(t, "Equals", q.And[1].Kind())
}

func TestEmptyBuilderFinalizesToTrue(t *testing.T) {
	q, err := woqlbuilder.New().Finalize()
	require.NoError(t, err)
	assert.Equal(t, "True", q.Kind())
}
