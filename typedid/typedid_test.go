package typedid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminusdb-labs/terminusdb-go/typedid"
)

type TestEntity struct{ Nothing string }

func (TestEntity) SchemaClassName() string { return "TestEntity" }

func TestNewParsesBareID(t *testing.T) {
	id, err := typedid.New[TestEntity]("1234")
	require.NoError(t, err)
	assert.Equal(t, "1234", id.ID())
	assert.Equal(t, "TestEntity/1234", id.Typed())
}

func TestNewParsesTypedID(t *testing.T) {
	id, err := typedid.New[TestEntity]("TestEntity/5678")
	require.NoError(t, err)
	assert.Equal(t, "5678", id.ID())
}

func TestNewParsesFragmentIRI(t *testing.T) {
	id, err := typedid.New[TestEntity]("terminusdb://data#TestEntity/91011")
	require.NoError(t, err)
	assert.Equal(t, "91011", id.ID())
	base, ok := id.Base()
	require.True(t, ok)
	assert.Equal(t, "terminusdb://data", base)
	assert.Equal(t, "TestEntity/91011", id.Typed())
}

func TestNewRejectsMismatchedTypeInIRI(t *testing.T) {
	_, err := typedid.New[TestEntity]("terminusdb://data#WrongType/91011")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatched type in IRI")
}

func TestNewRejectsMismatchedTypeInTypedID(t *testing.T) {
	_, err := typedid.New[TestEntity]("WrongType/5678")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatched type in typed id")
}

func TestRandomProducesDistinctIDs(t *testing.T) {
	a := typedid.Random[TestEntity]()
	b := typedid.Random[TestEntity]()
	assert.NotEqual(t, a.Typed(), b.Typed())
}

func TestServerIssuedIDClientHintThenServerOverride(t *testing.T) {
	hint, err := typedid.New[TestEntity]("client-guess")
	require.NoError(t, err)
	sid := typedid.NewClientHint(hint)

	got, has := sid.Get()
	require.True(t, has)
	assert.Equal(t, "client-guess", got.ID())
	assert.False(t, sid.IsServerConfirmed())

	serverID, err := typedid.New[TestEntity]("server-assigned")
	require.NoError(t, err)
	sid.SetFromServer(serverID)

	got, has = sid.Get()
	require.True(t, has)
	assert.Equal(t, "server-assigned", got.ID())
	assert.True(t, sid.IsServerConfirmed())
}

func TestLazyFetchesAndCaches(t *testing.T) {
	id, err := typedid.New[TestEntity]("1234")
	require.NoError(t, err)
	lazy := typedid.MakeReference(id)
	require.False(t, lazy.IsLoaded())

	calls := 0
	fetch := func(id typedid.TypedId[TestEntity]) (TestEntity, error) {
		calls++
		return TestEntity{Nothing: id.ID()}, nil
	}

	v, err := lazy.Get(fetch)
	require.NoError(t, err)
	assert.Equal(t, "1234", v.Nothing)

	v2, err := lazy.Get(fetch)
	require.NoError(t, err)
	assert.Equal(t, v, v2)
	assert.Equal(t, 1, calls)
}

func TestLazyMakeRefDropsData(t *testing.T) {
	id, err := typedid.New[TestEntity]("1234")
	require.NoError(t, err)
	lazy := typedid.Loaded(TestEntity{Nothing: "x"})
	lazy.SetInstanceID(id.ID())

	require.True(t, lazy.IsLoaded())
	lazy.MakeRef()
	assert.False(t, lazy.IsLoaded())
}
