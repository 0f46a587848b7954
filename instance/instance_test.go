package instance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminusdb-labs/terminusdb-go/instance"
	"github.com/terminusdb-labs/terminusdb-go/schema"
)

func strProp(s string) instance.Property {
	return instance.Property{Kind: instance.KindPrimitive, Primitive: instance.Value{IsStr: true, Str: s}}
}

func TestFlattenExternalizesNonEmbedPreservingChild(t *testing.T) {
	child := &instance.Instance{
		SchemaRef: "Address", ID: "addr1", HasID: true,
		Properties: map[string]instance.Property{"City": strProp("Springfield")},
	}
	root := &instance.Instance{
		SchemaRef: "Person", ID: "p1", HasID: true,
		Properties: map[string]instance.Property{
			"Name": strProp("Homer"),
			"Address": {
				Kind:     instance.KindRelation,
				Relation: instance.RelationValue{Kind: instance.RelationOne, One: child},
			},
		},
	}

	out := instance.Flatten(root, true)
	require.Len(t, out, 2)

	flatRoot := out[0]
	addrProp := flatRoot.Properties["Address"]
	assert.Equal(t, instance.RelationExternalRef, addrProp.Relation.Kind)
	assert.Equal(t, "addr1", addrProp.Relation.RefID)

	assert.Equal(t, "addr1", out[1].ID)
}

func TestFlattenKeepsEmbedPreservingChildInPlace(t *testing.T) {
	child := &instance.Instance{
		SchemaRef: "Address", EmbedPreserving: true,
		Properties: map[string]instance.Property{"City": strProp("Shelbyville")},
	}
	root := &instance.Instance{
		SchemaRef: "Person", ID: "p2", HasID: true,
		Properties: map[string]instance.Property{
			"Address": {
				Kind:     instance.KindRelation,
				Relation: instance.RelationValue{Kind: instance.RelationOne, One: child},
			},
		},
	}

	out := instance.Flatten(root, true)
	require.Len(t, out, 1)

	addrProp := out[0].Properties["Address"]
	require.Equal(t, instance.RelationOne, addrProp.Relation.Kind)
	require.NotNil(t, addrProp.Relation.One)
	assert.Equal(t, "Shelbyville", addrProp.Relation.One.Properties["City"].Primitive.Str)
}

func TestFlattenRelationMoreSplitsEmbeddedAndExternal(t *testing.T) {
	embedded := &instance.Instance{SchemaRef: "Note", EmbedPreserving: true, Properties: map[string]instance.Property{"Body": strProp("draft")}}
	external := &instance.Instance{SchemaRef: "Note", ID: "n2", HasID: true, Properties: map[string]instance.Property{"Body": strProp("published")}}

	root := &instance.Instance{
		SchemaRef: "Person", ID: "p3", HasID: true,
		Properties: map[string]instance.Property{
			"Notes": {
				Kind:     instance.KindRelation,
				Relation: instance.RelationValue{Kind: instance.RelationMore, More: []*instance.Instance{embedded, external}},
			},
		},
	}

	out := instance.Flatten(root, true)
	require.Len(t, out, 2)

	notesProp := out[0].Properties["Notes"]
	require.Equal(t, instance.KindRelations, notesProp.Kind)
	require.Len(t, notesProp.Relations, 2)
	assert.Equal(t, instance.RelationOne, notesProp.Relations[0].Kind)
	assert.Equal(t, instance.RelationExternalRef, notesProp.Relations[1].Kind)
	assert.Equal(t, "n2", notesProp.Relations[1].RefID)

	assert.Equal(t, "n2", out[1].ID)
}

func TestBuildInstanceTreeVisitsAllDescendants(t *testing.T) {
	grandchild := &instance.Instance{SchemaRef: "Tag", ID: "t1", HasID: true}
	child := &instance.Instance{
		SchemaRef: "Address", ID: "a1", HasID: true,
		Properties: map[string]instance.Property{
			"Tag": {Kind: instance.KindRelation, Relation: instance.RelationValue{Kind: instance.RelationOne, One: grandchild}},
		},
	}
	root := &instance.Instance{
		SchemaRef: "Person", ID: "p4", HasID: true,
		Properties: map[string]instance.Property{
			"Address": {Kind: instance.KindRelation, Relation: instance.RelationValue{Kind: instance.RelationOne, One: child}},
		},
	}

	tree := instance.BuildInstanceTree(root)
	require.Len(t, tree, 3)
}

func TestToJSONLDAndFromJSONLDRoundTrip(t *testing.T) {
	addrSchema := schema.Schema{
		ClassName: "Address",
		Properties: []schema.Property{
			{Name: "City", Class: "xsd:string"},
		},
	}
	personSchema := schema.Schema{
		ClassName: "Person",
		Properties: []schema.Property{
			{Name: "Name", Class: "xsd:string"},
			{Name: "Address", Class: "Address"},
		},
	}

	root := &instance.Instance{
		SchemaRef: "Person", ID: "p5", HasID: true,
		Properties: map[string]instance.Property{
			"Name": strProp("Marge"),
			"Address": {
				Kind: instance.KindRelation,
				Relation: instance.RelationValue{Kind: instance.RelationOne, One: &instance.Instance{
					SchemaRef: "Address",
					Properties: map[string]instance.Property{
						"City": strProp("Springfield"),
					},
				}},
			},
		},
	}

	doc, err := instance.ToJSONLD(root)
	require.NoError(t, err)
	assert.Equal(t, "Person", doc["@type"])
	assert.Equal(t, "Person/p5", doc["@id"])

	resolver := func(class string) (schema.Schema, bool) {
		if class == "Address" {
			return addrSchema, true
		}
		return schema.Schema{}, false
	}

	decoded, err := instance.FromJSONLD(personSchema, resolver, doc)
	require.NoError(t, err)
	assert.Equal(t, "p5", decoded.ID)
	assert.Equal(t, "Marge", decoded.Properties["Name"].Primitive.Str)
	require.Equal(t, instance.RelationOne, decoded.Properties["Address"].Relation.Kind)
	assert.Equal(t, "Springfield", decoded.Properties["Address"].Relation.One.Properties["City"].Primitive.Str)
}

type codecAddress struct {
	City string `tdb:""`
}

type codecPerson struct {
	Name    string   `tdb:""`
	Tags    []string `tdb:"list"`
	Address codecAddress
}

func TestToInstanceAndFromInstanceRoundTrip(t *testing.T) {
	p := codecPerson{
		Name:    "Lisa",
		Tags:    []string{"sax", "honor-roll"},
		Address: codecAddress{City: "Springfield"},
	}

	inst, err := instance.ToInstance(p, "lisa1")
	require.NoError(t, err)
	assert.Equal(t, "codecPerson", inst.SchemaRef)
	assert.Equal(t, "lisa1", inst.ID)
	assert.Equal(t, "Lisa", inst.Properties["Name"].Primitive.Str)
	require.Len(t, inst.Properties["Tags"].Primitives, 2)

	back, err := instance.FromInstance[codecPerson](inst)
	require.NoError(t, err)
	assert.Equal(t, p.Name, back.Name)
	assert.Equal(t, p.Tags, back.Tags)
	assert.Equal(t, p.Address.City, back.Address.City)
}
