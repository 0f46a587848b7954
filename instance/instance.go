// Package instance models in-memory document instances — the values the
// schema/instance codec produces from and decodes into user structs — and
// implements the flattening walk that prepares an instance tree for bulk
// insert.
package instance

// Instance is a single document value: an optional id, the class it is an
// instance of, and its property values.
type Instance struct {
	SchemaRef string
	ID        string
	HasID     bool

	// EmbedPreserving is true when this instance's schema is a subdocument,
	// or is a tagged union whose active variant is a subdocument payload.
	// It is set by the codec at construction time so that flatten never has
	// to re-resolve the schema.
	EmbedPreserving bool

	// ActiveVariant names the tagged-union variant this instance currently
	// holds, when SchemaRef names a tagged union. Empty otherwise.
	ActiveVariant string

	Properties map[string]Property
}

// ShouldRemainEmbedded reports whether this instance must stay nested in its
// parent during flattening.
func (i Instance) ShouldRemainEmbedded() bool { return i.EmbedPreserving }

// Kind discriminates the shape an instance property holds.
type Kind int

const (
	KindPrimitive Kind = iota
	KindPrimitives
	KindRelation
	KindRelations
	KindAny
)

// Property is one field's value on an Instance. Class carries the field's
// declared schema class (an XSD class name, an enum's class name, or a
// related class name) through to the JSON-LD codec and the scalar encoder,
// which both need it to decide literal shape and casing.
type Property struct {
	Kind       Kind
	Class      string
	Primitive  Value
	Primitives []Value
	Relation   RelationValue
	Relations  []RelationValue
	Any        []Property
}

// Value is a primitive scalar carried by a Property. It mirrors
// xsdtype.Value's shape but does not carry an XSD class.
type Value struct {
	IsNull bool
	Str    string
	Num    float64
	Bool   bool
	IsStr  bool
	IsNum  bool
	IsBool bool
}

// RelationKind discriminates the four ways a relation property can point at
// related data.
type RelationKind int

const (
	RelationOne RelationKind = iota
	RelationMore
	RelationExternalRef
	RelationTransactionRef
)

// RelationValue is one edge from an instance to related data.
type RelationValue struct {
	Kind  RelationKind
	One   *Instance   // RelationOne
	More  []*Instance // RelationMore
	RefID string      // RelationExternalRef, RelationTransactionRef
}
