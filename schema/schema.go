// Package schema models TerminusDB class, enum, and tagged-union schemas:
// the in-memory shape that the codec (package instance) reads from and
// writes to JSON-LD, and that the database lifecycle layer fingerprints to
// detect drift between a program's types and what a database was opened
// with.
package schema

import (
	"sort"
)

// Kind discriminates the three schema shapes TerminusDB supports.
type Kind int

const (
	KindClass Kind = iota
	KindEnum
	KindTaggedUnion
)

// KeyKind identifies the document-id strategy a class schema declares.
type KeyKind int

const (
	KeyRandom KeyKind = iota
	KeyLexical
	KeyHash
	KeyValueHash
)

// Key describes how instances of a class are keyed.
type Key struct {
	Kind   KeyKind
	Fields []string // property names contributing to Lexical/Hash keys
}

// PropertyFamily is the cardinality of a property: a single value, an
// optional value, an ordered list, or an unordered set.
type PropertyFamily int

const (
	One PropertyFamily = iota
	Option
	List
	Set
)

// Property is one field of a Class or TaggedUnion schema.
type Property struct {
	Name   string
	Family PropertyFamily
	// Class is either another Schema's ClassName, or a raw XSD class name
	// (e.g. "xsd:string") when the property holds a primitive.
	Class string
}

// Schema is the in-memory representation of a class, enum, or tagged-union
// schema.
type Schema struct {
	Kind      Kind
	ClassName string

	Base string // optional IRI base; empty means none

	Key          Key
	Subdocument  bool
	Abstract     bool
	Inherits     []string
	Unfoldable   bool
	Properties   []Property // Class, TaggedUnion
	Values       []string   // Enum: lowercase variant names
}

// IsEmbedPreserving reports whether this schema's instances must remain
// nested in their parent during flattening: true for subdocuments, and for
// tagged unions whose currently active variant (named by activeVariant) is
// itself a subdocument-bearing payload. Pass "" for activeVariant when the
// schema is not a tagged union or no variant is selected.
//
// Naively checking "is this schema a subdocument" is not enough for a
// tagged union: the union schema itself is never marked subdocument, only
// its payload schema is, so callers must resolve the active variant's
// payload schema and ask resolve(variant) whether *that* is embed-preserving.
func (s Schema) IsEmbedPreserving(activeVariant string, resolve func(propertyClass string) (Schema, bool)) bool {
	if s.Subdocument {
		return true
	}
	if s.Kind != KindTaggedUnion || activeVariant == "" || resolve == nil {
		return false
	}
	for _, p := range s.Properties {
		if p.Name != activeVariant {
			continue
		}
		payload, ok := resolve(p.Class)
		if !ok {
			return false
		}
		return payload.Subdocument
	}
	return false
}

// Canonicalize returns a copy of s with Properties sorted by name, Inherits
// sorted, and Values sorted — the stable ordering required before two
// schemas are compared or hashed.
func Canonicalize(s Schema) Schema {
	out := s
	out.Properties = append([]Property(nil), s.Properties...)
	sort.Slice(out.Properties, func(i, j int) bool { return out.Properties[i].Name < out.Properties[j].Name })

	out.Inherits = append([]string(nil), s.Inherits...)
	sort.Strings(out.Inherits)

	out.Values = append([]string(nil), s.Values...)
	sort.Strings(out.Values)

	out.Key.Fields = append([]string(nil), s.Key.Fields...)
	sort.Strings(out.Key.Fields)

	return out
}

// Equal reports whether two schemas are identical in canonical form.
func Equal(a, b Schema) bool {
	ca, cb := Canonicalize(a), Canonicalize(b)
	if ca.Kind != cb.Kind || ca.ClassName != cb.ClassName || ca.Base != cb.Base ||
		ca.Key.Kind != cb.Key.Kind || ca.Subdocument != cb.Subdocument ||
		ca.Abstract != cb.Abstract || ca.Unfoldable != cb.Unfoldable {
		return false
	}
	if !stringsEqual(ca.Inherits, cb.Inherits) || !stringsEqual(ca.Values, cb.Values) ||
		!stringsEqual(ca.Key.Fields, cb.Key.Fields) {
		return false
	}
	if len(ca.Properties) != len(cb.Properties) {
		return false
	}
	for i := range ca.Properties {
		if ca.Properties[i] != cb.Properties[i] {
			return false
		}
	}
	return true
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
