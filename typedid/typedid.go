// Package typedid provides Go's realization of the derive's typed
// identifier family: a compile-time-typed id string ("Type/id"), a
// server-issued id that starts empty and is filled in after an insert, and
// a lazy reference that can hold either just an id or a fully loaded value.
package typedid

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Schemer is implemented by generated/described model types so TypedId[T]
// can validate that a textual id names the right class.
type Schemer interface {
	SchemaClassName() string
}

// TypedId is a strongly typed document identifier: "Type/id", optionally
// carrying a base IRI recovered from a fragment-based IRI string. T fixes
// the class it must refer to at compile time; New validates the type name
// against T.SchemaClassName() when T provides one, the Go analogue of
// EntityIDFor<T>::new's type check.
type TypedId[T any] struct {
	base    string
	hasBase bool
	typed   string // "Type/id"
}

// New parses iriOrID in one of three forms: a bare id ("1234"), a typed id
// ("Type/1234"), or a fragment-based IRI ("terminusdb://data#Type/1234").
func New[T any](iriOrID string) (TypedId[T], error) {
	className := schemaClassName[T]()

	switch {
	case strings.Contains(iriOrID, "://"):
		parts := strings.SplitN(iriOrID, "#", 2)
		if len(parts) != 2 {
			return TypedId[T]{}, fmt.Errorf("typedid: invalid IRI format: missing '#': %q", iriOrID)
		}
		base, typedPart := parts[0], parts[1]
		typeName, _, ok := splitTyped(typedPart)
		if !ok {
			return TypedId[T]{}, fmt.Errorf("typedid: invalid IRI format: missing '/' after '#': %q", iriOrID)
		}
		if className != "" && typeName != className {
			return TypedId[T]{}, fmt.Errorf("typedid: mismatched type in IRI: expected %q, found %q in %q", className, typeName, iriOrID)
		}
		return TypedId[T]{base: base, hasBase: true, typed: typedPart}, nil

	case strings.Contains(iriOrID, "/"):
		typeName, _, ok := splitTyped(iriOrID)
		if !ok {
			return TypedId[T]{}, fmt.Errorf("typedid: invalid typed id format: %q", iriOrID)
		}
		if className != "" && typeName != className {
			return TypedId[T]{}, fmt.Errorf("typedid: mismatched type in typed id: expected %q, found %q in %q", className, typeName, iriOrID)
		}
		return TypedId[T]{typed: iriOrID}, nil

	default:
		if className == "" {
			return TypedId[T]{}, fmt.Errorf("typedid: cannot build a bare id without a schema class name for %T", *new(T))
		}
		return TypedId[T]{typed: className + "/" + iriOrID}, nil
	}
}

// Random returns a new TypedId with a random UUIDv4 suffix.
func Random[T any]() TypedId[T] {
	id, err := New[T](uuid.NewString())
	if err != nil {
		panic(err)
	}
	return id
}

func splitTyped(s string) (typeName, id string, ok bool) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func schemaClassName[T any]() string {
	var zero T
	if s, ok := any(zero).(Schemer); ok {
		return s.SchemaClassName()
	}
	return ""
}

// ID returns just the identifier part, without the type prefix.
func (t TypedId[T]) ID() string {
	_, id, _ := splitTyped(t.typed)
	return id
}

// Typed returns the "Type/id" form, ignoring any base IRI.
func (t TypedId[T]) Typed() string { return t.typed }

// Base returns the base IRI this id was parsed from, if any.
func (t TypedId[T]) Base() (string, bool) { return t.base, t.hasBase }

func (t TypedId[T]) String() string { return t.typed }

func (t TypedId[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.typed)
}

func (t *TypedId[T]) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := New[T](s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// InstanceID implements instance.IDCarrier.
func (t TypedId[T]) InstanceID() (string, bool) {
	if t.typed == "" {
		return "", false
	}
	return t.ID(), true
}

// SetInstanceID implements instance.IDCarrier. className is recovered from
// T when available so the stored form stays "Type/id".
func (t *TypedId[T]) SetInstanceID(id string) {
	className := schemaClassName[T]()
	if className == "" {
		t.typed = id
		return
	}
	t.typed = className + "/" + id
}
