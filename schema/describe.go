package schema

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/terminusdb-labs/terminusdb-go/xsdtype"
)

// TypeMeta carries the type-level schema attributes a Go struct cannot
// express through field tags alone. A type opts in by implementing
// SchemaMeta() TypeMeta; types that don't are treated as Class schemas with
// KeyRandom and no inheritance.
type TypeMeta struct {
	Key         Key
	Subdocument bool
	Abstract    bool
	Inherits    []string
	Unfoldable  bool
}

// MetaProvider is implemented by user types that need to declare key
// strategy, subdocument-ness, abstractness, or inheritance.
type MetaProvider interface {
	SchemaMeta() TypeMeta
}

// ToSchemaClass lets a type render its own class name, the Go analogue of
// the derive's ToSchemaClass trait — generic container types implement this
// to compose a parameterized class name such as "Box<Person>".
type ToSchemaClass interface {
	ToClass() string
}

var cache sync.Map // reflect.Type -> Schema

// Describe returns the Schema for T, computing it via reflection on first
// use and caching the result by reflect.Type for every subsequent call —
// the same caching discipline the struct-tag-driven validation libraries in
// this stack use to keep repeated reflection cheap.
func Describe[T any]() (Schema, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return Schema{}, fmt.Errorf("schema: cannot describe nil interface type")
	}
	return describeType(t)
}

// DescribeReflectType is the non-generic entry point Describe[T] wraps,
// exposed so reflection-driven callers that only hold a reflect.Type (such
// as the instance codec walking nested struct fields) can reach the same
// cached describe/describeStruct path without a compile-time type
// parameter.
func DescribeReflectType(t reflect.Type) (Schema, error) {
	return describeType(t)
}

func describeType(t reflect.Type) (Schema, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := cache.Load(t); ok {
		return cached.(Schema), nil
	}

	var s Schema
	var err error
	switch t.Kind() {
	case reflect.Struct:
		if isTaggedUnion(t) {
			s, err = describeTaggedUnion(t)
		} else {
			s, err = describeStruct(t)
		}
	case reflect.String:
		s, err = describeEnum(t)
	default:
		return Schema{}, fmt.Errorf("schema: unsupported kind %s for %s", t.Kind(), t)
	}
	if err != nil {
		return Schema{}, err
	}
	cache.Store(t, s)
	return s, nil
}

// describeEnum builds a Schema for a named string type that declares its
// unit variants via EnumValuesProvider.
func describeEnum(t reflect.Type) (Schema, error) {
	values, ok := enumValues(t)
	if !ok {
		return Schema{}, fmt.Errorf("schema: %s has no registered enum values (implement EnumValues() []string)", t)
	}
	lower := make([]string, len(values))
	for i, v := range values {
		lower[i] = strings.ToLower(v)
	}
	return Schema{Kind: KindEnum, ClassName: className(t), Values: lower}, nil
}

// EnumValuesProvider lets a named string type declare its unit variants, the
// Go analogue of a unit-only Rust enum.
type EnumValuesProvider interface {
	EnumValues() []string
}

func enumValues(t reflect.Type) ([]string, bool) {
	pv := reflect.New(t).Interface()
	if p, ok := pv.(EnumValuesProvider); ok {
		return p.EnumValues(), true
	}
	return nil, false
}

// CanonicalEnumValue looks up t's declared enum variants and returns the
// one matching wire case-insensitively, restoring the exact casing the Go
// constant was declared with. Used by the instance codec when decoding a
// lowercased wire value back into a named string field.
func CanonicalEnumValue(t reflect.Type, wire string) (string, bool) {
	values, ok := enumValues(t)
	if !ok {
		return "", false
	}
	for _, v := range values {
		if strings.EqualFold(v, wire) {
			return v, true
		}
	}
	return "", false
}

// TaggedUnion is implemented by a Go struct that models a tagged union:
// exactly one of its exported fields — each a pointer to its variant
// payload — is populated at a time, and the populated field's name becomes
// the wire "@type" variant key.
type TaggedUnion interface {
	IsTaggedUnion()
}

func isTaggedUnion(t reflect.Type) bool {
	pv := reflect.New(t).Interface()
	_, ok := pv.(TaggedUnion)
	return ok
}

func describeTaggedUnion(t reflect.Type) (Schema, error) {
	props := make([]Property, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, ok := f.Tag.Lookup("tdb")
		opts := parseFieldTag(tag)
		if ok && opts.skip {
			continue
		}
		if f.Type.Kind() != reflect.Ptr {
			return Schema{}, fmt.Errorf("schema: tagged union field %s.%s must be a pointer to its variant payload", t.Name(), f.Name)
		}

		name := opts.name
		if name == "" {
			name = f.Name
		}
		class, family, err := propertyClass(f.Type, opts)
		if err != nil {
			return Schema{}, fmt.Errorf("schema: tagged union field %s.%s: %w", t.Name(), f.Name, err)
		}
		props = append(props, Property{Name: name, Family: family, Class: class})
	}
	return Schema{Kind: KindTaggedUnion, ClassName: className(t), Properties: props}, nil
}

func describeStruct(t reflect.Type) (Schema, error) {
	meta := TypeMeta{Key: Key{Kind: KeyRandom}}
	pv := reflect.New(t).Interface()
	if p, ok := pv.(MetaProvider); ok {
		meta = p.SchemaMeta()
	}

	props := make([]Property, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, ok := f.Tag.Lookup("tdb")
		opts := parseFieldTag(tag)
		if ok && opts.skip {
			continue
		}

		name := opts.name
		if name == "" {
			name = f.Name
		}

		class, family, err := propertyClass(f.Type, opts)
		if err != nil {
			return Schema{}, fmt.Errorf("schema: field %s.%s: %w", t.Name(), f.Name, err)
		}
		props = append(props, Property{Name: name, Family: family, Class: class})
	}

	if meta.Key.Kind != KeyRandom && len(meta.Key.Fields) == 0 {
		return Schema{}, fmt.Errorf("schema: %s declares a non-random key strategy with no key fields", t)
	}

	return Schema{
		Kind:        KindClass,
		ClassName:   className(t),
		Key:         meta.Key,
		Subdocument: meta.Subdocument,
		Abstract:    meta.Abstract,
		Inherits:    meta.Inherits,
		Unfoldable:  meta.Unfoldable,
		Properties:  props,
	}, nil
}

func className(t reflect.Type) string {
	if t.Kind() != reflect.Ptr {
		if pv := reflect.New(t).Interface(); pv != nil {
			if c, ok := pv.(ToSchemaClass); ok {
				return c.ToClass()
			}
		}
	}
	return t.Name()
}

type fieldOpts struct {
	name  string
	list  bool
	set   bool
	skip  bool
}

func parseFieldTag(tag string) fieldOpts {
	var o fieldOpts
	if tag == "-" {
		o.skip = true
		return o
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "list":
			o.list = true
		case part == "set":
			o.set = true
		case strings.HasPrefix(part, "name="):
			o.name = strings.TrimPrefix(part, "name=")
		}
	}
	return o
}

func propertyClass(t reflect.Type, opts fieldOpts) (class string, family PropertyFamily, err error) {
	family = One
	if opts.list {
		family = List
	} else if opts.set {
		family = Set
	}

	switch t.Kind() {
	case reflect.Ptr:
		family = Option
		return propertyClass(t.Elem(), opts)
	case reflect.Slice:
		if family == One {
			family = List
		}
		inner, _, err := propertyClass(t.Elem(), fieldOpts{})
		return inner, family, err
	case reflect.Struct:
		if t == reflect.TypeOf(time.Time{}) {
			return xsdtype.DateTime, family, nil
		}
		if t == reflect.TypeOf(url.URL{}) {
			return xsdtype.AnyURI, family, nil
		}
		nested, err := describeType(t)
		if err != nil {
			return "", family, err
		}
		return nested.ClassName, family, nil
	case reflect.String:
		if t.Name() != "string" {
			// Named string type: treat as an enum reference if it
			// declares enum values, otherwise as xsd:string.
			if _, ok := enumValues(t); ok {
				nested, err := describeType(t)
				if err != nil {
					return "", family, err
				}
				return nested.ClassName, family, nil
			}
		}
		return xsdtype.String, family, nil
	default:
		if class, ok := xsdtype.ClassForKind(t.Kind().String()); ok {
			return class, family, nil
		}
		return "", family, fmt.Errorf("unsupported field type %s", t)
	}
}
