package instance

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/terminusdb-labs/terminusdb-go/schema"
	"github.com/terminusdb-labs/terminusdb-go/xsdtype"
)

// IDCarrier is implemented by typed-id field types (typedid.TypedId[T],
// typedid.ServerIssuedId[T]) so the reflection-based codec can read and
// write a struct's id field without importing the typedid package.
type IDCarrier interface {
	InstanceID() (id string, ok bool)
	SetInstanceID(id string)
}

// ToInstance walks t's fields via reflection (guided by the same "tdb"
// struct tags and Schema that Describe[T] uses) and produces an Instance. If
// id is non-empty it overrides any id discovered on an IDCarrier field.
func ToInstance[T any](t T, id string) (*Instance, error) {
	s, err := schema.Describe[T]()
	if err != nil {
		return nil, err
	}
	v := reflect.ValueOf(&t).Elem()
	return toInstanceValue(s, v, id)
}

func toInstanceValue(s schema.Schema, v reflect.Value, idOverride string) (*Instance, error) {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	t := v.Type()

	out := &Instance{SchemaRef: s.ClassName, Properties: map[string]Property{}}

	if idOverride != "" {
		out.ID, out.HasID = idOverride, true
	}

	byField := map[string]schema.Property{}
	for _, p := range s.Properties {
		byField[p.Name] = p
	}

	activeVariant := ""
	var resolveVariant func(class string) (schema.Schema, bool)

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		fv := v.Field(i)

		if carrier, ok := fv.Addr().Interface().(IDCarrier); ok {
			if id, has := carrier.InstanceID(); has && !out.HasID {
				out.ID, out.HasID = id, true
			}
			continue
		}

		tag := parseTag(f)
		name := tag
		if name == "" {
			name = f.Name
		}
		ps, ok := byField[name]
		if !ok {
			continue
		}

		if s.Kind == schema.KindTaggedUnion {
			if fv.Kind() != reflect.Ptr || fv.IsNil() {
				continue // unset variant: carries no wire value
			}
			activeVariant = name
			payloadType := fv.Type().Elem()
			resolveVariant = func(string) (schema.Schema, bool) {
				payload, err := schema.DescribeReflectType(payloadType)
				if err != nil {
					return schema.Schema{}, false
				}
				return payload, true
			}
		}

		prop, err := toProperty(ps, fv)
		if err != nil {
			return nil, fmt.Errorf("instance: field %s: %w", f.Name, err)
		}
		out.Properties[name] = prop
	}

	out.ActiveVariant = activeVariant
	out.EmbedPreserving = s.IsEmbedPreserving(activeVariant, resolveVariant)
	return out, nil
}

func parseTag(f reflect.StructField) string {
	tag, ok := f.Tag.Lookup("tdb")
	if !ok {
		return ""
	}
	for _, part := range splitComma(tag) {
		if len(part) > 5 && part[:5] == "name=" {
			return part[5:]
		}
	}
	return ""
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func toProperty(ps schema.Property, v reflect.Value) (Property, error) {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return Property{Kind: KindPrimitive, Class: ps.Class, Primitive: Value{IsNull: true}}, nil
		}
		v = v.Elem()
	}

	switch ps.Family {
	case schema.List, schema.Set:
		if v.Kind() != reflect.Slice {
			return Property{}, fmt.Errorf("expected slice for list/set property")
		}
		if isScalarClass(ps.Class, v.Type().Elem()) {
			vals := make([]Value, v.Len())
			for i := 0; i < v.Len(); i++ {
				vals[i] = toScalarValue(ps.Class, v.Index(i))
			}
			return Property{Kind: KindPrimitives, Class: ps.Class, Primitives: vals}, nil
		}
		rels := make([]RelationValue, v.Len())
		for i := 0; i < v.Len(); i++ {
			elemSchema, err := schema.DescribeReflectType(v.Index(i).Type())
			if err != nil {
				return Property{}, err
			}
			child, err := toInstanceValue(elemSchema, v.Index(i), "")
			if err != nil {
				return Property{}, err
			}
			rels[i] = RelationValue{Kind: RelationOne, One: child}
		}
		return Property{Kind: KindRelations, Class: ps.Class, Relations: rels}, nil
	default:
		if isScalarClass(ps.Class, v.Type()) {
			return Property{Kind: KindPrimitive, Class: ps.Class, Primitive: toScalarValue(ps.Class, v)}, nil
		}
		childSchema, err := schema.DescribeReflectType(v.Type())
		if err != nil {
			return Property{}, err
		}
		child, err := toInstanceValue(childSchema, v, "")
		if err != nil {
			return Property{}, err
		}
		return Property{Kind: KindRelation, Class: ps.Class, Relation: RelationValue{Kind: RelationOne, One: child}}, nil
	}
}

func isPrimitiveClass(class string) bool {
	return xsdtype.IsPrimitive(class)
}

// isScalarClass reports whether a field holding t should be encoded as a
// Value rather than walked as a nested relation: either its declared class
// is one of the xsd: primitives, or it is a named string type (an enum
// reference, whose class names the enum's own schema rather than xsd:).
func isScalarClass(class string, t reflect.Type) bool {
	if isPrimitiveClass(class) {
		return true
	}
	return t.Kind() == reflect.String
}

// toScalarValue encodes v and, for enum-classed fields (anything not an xsd:
// primitive), lowercases the result to match the wire value describeEnum
// assigns the class's declared variants.
func toScalarValue(class string, v reflect.Value) Value {
	val := toValue(v)
	if val.IsStr && !isPrimitiveClass(class) {
		val.Str = strings.ToLower(val.Str)
	}
	return val
}

func toValue(v reflect.Value) Value {
	switch v.Kind() {
	case reflect.String:
		return Value{IsStr: true, Str: v.String()}
	case reflect.Bool:
		return Value{IsBool: true, Bool: v.Bool()}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Value{IsNum: true, Num: float64(v.Int())}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Value{IsNum: true, Num: float64(v.Uint())}
	case reflect.Float32, reflect.Float64:
		return Value{IsNum: true, Num: v.Float()}
	case reflect.Struct:
		if t, ok := v.Interface().(time.Time); ok {
			return Value{IsStr: true, Str: t.UTC().Format(time.RFC3339Nano)}
		}
		if u, ok := v.Interface().(url.URL); ok {
			return Value{IsStr: true, Str: u.String()}
		}
		return Value{IsNull: true}
	default:
		return Value{IsNull: true}
	}
}

// FromInstance decodes an Instance back into a T.
func FromInstance[T any](i *Instance) (T, error) {
	var out T
	v := reflect.ValueOf(&out).Elem()
	if err := fromInstanceValue(i, v); err != nil {
		return out, err
	}
	return out, nil
}

func fromInstanceValue(i *Instance, v reflect.Value) error {
	t := v.Type()
	for fi := 0; fi < t.NumField(); fi++ {
		f := t.Field(fi)
		if !f.IsExported() {
			continue
		}
		fv := v.Field(fi)

		if carrier, ok := fv.Addr().Interface().(IDCarrier); ok {
			if i.HasID {
				carrier.SetInstanceID(i.ID)
			}
			continue
		}

		name := parseTag(f)
		if name == "" {
			name = f.Name
		}
		prop, ok := i.Properties[name]
		if !ok {
			continue
		}
		if err := setField(fv, prop); err != nil {
			return fmt.Errorf("instance: field %s: %w", f.Name, &CodecError{Op: "MissingField", Err: err})
		}
	}
	return nil
}

// CodecError reports a structural decode failure: a missing/mismatched
// field shape, or a decoded value falling outside its class's declared
// range.
type CodecError struct {
	Op  string
	Err error
}

func (e *CodecError) Error() string { return fmt.Sprintf("instance codec (%s): %v", e.Op, e.Err) }
func (e *CodecError) Unwrap() error { return e.Err }

func setField(fv reflect.Value, p Property) error {
	target := fv
	isPtr := fv.Kind() == reflect.Ptr
	if isPtr {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		target = fv.Elem()
	}

	switch p.Kind {
	case KindPrimitive:
		return setScalar(target, p.Primitive, p.Class)
	case KindPrimitives:
		if target.Kind() != reflect.Slice {
			return fmt.Errorf("wrong shape: expected slice")
		}
		out := reflect.MakeSlice(target.Type(), len(p.Primitives), len(p.Primitives))
		for i, val := range p.Primitives {
			if err := setScalar(out.Index(i), val, p.Class); err != nil {
				return err
			}
		}
		target.Set(out)
		return nil
	case KindRelation:
		if p.Relation.Kind != RelationOne || p.Relation.One == nil {
			return nil
		}
		return fromInstanceValue(p.Relation.One, target)
	case KindRelations:
		if target.Kind() != reflect.Slice {
			return fmt.Errorf("wrong shape: expected slice")
		}
		out := reflect.MakeSlice(target.Type(), 0, len(p.Relations))
		for _, r := range p.Relations {
			if r.Kind != RelationOne || r.One == nil {
				continue
			}
			elem := reflect.New(target.Type().Elem()).Elem()
			if err := fromInstanceValue(r.One, elem); err != nil {
				return err
			}
			out = reflect.Append(out, elem)
		}
		target.Set(out)
		return nil
	default:
		return nil
	}
}

// setScalar decodes v into target, consulting class to restore an enum
// field's declared casing and to range-check width-bounded XSD integer
// classes (xsd:unsignedByte and friends) before the value is truncated into
// a narrower Go int kind.
func setScalar(target reflect.Value, v Value, class string) error {
	switch target.Kind() {
	case reflect.String:
		if target.Type().Name() != "string" {
			if canon, ok := schema.CanonicalEnumValue(target.Type(), v.Str); ok {
				target.SetString(canon)
				return nil
			}
		}
		target.SetString(v.Str)
	case reflect.Bool:
		target.SetBool(v.Bool)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := int64(v.Num)
		if err := xsdtype.CheckRange(class, n); err != nil {
			return &CodecError{Op: "OutOfRange", Err: err}
		}
		target.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := int64(v.Num)
		if err := xsdtype.CheckRange(class, n); err != nil {
			return &CodecError{Op: "OutOfRange", Err: err}
		}
		target.SetUint(uint64(v.Num))
	case reflect.Float32, reflect.Float64:
		target.SetFloat(v.Num)
	case reflect.Struct:
		if target.Type() == reflect.TypeOf(time.Time{}) {
			parsed, err := time.Parse(time.RFC3339Nano, v.Str)
			if err != nil {
				return fmt.Errorf("wrong shape: %w", err)
			}
			target.Set(reflect.ValueOf(parsed))
			return nil
		}
		return fmt.Errorf("unsupported struct scalar %s", target.Type())
	default:
		return fmt.Errorf("unsupported scalar kind %s", target.Kind())
	}
	return nil
}
