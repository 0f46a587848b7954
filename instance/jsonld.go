package instance

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/terminusdb-labs/terminusdb-go/schema"
	"github.com/terminusdb-labs/terminusdb-go/xsdtype"
)

// ToJSONLD renders an instance as the JSON-LD document TerminusDB expects on
// the wire: "@type" = SchemaRef, "@id" = the typed-id string when present,
// and one key per property. Relation references appear as bare typed-id
// strings. A tagged-union instance carries only its active variant's
// property, so this naturally renders {"@type": "<Union>", "<variant>":
// <payload>} without any union-specific logic here.
func ToJSONLD(i *Instance) (map[string]interface{}, error) {
	out := map[string]interface{}{"@type": i.SchemaRef}
	if i.HasID {
		out["@id"] = i.SchemaRef + "/" + i.ID
	}
	for name, p := range i.Properties {
		v, err := propertyToJSONLD(p)
		if err != nil {
			return nil, fmt.Errorf("instance: property %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func propertyToJSONLD(p Property) (interface{}, error) {
	switch p.Kind {
	case KindPrimitive:
		return valueToJSONLD(p.Primitive, p.Class), nil
	case KindPrimitives:
		list := make([]interface{}, len(p.Primitives))
		for i, v := range p.Primitives {
			list[i] = valueToJSONLD(v, p.Class)
		}
		return list, nil
	case KindRelation:
		return relationToJSONLD(p.Relation)
	case KindRelations:
		list := make([]interface{}, 0, len(p.Relations))
		for _, r := range p.Relations {
			v, err := relationToJSONLD(r)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case KindAny:
		list := make([]interface{}, 0, len(p.Any))
		for _, a := range p.Any {
			v, err := propertyToJSONLD(a)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unknown property kind %d", p.Kind)
	}
}

// valueToJSONLD renders v as its wire scalar, wrapping it in the
// {"@type": class, "@value": ...} literal shape when class declares one
// (xsd:dateTime, the bounded integer widths, xsd:decimal, ...). class is ""
// for untyped Any properties, which always render as a bare scalar.
func valueToJSONLD(v Value, class string) interface{} {
	scalar := bareScalar(v)
	if scalar == nil || class == "" || !xsdtype.NeedsTypedLiteral(class) {
		return scalar
	}
	return map[string]interface{}{"@type": class, "@value": scalar}
}

func bareScalar(v Value) interface{} {
	switch {
	case v.IsNull:
		return nil
	case v.IsStr:
		return v.Str
	case v.IsNum:
		return v.Num
	case v.IsBool:
		return v.Bool
	default:
		return nil
	}
}

func relationToJSONLD(r RelationValue) (interface{}, error) {
	switch r.Kind {
	case RelationOne:
		if r.One == nil {
			return nil, nil
		}
		return ToJSONLD(r.One)
	case RelationMore:
		list := make([]interface{}, 0, len(r.More))
		for _, child := range r.More {
			v, err := ToJSONLD(child)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case RelationExternalRef, RelationTransactionRef:
		return r.RefID, nil
	default:
		return nil, fmt.Errorf("unknown relation kind %d", r.Kind)
	}
}

// Resolver looks up a class's schema by name, used by FromJSONLD to decide
// whether a property is a primitive or a relation.
type Resolver func(class string) (schema.Schema, bool)

// FromJSONLD decodes a JSON-LD document into an Instance using s to
// interpret each property's declared class.
func FromJSONLD(s schema.Schema, resolve Resolver, raw map[string]interface{}) (*Instance, error) {
	out := &Instance{SchemaRef: s.ClassName, Properties: map[string]Property{}}

	if idVal, ok := raw["@id"].(string); ok && idVal != "" {
		if idx := strings.LastIndex(idVal, "/"); idx >= 0 {
			out.ID = idVal[idx+1:]
		} else {
			out.ID = idVal
		}
		out.HasID = true
	}

	byName := map[string]schema.Property{}
	for _, p := range s.Properties {
		byName[p.Name] = p
	}

	for key, val := range raw {
		if key == "@id" || key == "@type" {
			continue
		}
		propSchema, ok := byName[key]
		if !ok {
			continue
		}
		prop, err := decodeProperty(propSchema, resolve, val)
		if err != nil {
			return nil, fmt.Errorf("instance: property %s: %w", key, err)
		}
		out.Properties[key] = prop
	}

	if s.Kind == schema.KindTaggedUnion {
		for _, p := range s.Properties {
			if _, ok := out.Properties[p.Name]; ok {
				out.ActiveVariant = p.Name
				break
			}
		}
	}
	out.EmbedPreserving = s.IsEmbedPreserving(out.ActiveVariant, resolve)
	return out, nil
}

// isScalarProperty reports whether ps should be decoded as a Value rather
// than walked as a nested relation: either it's one of the xsd: primitives,
// or resolve identifies its class as an enum schema.
func isScalarProperty(ps schema.Property, resolve Resolver) bool {
	if strings.HasPrefix(ps.Class, "xsd:") {
		return true
	}
	if resolve == nil {
		return false
	}
	s, ok := resolve(ps.Class)
	return ok && s.Kind == schema.KindEnum
}

func decodeProperty(ps schema.Property, resolve Resolver, val interface{}) (Property, error) {
	isPrimitive := isScalarProperty(ps, resolve)

	switch ps.Family {
	case schema.List, schema.Set:
		items, ok := val.([]interface{})
		if !ok {
			return Property{}, fmt.Errorf("expected array for %s", ps.Name)
		}
		if isPrimitive {
			vals := make([]Value, len(items))
			for i, it := range items {
				vals[i] = decodeValue(it)
			}
			return Property{Kind: KindPrimitives, Class: ps.Class, Primitives: vals}, nil
		}
		rels := make([]RelationValue, len(items))
		for i, it := range items {
			r, err := decodeRelation(ps.Class, resolve, it)
			if err != nil {
				return Property{}, err
			}
			rels[i] = r
		}
		return Property{Kind: KindRelations, Class: ps.Class, Relations: rels}, nil
	default:
		if isPrimitive {
			return Property{Kind: KindPrimitive, Class: ps.Class, Primitive: decodeValue(val)}, nil
		}
		r, err := decodeRelation(ps.Class, resolve, val)
		if err != nil {
			return Property{}, err
		}
		return Property{Kind: KindRelation, Class: ps.Class, Relation: r}, nil
	}
}

func decodeValue(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return Value{IsNull: true}
	case string:
		return Value{IsStr: true, Str: t}
	case float64:
		return Value{IsNum: true, Num: t}
	case bool:
		return Value{IsBool: true, Bool: t}
	case map[string]interface{}:
		if vv, ok := t["@value"]; ok {
			return decodeValue(vv)
		}
		return Value{IsNull: true}
	default:
		return Value{IsNull: true}
	}
}

func decodeRelation(class string, resolve Resolver, v interface{}) (RelationValue, error) {
	switch t := v.(type) {
	case string:
		return RelationValue{Kind: RelationExternalRef, RefID: t}, nil
	case map[string]interface{}:
		childSchema, ok := resolve(class)
		if !ok {
			return RelationValue{}, fmt.Errorf("cannot resolve schema for class %s", class)
		}
		child, err := FromJSONLD(childSchema, resolve, t)
		if err != nil {
			return RelationValue{}, err
		}
		return RelationValue{Kind: RelationOne, One: child}, nil
	case nil:
		return RelationValue{}, nil
	default:
		return RelationValue{}, fmt.Errorf("unexpected relation shape %T", v)
	}
}

// MarshalJSON renders an instance directly to JSON bytes via ToJSONLD.
func MarshalJSON(i *Instance) ([]byte, error) {
	m, err := ToJSONLD(i)
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}
