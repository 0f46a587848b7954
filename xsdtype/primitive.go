package xsdtype

import (
	"encoding/json"
	"fmt"
	"time"
)

// Value is a primitive JSON-LD value: exactly one of the fields is set,
// mirroring the {String, Number, Bool, Null, Object} variant set the wire
// protocol's literal shapes decode into.
type Value struct {
	Kind   ValueKind
	Str    string
	Num    float64
	Bool   bool
	Object json.RawMessage
}

// ValueKind discriminates the variant held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindObject
)

// CodecError reports a structural problem decoding a primitive literal.
type CodecError struct {
	Op  string
	Err error
}

func (e *CodecError) Error() string { return fmt.Sprintf("xsdtype: %s: %v", e.Op, e.Err) }
func (e *CodecError) Unwrap() error { return e.Err }

// literal is the JSON-LD shape used for typed literals:
// {"@type": "<class>", "@value": <json>}.
type literal struct {
	Type  string          `json:"@type"`
	Value json.RawMessage `json:"@value"`
}

// EncodeJSON renders v as the JSON-LD literal for class, applying the
// typed-wrapper policy NeedsTypedLiteral declares.
func EncodeJSON(class string, v Value) (json.RawMessage, error) {
	raw, err := rawJSON(v)
	if err != nil {
		return nil, &CodecError{Op: "encode", Err: err}
	}
	if !NeedsTypedLiteral(class) {
		return raw, nil
	}
	wrapped, err := json.Marshal(literal{Type: class, Value: raw})
	if err != nil {
		return nil, &CodecError{Op: "encode", Err: err}
	}
	return wrapped, nil
}

func rawJSON(v Value) (json.RawMessage, error) {
	switch v.Kind {
	case KindNull:
		return json.RawMessage("null"), nil
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindObject:
		return v.Object, nil
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.Kind)
	}
}

// DecodeJSON parses raw as a JSON-LD literal for class: either the typed
// {"@type", "@value"} wrapper or a bare scalar.
func DecodeJSON(class string, raw json.RawMessage) (Value, error) {
	var lit literal
	if err := json.Unmarshal(raw, &lit); err == nil && lit.Type != "" {
		return rawValue(lit.Value)
	}
	return rawValue(raw)
}

func rawValue(raw json.RawMessage) (Value, error) {
	var probe interface{}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Value{}, &CodecError{Op: "decode", Err: err}
	}
	switch t := probe.(type) {
	case nil:
		return Value{Kind: KindNull}, nil
	case string:
		return Value{Kind: KindString, Str: t}, nil
	case float64:
		return Value{Kind: KindNumber, Num: t}, nil
	case bool:
		return Value{Kind: KindBool, Bool: t}, nil
	default:
		return Value{Kind: KindObject, Object: raw}, nil
	}
}

// EncodeString/EncodeBool/EncodeNumber/EncodeTime are small convenience
// constructors used by the schema/instance codec when it already knows the
// Go-native value.

func EncodeString(s string) Value { return Value{Kind: KindString, Str: s} }
func EncodeBool(b bool) Value     { return Value{Kind: KindBool, Bool: b} }
func EncodeNumber(n float64) Value { return Value{Kind: KindNumber, Num: n} }
func EncodeTime(t time.Time) Value {
	return Value{Kind: KindString, Str: t.UTC().Format(time.RFC3339Nano)}
}
